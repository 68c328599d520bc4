package entity

import (
	"math"
	"sort"
)

const defaultMaxLevel = 100

// LevelCurve maps a cumulative XP total to a level. thresholds[i] is the
// total needed to reach level i+2, so level = 1 + thresholds reached.
type LevelCurve struct {
	thresholds []int64
}

// DefaultLevelCurve advances from level n after floor(100 * n^1.2) more XP.
func DefaultLevelCurve() LevelCurve {
	return NewLevelCurve(func(n int) int64 {
		return int64(math.Floor(100 * math.Pow(float64(n), 1.2)))
	}, defaultMaxLevel)
}

// NewLevelCurve builds a curve from the XP needed to go from level n to n+1.
func NewLevelCurve(step func(level int) int64, maxLevel int) LevelCurve {
	thresholds := make([]int64, 0, maxLevel-1)
	var total int64
	for n := 1; n < maxLevel; n++ {
		s := step(n)
		if s < 1 {
			s = 1
		}
		total += s
		thresholds = append(thresholds, total)
	}
	return LevelCurve{thresholds: thresholds}
}

// LevelCurveFromThresholds accepts ascending cumulative thresholds.
func LevelCurveFromThresholds(thresholds []int64) LevelCurve {
	t := append([]int64(nil), thresholds...)
	sort.Slice(t, func(i, j int) bool { return t[i] < t[j] })
	return LevelCurve{thresholds: t}
}

func (c LevelCurve) LevelFor(total int64) int {
	return 1 + sort.Search(len(c.thresholds), func(i int) bool { return c.thresholds[i] > total })
}

// NextLevelAt returns the total at which the next level starts, or false at
// the cap.
func (c LevelCurve) NextLevelAt(total int64) (int64, bool) {
	i := sort.Search(len(c.thresholds), func(i int) bool { return c.thresholds[i] > total })
	if i == len(c.thresholds) {
		return 0, false
	}
	return c.thresholds[i], true
}

// Thresholds returns a copy, suitable for passing to the store.
func (c LevelCurve) Thresholds() []int64 {
	return append([]int64(nil), c.thresholds...)
}
