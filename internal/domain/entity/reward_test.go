package entity

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardPayloadAccessors(t *testing.T) {
	r := &Reward{Payload: map[string]interface{}{
		"costXp":        50.0,
		"discountType":  "percentage",
		"discountValue": 10.0,
		"code_prefix":   "dojo",
	}}

	assert.Equal(t, int64(50), r.CostXP())
	assert.Equal(t, DiscountPercentage, r.DiscountType())
	assert.Equal(t, 10.0, r.DiscountValue())
	assert.Equal(t, "DOJO", r.CodePrefix("MNKY"))
	assert.Equal(t, 1, r.RequiredLevel())
}

func TestRewardMalformedCostDefaultsToZero(t *testing.T) {
	assert.Equal(t, int64(0), (&Reward{Payload: map[string]interface{}{"costXp": "free"}}).CostXP())
	assert.Equal(t, int64(0), (&Reward{Payload: map[string]interface{}{"costXp": -20.0}}).CostXP())
	assert.Equal(t, int64(0), (&Reward{}).CostXP())
	assert.Equal(t, int64(75), (&Reward{Payload: map[string]interface{}{"cost_xp": "75"}}).CostXP())
}

func TestRewardOversizedCostSaturates(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), (&Reward{Payload: map[string]interface{}{"costXp": 1e19}}).CostXP())
	assert.Equal(t, int64(math.MaxInt64), (&Reward{Payload: map[string]interface{}{"costXp": "9.3e18"}}).CostXP())
}

func TestRewardFixedAmountAndPrefixFallback(t *testing.T) {
	r := &Reward{MinLevel: 5, Payload: map[string]interface{}{"discount_type": "fixed_amount"}}

	assert.Equal(t, DiscountFixedAmount, r.DiscountType())
	assert.Equal(t, 5, r.RequiredLevel())
	assert.Equal(t, "VERSE", r.CodePrefix("VERSE"))
	assert.Equal(t, DefaultCodePrefix, r.CodePrefix(""))
}

func TestGenerateDiscountCodeUsesReadableAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateDiscountCode("MNKY", nil)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(code, "MNKY-"))

		suffix := strings.TrimPrefix(code, "MNKY-")
		require.Len(t, suffix, 6)
		for _, ch := range suffix {
			assert.True(t, strings.ContainsRune(CodeAlphabet, ch), "unexpected %q in %s", ch, code)
		}
		assert.False(t, strings.ContainsAny(suffix, "0O1IL"))
	}
}

func TestGenerateDiscountCodeDeterministicSource(t *testing.T) {
	// 255 is above the rejection limit and must be skipped.
	src := bytes.NewReader([]byte{0, 255, 1, 2, 3, 4, 5})

	code, err := GenerateDiscountCode("", src)
	require.NoError(t, err)
	assert.Equal(t, "MNKY-ABCDEF", code)
}

func TestGenerateDiscountCodeShortSource(t *testing.T) {
	_, err := GenerateDiscountCode("MNKY", bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}
