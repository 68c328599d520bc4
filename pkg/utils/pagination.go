package utils

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxOffset bounds how deep a caller can page. Larger pages are clamped
	// to the last reachable one, which is simply empty.
	MaxOffset = math.MaxInt32
)

// Page is a parsed ?page and ?limit pair.
type Page struct {
	Number int
	Size   int
	Offset int
}

// ParsePage reads ?page (1-based) and ?limit. Missing or invalid values fall
// back to the first page of DefaultPageSize.
func ParsePage(c echo.Context) Page {
	return NewPage(queryInt(c, "page"), queryInt(c, "limit"))
}

func NewPage(number, size int) Page {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if number <= 0 {
		number = 1
	}
	if last := MaxOffset/size + 1; number > last {
		number = last
	}
	return Page{Number: number, Size: size, Offset: (number - 1) * size}
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
