package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		query string
		want  Page
	}{
		{"", Page{Number: 1, Size: DefaultPageSize, Offset: 0}},
		{"?page=3&limit=10", Page{Number: 3, Size: 10, Offset: 20}},
		{"?page=0&limit=500", Page{Number: 1, Size: DefaultPageSize, Offset: 0}},
		{"?page=-4&limit=abc", Page{Number: 1, Size: DefaultPageSize, Offset: 0}},
		{"?page=99999999999999999999999", Page{Number: 1, Size: DefaultPageSize, Offset: 0}},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil), httptest.NewRecorder())
			assert.Equal(t, tc.want, ParsePage(c))
		})
	}
}

func TestNewPageClampsHugePageNumbers(t *testing.T) {
	p := NewPage(4611686018427387904, 20)
	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.LessOrEqual(t, p.Offset, MaxOffset)
	assert.Equal(t, MaxOffset/20+1, p.Number)
}
