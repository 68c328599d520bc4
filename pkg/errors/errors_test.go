package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientXPCarriesRequiredAndCurrent(t *testing.T) {
	err := InsufficientXP(50, 0)

	assert.Equal(t, CodeInsufficientXP, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, int64(50), err.Details["required"])
	assert.Equal(t, int64(0), err.Details["current"])
}

func TestExternalMintFailedPassesUpstreamThrough(t *testing.T) {
	err := ExternalMintFailed(fmt.Errorf("shopify: code already taken"))

	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "shopify: code already taken", err.Details["upstream"])
}

func TestIsAndAsUnwrapChains(t *testing.T) {
	wrapped := fmt.Errorf("redeem: %w", LevelTooLow(5, 2))

	assert.True(t, Is(wrapped, CodeLevelTooLow))
	assert.False(t, Is(wrapped, CodeInsufficientXP))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, 5, appErr.Details["required"])

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
