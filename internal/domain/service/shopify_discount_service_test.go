package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

func percent(v float64) *float64 { return &v }

func newTestShopify(t *testing.T, handler http.HandlerFunc) *ShopifyDiscountService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewShopifyDiscountService("example.myshopify.com", "shpat_test", "2024-10", 100, logger.Nop(),
		WithShopifyEndpoint(srv.URL), WithShopifyHTTPClient(srv.Client()))
}

func validRequest() DiscountCodeRequest {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return DiscountCodeRequest{
		Title:                  "Dojo reward: 10% off",
		Code:                   "MNKY-AB2CDE",
		StartsAt:               start,
		EndsAt:                 start.Add(30 * 24 * time.Hour),
		AppliesOncePerCustomer: true,
		Percentage:             percent(0.1),
	}
}

func TestShopifyCreateDiscountCode(t *testing.T) {
	var captured map[string]interface{}
	svc := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"discountCodeBasicCreate":{"codeDiscountNode":{"id":"gid://shopify/DiscountCodeNode/1","codeDiscount":{"codes":{"nodes":[{"code":"MNKY-AB2CDE"}]}}},"userErrors":[]}}}`))
	})

	res, err := svc.CreateDiscountCode(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "MNKY-AB2CDE", res.Code)
	assert.Equal(t, "gid://shopify/DiscountCodeNode/1", res.ExternalID)

	input := captured["variables"].(map[string]interface{})["basicCodeDiscount"].(map[string]interface{})
	assert.Equal(t, "MNKY-AB2CDE", input["code"])
	assert.Equal(t, true, input["appliesOncePerCustomer"])
	assert.Equal(t, "2026-01-31T00:00:00Z", input["endsAt"])
	value := input["customerGets"].(map[string]interface{})["value"].(map[string]interface{})
	assert.Equal(t, 0.1, value["percentage"])
}

func TestShopifyFixedAmountInput(t *testing.T) {
	req := validRequest()
	req.Percentage = nil
	amount := 15.0
	req.Amount = &amount

	input := basicCodeDiscountInput(req)
	value := input["customerGets"].(map[string]interface{})["value"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"amount": "15.00", "appliesOnEachItem": false}, value["discountAmount"])
	assert.NotContains(t, value, "percentage")
}

func TestShopifyUserErrorsFailTheMint(t *testing.T) {
	svc := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"discountCodeBasicCreate":{"codeDiscountNode":null,"userErrors":[{"field":["basicCodeDiscount","code"],"code":"TAKEN","message":"Code must be unique"}]}}}`))
	})

	_, err := svc.CreateDiscountCode(context.Background(), validRequest())
	require.Error(t, err)

	var mintErr *MintError
	require.ErrorAs(t, err, &mintErr)
	assert.Contains(t, mintErr.Error(), "Code must be unique")
}

func TestShopifyHTTPErrorIsMintError(t *testing.T) {
	svc := newTestShopify(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`[API] Invalid API key or access token`))
	})

	_, err := svc.CreateDiscountCode(context.Background(), validRequest())

	var mintErr *MintError
	require.ErrorAs(t, err, &mintErr)
	assert.Equal(t, http.StatusUnauthorized, mintErr.StatusCode)
}

func TestDiscountCodeRequestValidate(t *testing.T) {
	req := validRequest()
	assert.NoError(t, req.Validate())

	both := validRequest()
	amount := 5.0
	both.Amount = &amount
	assert.Error(t, both.Validate())

	tooBig := validRequest()
	tooBig.Percentage = percent(10)
	assert.Error(t, tooBig.Validate())

	backwards := validRequest()
	backwards.EndsAt = backwards.StartsAt
	assert.Error(t, backwards.Validate())
}

func TestOfflineDiscountServiceEchoesCode(t *testing.T) {
	res, err := NewOfflineDiscountService(logger.Nop()).CreateDiscountCode(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "MNKY-AB2CDE", res.Code)
}
