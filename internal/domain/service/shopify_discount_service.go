package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

const discountCodeBasicCreate = `mutation discountCodeBasicCreate($basicCodeDiscount: DiscountCodeBasicInput!) {
  discountCodeBasicCreate(basicCodeDiscount: $basicCodeDiscount) {
    codeDiscountNode {
      id
      codeDiscount {
        ... on DiscountCodeBasic {
          codes(first: 1) { nodes { code } }
        }
      }
    }
    userErrors { field code message }
  }
}`

// ShopifyDiscountService creates basic code discounts through the Shopify
// Admin GraphQL API.
type ShopifyDiscountService struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      logger.Logger
}

type ShopifyOption func(*ShopifyDiscountService)

// WithShopifyEndpoint overrides the GraphQL URL, mainly for tests.
func WithShopifyEndpoint(endpoint string) ShopifyOption {
	return func(s *ShopifyDiscountService) { s.endpoint = endpoint }
}

func WithShopifyHTTPClient(client *http.Client) ShopifyOption {
	return func(s *ShopifyDiscountService) { s.httpClient = client }
}

func NewShopifyDiscountService(storeDomain, accessToken, apiVersion string, requestsPerSecond float64, log logger.Logger, opts ...ShopifyOption) *ShopifyDiscountService {
	domain := strings.TrimSuffix(strings.TrimPrefix(storeDomain, "https://"), "/")
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}

	s := &ShopifyDiscountService{
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", domain, apiVersion),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type shopifyUserError struct {
	Field   []string `json:"field"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

type discountCreateResponse struct {
	Data struct {
		DiscountCodeBasicCreate struct {
			CodeDiscountNode *struct {
				ID           string `json:"id"`
				CodeDiscount struct {
					Codes struct {
						Nodes []struct {
							Code string `json:"code"`
						} `json:"nodes"`
					} `json:"codes"`
				} `json:"codeDiscount"`
			} `json:"codeDiscountNode"`
			UserErrors []shopifyUserError `json:"userErrors"`
		} `json:"discountCodeBasicCreate"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// MintError carries what Shopify said about a rejected mint.
type MintError struct {
	StatusCode int
	Messages   []string
}

func (e *MintError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("shopify: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	return "shopify: " + strings.Join(e.Messages, "; ")
}

func (s *ShopifyDiscountService) CreateDiscountCode(ctx context.Context, req DiscountCodeRequest) (*DiscountCodeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("shopify: waiting for rate limiter: %w", err)
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     discountCodeBasicCreate,
		Variables: map[string]interface{}{"basicCodeDiscount": basicCodeDiscountInput(req)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Shopify-Access-Token", s.accessToken)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("shopify discount mint rejected", "status", resp.StatusCode, "code", req.Code)
		return nil, &MintError{StatusCode: resp.StatusCode, Messages: []string{strings.TrimSpace(string(body))}}
	}

	var parsed discountCreateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &MintError{StatusCode: resp.StatusCode, Messages: msgs}
	}

	result := parsed.Data.DiscountCodeBasicCreate
	if len(result.UserErrors) > 0 {
		msgs := make([]string, 0, len(result.UserErrors))
		for _, e := range result.UserErrors {
			msgs = append(msgs, fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Field, ".")))
		}
		return nil, &MintError{StatusCode: resp.StatusCode, Messages: msgs}
	}
	if result.CodeDiscountNode == nil {
		return nil, &MintError{StatusCode: resp.StatusCode, Messages: []string{"no discount node returned"}}
	}

	code := req.Code
	if nodes := result.CodeDiscountNode.CodeDiscount.Codes.Nodes; len(nodes) > 0 && nodes[0].Code != "" {
		code = nodes[0].Code
	}

	s.logger.Info("shopify discount created", "code", code, "id", result.CodeDiscountNode.ID)
	return &DiscountCodeResult{Code: code, ExternalID: result.CodeDiscountNode.ID}, nil
}

func basicCodeDiscountInput(req DiscountCodeRequest) map[string]interface{} {
	value := map[string]interface{}{}
	if req.Percentage != nil {
		value["percentage"] = *req.Percentage
	} else {
		value["discountAmount"] = map[string]interface{}{
			"amount":            fmt.Sprintf("%.2f", *req.Amount),
			"appliesOnEachItem": false,
		}
	}

	return map[string]interface{}{
		"title":                  req.Title,
		"code":                   req.Code,
		"startsAt":               req.StartsAt.UTC().Format(time.RFC3339),
		"endsAt":                 req.EndsAt.UTC().Format(time.RFC3339),
		"appliesOncePerCustomer": req.AppliesOncePerCustomer,
		"usageLimit":             1,
		"customerSelection":      map[string]interface{}{"all": true},
		"customerGets": map[string]interface{}{
			"value": value,
			"items": map[string]interface{}{"all": true},
		},
	}
}
