package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// DiscountCodeRequest describes one single-use code to create on the store.
// Exactly one of Percentage or Amount is set.
type DiscountCodeRequest struct {
	Title                  string
	Code                   string
	StartsAt               time.Time
	EndsAt                 time.Time
	AppliesOncePerCustomer bool
	Percentage             *float64 // fraction, 0.1 is 10%
	Amount                 *float64
}

func (r DiscountCodeRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Code) == "":
		return fmt.Errorf("code is required")
	case !r.EndsAt.After(r.StartsAt):
		return fmt.Errorf("endsAt must be after startsAt")
	case (r.Percentage == nil) == (r.Amount == nil):
		return fmt.Errorf("exactly one of percentage or amount is required")
	case r.Percentage != nil && (*r.Percentage <= 0 || *r.Percentage > 1):
		return fmt.Errorf("percentage must be in (0, 1]")
	case r.Amount != nil && *r.Amount <= 0:
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// DiscountCodeResult is what the store created.
type DiscountCodeResult struct {
	Code       string
	ExternalID string
}

// DiscountService mints discount codes on the commerce platform. It does not
// retry; callers decide what a failure means.
type DiscountService interface {
	CreateDiscountCode(ctx context.Context, req DiscountCodeRequest) (*DiscountCodeResult, error)
}

// OfflineDiscountService accepts every well-formed request without calling
// out. It backs local runs where no store credentials are configured.
type OfflineDiscountService struct {
	logger logger.Logger
}

func NewOfflineDiscountService(log logger.Logger) *OfflineDiscountService {
	return &OfflineDiscountService{logger: log}
}

func (s *OfflineDiscountService) CreateDiscountCode(ctx context.Context, req DiscountCodeRequest) (*DiscountCodeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s.logger.Warn("discount code not sent to store: offline mode", "code", req.Code, "title", req.Title)
	return &DiscountCodeResult{Code: req.Code, ExternalID: "offline:" + req.Code}, nil
}
