package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/metrics"
	"repairhub-backend/pkg/clock"
	"repairhub-backend/pkg/logger"
)

// PricingService resolves the discount for a (service, model) pair and
// prices it. It holds no mutable state and is safe for concurrent use.
type PricingService struct {
	discounts DiscountFinder
	models    ModelLookup
	clock     clock.Clock
	tieBreak  TieBreakPolicy
}

func NewPricingService(discounts DiscountFinder, models ModelLookup, clk clock.Clock, tieBreak TieBreakPolicy) *PricingService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if tieBreak == "" {
		tieBreak = TieBreakFirstCreated
	}
	return &PricingService{
		discounts: discounts,
		models:    models,
		clock:     clk,
		tieBreak:  tieBreak,
	}
}

// GetApplicableDiscount returns the winning discount or nil.
//
// Business Logic Flow:
//  1. Load the model's brand/series; unknown model -> nil
//  2. Load candidates pre-filtered by storage (on, service, not expired)
//  3. Keep candidates that cover the service, are active now and whose
//     scope covers the model
//  4. Pick one with the tie-break policy
//
// Lookup failures are returned wrapped, never turned into "no discount".
func (s *PricingService) GetApplicableDiscount(ctx context.Context, serviceID, modelID uuid.UUID) (_ *model.Discount, err error) {
	start := time.Now()
	outcome := metrics.OutcomeNoDiscount
	defer func() {
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.PricingLookupsTotal.WithLabelValues(outcome).Inc()
		metrics.PricingLookupDuration.Observe(time.Since(start).Seconds())
	}()

	// Step 1: lấy brand/series của model (model không tồn tại -> không có discount)
	ref, err := s.models.GetModelRef(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelID, err)
	}
	if ref == nil {
		outcome = metrics.OutcomeModelMissing
		return nil, nil
	}

	// Step 2: candidates đã lọc sơ bộ ở DB (is_active, service, chưa hết hạn)
	now := s.clock.Now()
	candidates, err := s.discounts.FindActiveForService(ctx, serviceID, now)
	if err != nil {
		return nil, fmt.Errorf("load discounts for service %s: %w", serviceID, err)
	}
	metrics.PricingCandidates.Observe(float64(len(candidates)))
	if len(candidates) == 0 {
		return nil, nil
	}

	// Step 3: lọc lại trong app: service, thời gian hiệu lực, usage cap, scope
	applicable := make([]*model.Discount, 0, len(candidates))
	for _, d := range candidates {
		if d.CoversService(serviceID) && IsDiscountActive(d, now) && MatchesScope(d, ref) {
			applicable = append(applicable, d)
		}
	}

	// Step 4: chọn 1 discount theo tie-break policy
	winner := s.tieBreak.PickWinner(applicable)
	if winner != nil {
		outcome = metrics.OutcomeDiscounted
		logger.Debug("Discount resolved", map[string]interface{}{
			"service_id":  serviceID.String(),
			"model_id":    modelID.String(),
			"discount_id": winner.ID.String(),
			"candidates":  len(candidates),
			"applicable":  len(applicable),
			"tie_break":   string(s.tieBreak),
		})
	}
	return winner, nil
}

// GetPriceWithDiscount is the single entry point for storefront pricing.
// A negative price is rejected with ErrInvalidPrice.
func (s *PricingService) GetPriceWithDiscount(ctx context.Context, serviceID, modelID uuid.UUID, originalPrice decimal.Decimal) (*model.PriceWithDiscount, error) {
	if originalPrice.IsNegative() {
		return nil, model.ErrInvalidPrice
	}

	discount, err := s.GetApplicableDiscount(ctx, serviceID, modelID)
	if err != nil {
		return nil, err
	}

	if discount == nil {
		return &model.PriceWithDiscount{
			OriginalPrice:   originalPrice,
			DiscountedPrice: originalPrice,
			HasDiscount:     false,
		}, nil
	}

	calc := CalculateDiscount(originalPrice, discount)
	return &model.PriceWithDiscount{
		OriginalPrice:   originalPrice,
		DiscountedPrice: calc.RoundedFinalPrice,
		HasDiscount:     true,
		Discount:        discount,
	}, nil
}
