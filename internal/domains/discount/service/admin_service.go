package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/domains/discount/repository"
	"repairhub-backend/pkg/clock"
	"repairhub-backend/pkg/logger"
)

// AdminService implements the back-office discount operations.
type AdminService struct {
	repo  repository.DiscountRepository
	clock clock.Clock
}

func NewAdminService(repo repository.DiscountRepository, clk clock.Clock) AdminServiceInterface {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &AdminService{repo: repo, clock: clk}
}

// -------------------------------------------------------------------
// CREATE
// -------------------------------------------------------------------

// CreateDiscount validates and stores a new discount.
//
// Business Logic Flow:
//  1. Normalize and validate the wire format
//  2. Build the entity (code upper-cased, is_active defaults to true)
//  3. Validate business rules (scope references, value range, window)
//  4. Insert; a taken code surfaces as ErrDuplicateCode
func (s *AdminService) CreateDiscount(ctx context.Context, req *model.CreateDiscountRequest) (*model.DiscountResponse, error) {
	// 1. Chuẩn hóa + validate format request
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// 2. Build entity rồi check business rules
	d, err := req.ToDiscount()
	if err != nil {
		return nil, model.NewValidationError(err)
	}
	if err := d.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// 3. Insert (code trùng -> ErrDuplicateCode từ repository)
	now := s.clock.Now()
	d.CreatedAt, d.UpdatedAt = now, now

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Discount created", map[string]interface{}{
		"discount_id": d.ID.String(),
		"code":        d.Code,
		"scope_type":  string(d.ScopeType),
	})
	return s.toResponse(d), nil
}

// -------------------------------------------------------------------
// READ
// -------------------------------------------------------------------

func (s *AdminService) GetDiscount(ctx context.Context, id uuid.UUID) (*model.DiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(d), nil
}

// GetDiscountByCode is the public lookup; only usable discounts are found.
func (s *AdminService) GetDiscountByCode(ctx context.Context, code string) (*model.DiscountInfo, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, model.ErrDiscountNotFound
	}

	d, err := s.repo.FindActiveByCode(ctx, code, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return d.ToInfo(), nil
}

func (s *AdminService) ListDiscounts(ctx context.Context, filter *model.ListDiscountsFilter) ([]*model.DiscountResponse, int, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, 0, model.NewValidationError(err)
	}

	discounts, total, err := s.repo.List(ctx, filter, s.clock.Now())
	if err != nil {
		return nil, 0, err
	}

	items := make([]*model.DiscountResponse, 0, len(discounts))
	for _, d := range discounts {
		items = append(items, s.toResponse(d))
	}
	return items, total, nil
}

// -------------------------------------------------------------------
// UPDATE
// -------------------------------------------------------------------

// UpdateDiscount applies a partial update.
//
// Business Logic Flow:
//  1. Load the current discount
//  2. Merge the supplied fields and re-run entity validation
//  3. max_uses may not drop below current_uses
//  4. Persist; service_ids, when supplied, replace the association
func (s *AdminService) UpdateDiscount(ctx context.Context, id uuid.UUID, req *model.UpdateDiscountRequest) (*model.DiscountResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.HasChanges() {
		return s.toResponse(d), nil
	}

	// Merge vào bản hiện tại, kể cả các field trong "clear"
	if err := req.ApplyTo(d); err != nil {
		return nil, model.NewValidationError(err)
	}
	if err := d.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}
	// Không cho hạ max_uses xuống dưới số lượt đã dùng
	if d.MaxUses != nil && *d.MaxUses < d.CurrentUses {
		return nil, model.ErrMaxUsesBelowCurrent.WithDetails(map[string]interface{}{
			"max_uses":     *d.MaxUses,
			"current_uses": d.CurrentUses,
		})
	}

	d.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Discount updated", map[string]interface{}{
		"discount_id": d.ID.String(),
		"code":        d.Code,
	})
	return s.toResponse(d), nil
}

func (s *AdminService) UpdateDiscountStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	if err := s.repo.UpdateStatus(ctx, id, isActive, s.clock.Now()); err != nil {
		return err
	}

	logger.Info("Discount status changed", map[string]interface{}{
		"discount_id": id.String(),
		"is_active":   isActive,
	})
	return nil
}

// DeleteDiscount is a hard delete reserved for administrators.
func (s *AdminService) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Discount deleted", map[string]interface{}{"discount_id": id.String()})
	return nil
}

// -------------------------------------------------------------------
// MAINTENANCE & EXPORT
// -------------------------------------------------------------------

// DeactivateStaleDiscounts switches off expired and exhausted discounts.
func (s *AdminService) DeactivateStaleDiscounts(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateStale(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ExportDiscounts writes an XLSX workbook of the filtered discounts to w
// and returns the number of rows.
func (s *AdminService) ExportDiscounts(ctx context.Context, filter *model.ListDiscountsFilter, w io.Writer) (int, error) {
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return 0, model.NewValidationError(err)
	}

	now := s.clock.Now()
	discounts, err := s.repo.ListForExport(ctx, filter, now)
	if err != nil {
		return 0, err
	}

	f, err := BuildDiscountWorkbook(discounts, now)
	if err != nil {
		return 0, fmt.Errorf("build discount workbook: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write discount workbook: %w", err)
	}
	return len(discounts), nil
}

func (s *AdminService) toResponse(d *model.Discount) *model.DiscountResponse {
	return &model.DiscountResponse{
		Discount:          d,
		RemainingUses:     d.RemainingUses(),
		IsCurrentlyActive: IsDiscountActive(d, s.clock.Now()),
	}
}
