package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"repairhub-backend/internal/domains/discount/model"
)

type mockDiscountRepo struct {
	mock.Mock
}

func (m *mockDiscountRepo) FindActiveForService(ctx context.Context, serviceID uuid.UUID, now time.Time) ([]*model.Discount, error) {
	args := m.Called(ctx, serviceID, now)
	if v := args.Get(0); v != nil {
		return v.([]*model.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountRepo) FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.Discount, error) {
	args := m.Called(ctx, code, now)
	if v := args.Get(0); v != nil {
		return v.(*model.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountRepo) List(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, int, error) {
	args := m.Called(ctx, filter, now)
	if v := args.Get(0); v != nil {
		return v.([]*model.Discount), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockDiscountRepo) ListForExport(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, error) {
	args := m.Called(ctx, filter, now)
	if v := args.Get(0); v != nil {
		return v.([]*model.Discount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountRepo) Create(ctx context.Context, d *model.Discount) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDiscountRepo) Update(ctx context.Context, d *model.Discount) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDiscountRepo) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool, now time.Time) error {
	return m.Called(ctx, id, isActive, now).Error(0)
}

func (m *mockDiscountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDiscountRepo) DeactivateStale(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockModelLookup struct {
	mock.Mock
}

func (m *mockModelLookup) GetModelRef(ctx context.Context, modelID uuid.UUID) (*model.ModelRef, error) {
	args := m.Called(ctx, modelID)
	if v := args.Get(0); v != nil {
		return v.(*model.ModelRef), args.Error(1)
	}
	return nil, args.Error(1)
}
