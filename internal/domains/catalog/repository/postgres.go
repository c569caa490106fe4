package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogModel "repairhub-backend/internal/domains/catalog/model"
	discountModel "repairhub-backend/internal/domains/discount/model"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetModelRef returns nil, nil for unknown or retired models.
func (r *PostgresRepository) GetModelRef(ctx context.Context, modelID uuid.UUID) (*discountModel.ModelRef, error) {
	query := `
		SELECT m.id, m.brand_id, m.series_id
		FROM device_models m
		WHERE m.id = $1 AND m.is_active = TRUE
	`

	var ref discountModel.ModelRef
	err := r.db.QueryRow(ctx, query, modelID).Scan(&ref.ID, &ref.BrandID, &ref.SeriesID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query device model: %w", err)
	}
	return &ref, nil
}

func (r *PostgresRepository) GetServicePrice(ctx context.Context, serviceID, modelID uuid.UUID) (*catalogModel.ServicePrice, error) {
	query := `
		SELECT
			sp.service_id, s.name,
			sp.model_id, m.name, b.name,
			sp.price
		FROM service_prices sp
		JOIN repair_services s ON s.id = sp.service_id
		JOIN device_models m ON m.id = sp.model_id
		JOIN brands b ON b.id = m.brand_id
		WHERE sp.service_id = $1
		  AND sp.model_id = $2
		  AND s.is_active = TRUE
		  AND m.is_active = TRUE
	`

	var sp catalogModel.ServicePrice
	err := r.db.QueryRow(ctx, query, serviceID, modelID).Scan(
		&sp.ServiceID, &sp.ServiceName,
		&sp.ModelID, &sp.ModelName, &sp.BrandName,
		&sp.Price,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogModel.ErrServicePriceNotFound
		}
		return nil, fmt.Errorf("query service price: %w", err)
	}
	return &sp, nil
}
