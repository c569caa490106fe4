package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"repairhub-backend/internal/domains/discount/model"
	"repairhub-backend/internal/shared/utils"
	"repairhub-backend/pkg/database"
)

// Postgres SQLSTATE codes mapped by mapWriteError
const (
	notNullViolation    = "23502"
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
	checkViolation      = "23514"
)

// PostgresRepository implements DiscountRepository on pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) DiscountRepository {
	return &PostgresRepository{db: db}
}

// selectDiscount lists columns in scanDiscount order. The service
// association is folded into an array so one row is one discount.
const selectDiscount = `
	SELECT
		d.id, d.name, d.code, d.description,
		d.discount_type, d.discount_value,
		d.scope_type, d.service_id,
		ARRAY(
			SELECT ds.service_id FROM discount_services ds
			WHERE ds.discount_id = d.id
			ORDER BY ds.service_id
		) AS service_ids,
		d.brand_id, d.series_id, d.model_id,
		d.is_active, d.starts_at, d.expires_at,
		d.max_uses, d.current_uses, d.max_uses_per_user,
		d.created_at, d.updated_at
	FROM discounts d
`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDiscount reads one selectDiscount row. Pointer fields are nullable;
// ServiceID is the legacy single-service column.
func scanDiscount(row rowScanner) (*model.Discount, error) {
	var d model.Discount
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Code,
		&d.Description,
		&d.DiscountType,
		&d.DiscountValue,
		&d.ScopeType,
		&d.ServiceID,
		&d.ServiceIDs,
		&d.BrandID,
		&d.SeriesID,
		&d.ModelID,
		&d.IsActive,
		&d.StartsAt,
		&d.ExpiresAt,
		&d.MaxUses,
		&d.CurrentUses,
		&d.MaxUsesPerUser,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(d.ServiceIDs) == 0 {
		d.ServiceIDs = nil
	}
	return &d, nil
}

func collectDiscounts(rows pgx.Rows) ([]*model.Discount, error) {
	defer rows.Close()

	discounts := make([]*model.Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discounts: %w", err)
	}
	return discounts, nil
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

// FindActiveForService is the storage pre-filter of the pricing engine:
// switched on, not expired at now, and attached to the service either
// through all_services scope, the legacy service_id column or
// discount_services. Start date and usage cap are left to the engine.
func (r *PostgresRepository) FindActiveForService(ctx context.Context, serviceID uuid.UUID, now time.Time) ([]*model.Discount, error) {
	query := selectDiscount + `
		WHERE d.is_active = TRUE
		  AND (d.expires_at IS NULL OR d.expires_at > $2)
		  AND (
			d.scope_type = 'all_services'
			OR d.service_id = $1
			OR EXISTS (
				SELECT 1 FROM discount_services ds
				WHERE ds.discount_id = d.id AND ds.service_id = $1
			)
		  )
		ORDER BY d.created_at ASC, d.id ASC
	`

	rows, err := r.db.Query(ctx, query, serviceID, now)
	if err != nil {
		return nil, fmt.Errorf("query active discounts for service: %w", err)
	}
	return collectDiscounts(rows)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	d, err := scanDiscount(r.db.QueryRow(ctx, selectDiscount+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("find discount by id: %w", err)
	}
	return d, nil
}

// FindActiveByCode matches the code case-insensitively and only returns
// a discount that is usable at now.
func (r *PostgresRepository) FindActiveByCode(ctx context.Context, code string, now time.Time) (*model.Discount, error) {
	query := selectDiscount + `
		WHERE UPPER(d.code) = UPPER($1)
		  AND d.is_active = TRUE
		  AND (d.starts_at IS NULL OR d.starts_at <= $2)
		  AND (d.expires_at IS NULL OR d.expires_at > $2)
		  AND (d.max_uses IS NULL OR d.current_uses < d.max_uses)
	`

	d, err := scanDiscount(r.db.QueryRow(ctx, query, code, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("find active discount by code: %w", err)
	}
	return d, nil
}

// List returns one page plus the total matching count.
func (r *PostgresRepository) List(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, int, error) {
	where, args := buildListWhere(filter, now)

	var total int
	countQuery := `SELECT COUNT(*) FROM discounts d ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count discounts: %w", err)
	}
	if total == 0 {
		return []*model.Discount{}, 0, nil
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf("%s %s ORDER BY d.created_at DESC, d.id DESC LIMIT $%d OFFSET $%d",
		selectDiscount, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list discounts: %w", err)
	}
	discounts, err := collectDiscounts(rows)
	if err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// ListForExport is List without paging, oldest first.
func (r *PostgresRepository) ListForExport(ctx context.Context, filter *model.ListDiscountsFilter, now time.Time) ([]*model.Discount, error) {
	where, args := buildListWhere(filter, now)

	rows, err := r.db.Query(ctx, selectDiscount+where+` ORDER BY d.created_at ASC, d.id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list discounts for export: %w", err)
	}
	return collectDiscounts(rows)
}

// buildListWhere turns the admin filter into a WHERE clause and its args.
func buildListWhere(filter *model.ListDiscountsFilter, now time.Time) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// NULL starts_at/expires_at = không giới hạn phía đó
		switch filter.Status {
		case model.StatusActive:
			p := arg(now)
			conds = append(conds,
				"d.is_active = TRUE",
				"(d.starts_at IS NULL OR d.starts_at <= "+p+")",
				"(d.expires_at IS NULL OR d.expires_at > "+p+")",
				"(d.max_uses IS NULL OR d.current_uses < d.max_uses)",
			)
		case model.StatusInactive:
			conds = append(conds, "d.is_active = FALSE")
		case model.StatusUpcoming:
			conds = append(conds, "d.is_active = TRUE", "d.starts_at > "+arg(now))
		case model.StatusExpired:
			conds = append(conds, "d.expires_at <= "+arg(now))
		case model.StatusExhausted:
			conds = append(conds, "d.max_uses IS NOT NULL", "d.current_uses >= d.max_uses")
		}

		if filter.ScopeType != "" {
			conds = append(conds, "d.scope_type = "+arg(filter.ScopeType))
		}

		if filter.Search != "" {
			p := arg("%" + utils.EscapeLike(filter.Search) + "%")
			conds = append(conds, "(d.code ILIKE "+p+" OR d.name ILIKE "+p+")")
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + utils.JoinWithAnd(conds), args
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

// Create inserts the discount and its service association atomically.
func (r *PostgresRepository) Create(ctx context.Context, d *model.Discount) error {
	query := `
		INSERT INTO discounts (
			id, name, code, description,
			discount_type, discount_value,
			scope_type, service_id, brand_id, series_id, model_id,
			is_active, starts_at, expires_at,
			max_uses, current_uses, max_uses_per_user
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			d.ID, d.Name, d.Code, d.Description,
			d.DiscountType, d.DiscountValue,
			d.ScopeType, d.ServiceID, d.BrandID, d.SeriesID, d.ModelID,
			d.IsActive, d.StartsAt, d.ExpiresAt,
			d.MaxUses, d.CurrentUses, d.MaxUsesPerUser,
		).Scan(&d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return mapWriteError(err, "insert discount")
		}

		return insertServices(ctx, tx, d.ID, d.ServiceIDs)
	})
	return err
}

// Update rewrites every mutable column and replaces the service association.
func (r *PostgresRepository) Update(ctx context.Context, d *model.Discount) error {
	query := `
		UPDATE discounts SET
			name = $2, code = $3, description = $4,
			discount_type = $5, discount_value = $6,
			scope_type = $7, service_id = $8, brand_id = $9, series_id = $10, model_id = $11,
			is_active = $12, starts_at = $13, expires_at = $14,
			max_uses = $15, max_uses_per_user = $16,
			updated_at = $17
		WHERE id = $1
	`

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			d.ID, d.Name, d.Code, d.Description,
			d.DiscountType, d.DiscountValue,
			d.ScopeType, d.ServiceID, d.BrandID, d.SeriesID, d.ModelID,
			d.IsActive, d.StartsAt, d.ExpiresAt,
			d.MaxUses, d.MaxUsesPerUser,
			d.UpdatedAt,
		)
		if err != nil {
			return mapWriteError(err, "update discount")
		}
		if tag.RowsAffected() == 0 {
			return model.ErrDiscountNotFound
		}

		// Thay toàn bộ association: xóa hết rồi insert lại trong cùng transaction
		if _, err := tx.Exec(ctx, `DELETE FROM discount_services WHERE discount_id = $1`, d.ID); err != nil {
			return fmt.Errorf("clear discount services: %w", err)
		}
		return insertServices(ctx, tx, d.ID, d.ServiceIDs)
	})
}

func insertServices(ctx context.Context, tx pgx.Tx, discountID uuid.UUID, serviceIDs []uuid.UUID) error {
	if len(serviceIDs) == 0 {
		return nil
	}

	ids := make([]string, len(serviceIDs))
	for i, id := range serviceIDs {
		ids[i] = id.String()
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO discount_services (discount_id, service_id)
		SELECT $1, UNNEST($2::uuid[])
		ON CONFLICT DO NOTHING
	`, discountID, pq.Array(ids))
	if err != nil {
		return mapWriteError(err, "insert discount services")
	}
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool, now time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE discounts SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, isActive, now,
	)
	if err != nil {
		return fmt.Errorf("update discount status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDiscountNotFound
	}
	return nil
}

// Delete removes the discount and its association rows.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM discount_services WHERE discount_id = $1`, id); err != nil {
			return fmt.Errorf("delete discount services: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete discount: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrDiscountNotFound
		}
		return nil
	})
}

// DeactivateStale switches off discounts that can never apply again:
// expired ones and ones whose usage cap is reached.
func (r *PostgresRepository) DeactivateStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE discounts
		SET is_active = FALSE, updated_at = $1
		WHERE is_active = TRUE
		  AND (
			(expires_at IS NOT NULL AND expires_at <= $1)
			OR (max_uses IS NOT NULL AND current_uses >= max_uses)
		  )
	`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale discounts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// mapWriteError turns constraint violations into client errors: the
// unique code index into ErrDuplicateCode, the others into a validation
// error naming the column or constraint. Anything else is a data failure.
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch pgErr.Code {
	case uniqueViolation:
		return model.ErrDuplicateCode
	case notNullViolation:
		return model.NewValidationError(fmt.Errorf("%s is required", pgErr.ColumnName))
	case checkViolation:
		return model.NewValidationError(fmt.Errorf("violates %s", pgErr.ConstraintName))
	case foreignKeyViolation:
		return model.NewValidationError(fmt.Errorf("references an unknown record (%s)", pgErr.ConstraintName))
	}
	return fmt.Errorf("%s: %w", op, err)
}
