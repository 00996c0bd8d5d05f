package registrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xourcebase/backend/internal/models"
)

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or refreshes a registration keyed on payment_id. Concurrent
// deliveries for the same payment serialize on the unique constraint, so
// redeliveries update the row instead of duplicating it.
func (r *Repository) Upsert(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations
		(id, payment_id, full_name, email, phone, whatsapp, current_position, experience, coupon, amount_paid, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (payment_id) DO UPDATE SET
			status = EXCLUDED.status,
			amount_paid = EXCLUDED.amount_paid,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		reg.PaymentID, reg.FullName, reg.Email, reg.Phone, reg.Whatsapp,
		reg.CurrentRole, reg.Experience, reg.Coupon, reg.AmountPaid, reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetByPaymentID returns the registration for a payment id, if any.
func (r *Repository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Registration, error) {
	const q = `SELECT id, payment_id, full_name, email, phone, whatsapp, current_position, experience,
		coupon, amount_paid, status, created_at, updated_at
		FROM registrations WHERE payment_id = $1`
	var reg models.Registration
	err := r.pool.QueryRow(ctx, q, paymentID).Scan(
		&reg.ID, &reg.PaymentID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Whatsapp,
		&reg.CurrentRole, &reg.Experience, &reg.Coupon, &reg.AmountPaid, &reg.Status,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ListParams are the admin listing filters. Page and Limit are assumed
// already clamped by the handler.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Coupon string
	From   *time.Time
	To     *time.Time
}

// List returns a page of registrations newest-first plus the total count
// matching the filters.
func (r *Repository) List(ctx context.Context, p ListParams) ([]models.Registration, int, error) {
	var conds []string
	var args []interface{}

	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR phone LIKE $%d)", n, n, n))
	}
	if p.Coupon != "" && p.Coupon != "all" {
		args = append(args, p.Coupon)
		conds = append(conds, fmt.Sprintf("coupon = $%d", len(args)))
	}
	if p.From != nil {
		args = append(args, *p.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if p.To != nil {
		args = append(args, *p.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM registrations"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	offset := (p.Page - 1) * p.Limit
	args = append(args, p.Limit, offset)
	q := fmt.Sprintf(`SELECT id, payment_id, full_name, email, phone, whatsapp, current_position, experience,
		coupon, amount_paid, status, created_at, updated_at
		FROM registrations%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(
			&reg.ID, &reg.PaymentID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Whatsapp,
			&reg.CurrentRole, &reg.Experience, &reg.Coupon, &reg.AmountPaid, &reg.Status,
			&reg.CreatedAt, &reg.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		list = append(list, reg)
	}
	return list, total, rows.Err()
}
