package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/soundrift/soundrift/internal/modules/billing/domain"
)

type PgPlanRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) *PgPlanRepository {
	return &PgPlanRepository{db: db}
}

func (r *PgPlanRepository) ListActive(ctx context.Context) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, code, name, price_cents, currency, billing_cycle,
		       max_members, provider_plan_id, is_active, created_at
		FROM subscription_plans
		WHERE is_active
		ORDER BY price_cents`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (r *PgPlanRepository) GetByCode(ctx context.Context, code string) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.db.GetContext(ctx, &plan, `
		SELECT id, code, name, price_cents, currency, billing_cycle,
		       max_members, provider_plan_id, is_active, created_at
		FROM subscription_plans
		WHERE code = $1 AND is_active`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch plan: %w", err)
	}
	return &plan, nil
}
