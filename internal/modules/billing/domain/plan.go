package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Plan is a subscription tier. provider_plan_id links it to the payment
// provider; the free tier has none and never leaves the local store.
type Plan struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Code           string    `json:"code" db:"code"`
	Name           string    `json:"name" db:"name"`
	PriceCents     int       `json:"price_cents" db:"price_cents"`
	Currency       string    `json:"currency" db:"currency"`
	BillingCycle   string    `json:"billing_cycle" db:"billing_cycle"`
	MaxMembers     int       `json:"max_members" db:"max_members"`
	ProviderPlanID *string   `json:"-" db:"provider_plan_id"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (p *Plan) Free() bool {
	return p.PriceCents == 0
}

// Subscription is the caller-facing view of their current plan linkage.
type Subscription struct {
	PlanCode       string  `json:"plan"`
	PlanName       string  `json:"plan_name"`
	SubscriptionID *string `json:"subscription_id,omitempty"`
}

type PlanRepository interface {
	ListActive(ctx context.Context) ([]Plan, error)
	GetByCode(ctx context.Context, code string) (*Plan, error)
}
