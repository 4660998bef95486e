package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"
	"github.com/soundrift/soundrift/internal/modules/billing/domain"
	identity "github.com/soundrift/soundrift/internal/modules/identity/domain"
)

// BillingService links users to subscription plans through the payment
// provider. Provider state is created before any local write, so a provider
// failure commits nothing.
type BillingService struct {
	plans  domain.PlanRepository
	users  identity.UserRepository
	client *razorpay.Client
}

func NewBillingService(plans domain.PlanRepository, users identity.UserRepository, keyID, keySecret string) *BillingService {
	return &BillingService{
		plans:  plans,
		users:  users,
		client: razorpay.NewClient(keyID, keySecret),
	}
}

func (s *BillingService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.plans.ListActive(ctx)
}

// Subscribe moves the user onto the given plan. The free tier is purely
// local; paid tiers go through the provider first.
func (s *BillingService) Subscribe(ctx context.Context, userID uuid.UUID, planCode string) (*domain.Subscription, error) {
	plan, err := s.plans.GetByCode(ctx, planCode)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Plan != nil && *user.Plan == plan.Code {
		return nil, domain.ErrAlreadySubscribed
	}

	if plan.Free() {
		if err := s.cancelProviderSubscription(user); err != nil {
			return nil, err
		}
		if err := s.users.SetBillingLink(ctx, userID, user.BillingCustomerID, nil, &plan.Code); err != nil {
			return nil, err
		}
		return &domain.Subscription{PlanCode: plan.Code, PlanName: plan.Name}, nil
	}

	customerID, err := s.ensureCustomer(user)
	if err != nil {
		return nil, err
	}

	subscriptionID, err := s.createProviderSubscription(plan, customerID)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetBillingLink(ctx, userID, &customerID, &subscriptionID, &plan.Code); err != nil {
		return nil, err
	}
	return &domain.Subscription{
		PlanCode:       plan.Code,
		PlanName:       plan.Name,
		SubscriptionID: &subscriptionID,
	}, nil
}

// Cancel tears down the provider subscription and drops the user back to the
// free tier. The provider customer is kept for resubscription.
func (s *BillingService) Cancel(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.SubscriptionID == nil {
		return domain.ErrNoSubscription
	}

	if err := s.cancelProviderSubscription(user); err != nil {
		return err
	}
	free := "free"
	return s.users.SetBillingLink(ctx, userID, user.BillingCustomerID, nil, &free)
}

func (s *BillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	code := "free"
	if user.Plan != nil {
		code = *user.Plan
	}
	plan, err := s.plans.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &domain.Subscription{
		PlanCode:       plan.Code,
		PlanName:       plan.Name,
		SubscriptionID: user.SubscriptionID,
	}, nil
}

func (s *BillingService) ensureCustomer(user *identity.User) (string, error) {
	if user.BillingCustomerID != nil {
		return *user.BillingCustomerID, nil
	}
	customer, err := s.client.Customer.Create(map[string]interface{}{
		"name":          user.Username,
		"email":         user.Email,
		"fail_existing": "0",
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBillingProvider, err)
	}
	customerID, ok := customer["id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing customer id", domain.ErrBillingProvider)
	}
	return customerID, nil
}

func (s *BillingService) createProviderSubscription(plan *domain.Plan, customerID string) (string, error) {
	if plan.ProviderPlanID == nil {
		return "", fmt.Errorf("%w: plan %s has no provider mapping", domain.ErrBillingProvider, plan.Code)
	}
	subscription, err := s.client.Subscription.Create(map[string]interface{}{
		"plan_id":         *plan.ProviderPlanID,
		"customer_id":     customerID,
		"total_count":     12,
		"customer_notify": 1,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrBillingProvider, err)
	}
	subscriptionID, ok := subscription["id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing subscription id", domain.ErrBillingProvider)
	}
	return subscriptionID, nil
}

func (s *BillingService) cancelProviderSubscription(user *identity.User) error {
	if user.SubscriptionID == nil {
		return nil
	}
	if _, err := s.client.Subscription.Cancel(*user.SubscriptionID, nil, nil); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBillingProvider, err)
	}
	return nil
}
