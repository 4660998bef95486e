package domain

import "errors"

var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrNoSubscription    = errors.New("no active subscription")
	ErrAlreadySubscribed = errors.New("already subscribed to this plan")
	ErrBillingProvider   = errors.New("billing provider request failed")
)
