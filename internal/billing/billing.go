// Package billing integrates Stripe subscriptions: checkout, the customer
// portal, and the webhook that keeps local subscription state in sync.
package billing

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/errs"
)

// Service defines the billing operations used by the HTTP layer.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userID, email, baseURL string) (checkoutURL string, err error)
	CreatePortalSession(ctx context.Context, stripeCustomerID, returnURL string) (portalURL string, err error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	IsMock() bool
}

// Config holds Stripe configuration.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
}

// StripeService implements Service against the real Stripe API.
type StripeService struct {
	config Config
	db     *db.DB
}

// NewStripeService creates the real billing service. The Stripe client key
// is process-global in stripe-go v82.
func NewStripeService(cfg Config, database *db.DB) *StripeService {
	stripe.Key = cfg.SecretKey
	return &StripeService{config: cfg, db: database}
}

func (s *StripeService) IsMock() bool { return false }

// CreateCheckoutSession starts a hosted subscription checkout. The user id
// travels as the client reference so the webhook can attribute the
// purchase.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID, email, baseURL string) (string, error) {
	if userID == "" {
		return "", errs.New(errs.Unauthenticated, "checkout requires a signed-in user")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(baseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(baseURL + "/pricing"),
		ClientReferenceID: stripe.String(userID),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", errs.Wrap(errs.ProviderError, "failed to create checkout session", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the Stripe customer portal for subscription
// management.
func (s *StripeService) CreatePortalSession(ctx context.Context, stripeCustomerID, returnURL string) (string, error) {
	if stripeCustomerID == "" {
		return "", errs.New(errs.InvalidArgument, "no billing account for this user")
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(stripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return "", errs.Wrap(errs.ProviderError, "failed to create portal session", err)
	}
	return sess.URL, nil
}
