package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

// HandleWebhook processes a Stripe webhook event. It verifies the
// signature, deduplicates by event id, and routes to the handler for the
// event type.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.config.WebhookSecret)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "verify webhook signature", err)
	}
	return s.processEvent(ctx, event)
}

func (s *StripeService) processEvent(ctx context.Context, event stripe.Event) error {
	log := obs.From(ctx)

	processed, err := s.db.IsWebhookEventProcessed(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook idempotency: %w", err)
	}
	if processed {
		log.Info("webhook_event_skipped", "pkg", "billing", "event_id", event.ID)
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		err = s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		err = s.handlePaymentFailed(ctx, event)
	default:
		log.Debug("webhook_event_unhandled", "pkg", "billing", "event_type", event.Type)
	}
	if err != nil {
		return fmt.Errorf("handle %s: %w", event.Type, err)
	}

	if err := s.db.MarkWebhookEventProcessed(ctx, event.ID, time.Now().Unix()); err != nil {
		log.Warn("webhook_mark_processed_failed", "pkg", "billing", "event_id", event.ID, "error", err)
	}
	return nil
}

func (s *StripeService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("unmarshal checkout session: %w", err)
	}

	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	subID := nullString("")
	if sess.Subscription != nil {
		subID = nullString(sess.Subscription.ID)
	}
	userID := sess.ClientReferenceID
	if userID == "" {
		obs.From(ctx).Warn("checkout_missing_reference", "pkg", "billing", "customer_id", customerID)
		return nil
	}

	if customerID != "" {
		if err := s.db.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return fmt.Errorf("map stripe customer: %w", err)
		}
	}
	if err := s.db.UpdateSubscription(ctx, userID, "active", subID); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	obs.From(ctx).Info("checkout_completed", "pkg", "billing",
		"user_id", userID, "customer_id", customerID, "subscription_id", subID.String)
	return nil
}

func (s *StripeService) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	customerID := sub.Customer.ID
	status := string(sub.Status)

	rows, err := s.db.UpdateSubscriptionByCustomerID(ctx, customerID, status, nullString(sub.ID))
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if rows == 0 {
		obs.From(ctx).Warn("webhook_unknown_customer", "pkg", "billing", "customer_id", customerID)
		return nil
	}

	obs.From(ctx).Info("subscription_updated", "pkg", "billing",
		"customer_id", customerID, "status", status)
	return nil
}

func (s *StripeService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	customerID := sub.Customer.ID
	rows, err := s.db.UpdateSubscriptionByCustomerID(ctx, customerID, "free", sql.NullString{})
	if err != nil {
		return fmt.Errorf("downgrade subscription: %w", err)
	}
	if rows == 0 {
		obs.From(ctx).Warn("webhook_unknown_customer", "pkg", "billing", "customer_id", customerID)
		return nil
	}

	obs.From(ctx).Info("subscription_deleted", "pkg", "billing", "customer_id", customerID)
	return nil
}

func (s *StripeService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("unmarshal invoice: %w", err)
	}

	customerID := ""
	if invoice.Customer != nil {
		customerID = invoice.Customer.ID
	}
	if customerID == "" {
		return nil
	}

	subID := sql.NullString{}
	if invoice.Parent != nil && invoice.Parent.SubscriptionDetails != nil && invoice.Parent.SubscriptionDetails.Subscription != nil {
		subID = nullString(invoice.Parent.SubscriptionDetails.Subscription.ID)
	}

	rows, err := s.db.UpdateSubscriptionByCustomerID(ctx, customerID, "past_due", subID)
	if err != nil {
		return fmt.Errorf("mark subscription past_due: %w", err)
	}
	if rows == 0 {
		obs.From(ctx).Warn("webhook_unknown_customer", "pkg", "billing", "customer_id", customerID)
		return nil
	}

	obs.From(ctx).Warn("payment_failed", "pkg", "billing", "customer_id", customerID)
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
