package api

import (
	"io"
	"net/http"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/urlutil"
)

// maxWebhookBytes bounds a Stripe webhook payload.
const maxWebhookBytes = 1 << 20

// CheckoutResponse carries the redirect target for a billing flow.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// BillingCheckout handles POST /billing/checkout: starts a subscription
// checkout for the signed-in user.
func (h *Handler) BillingCheckout(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	origin := urlutil.OriginFromRequest(r, h.baseURL)

	url, err := h.billing.CreateCheckoutSession(r.Context(), user.ID, user.Email, origin)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

// BillingPortal handles POST /billing/portal: opens the customer portal
// for a user with a Stripe customer record.
func (h *Handler) BillingPortal(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if !user.StripeCustomerID.Valid {
		writeError(w, r, errs.New(errs.InvalidArgument, "no billing account for this user"))
		return
	}

	origin := urlutil.OriginFromRequest(r, h.baseURL)
	url, err := h.billing.CreatePortalSession(r.Context(), user.StripeCustomerID.String, origin+"/settings")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

// BillingWebhook handles POST /billing/webhook. Signature failures are
// 400; everything verified and deduplicated is acknowledged with 200.
func (h *Handler) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeBadRequest(w, r, "could not read webhook payload")
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
