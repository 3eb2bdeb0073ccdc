package billing

import (
	"context"
	"database/sql"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/obs"
)

// MockService implements Service without calling Stripe. Checkout upgrades
// the user immediately so paid features are reachable in local runs.
type MockService struct {
	db *db.DB
}

func NewMockService(database *db.DB) *MockService {
	return &MockService{db: database}
}

func (m *MockService) IsMock() bool { return true }

func (m *MockService) CreateCheckoutSession(ctx context.Context, userID, email, baseURL string) (string, error) {
	if err := m.db.UpdateSubscription(ctx, userID, "active", sql.NullString{String: "sub_mock", Valid: true}); err != nil {
		return "", err
	}
	obs.From(ctx).Info("mock_checkout", "pkg", "billing", "user_id", userID, "email", email)
	return baseURL + "/billing/success?session_id=mock", nil
}

func (m *MockService) CreatePortalSession(ctx context.Context, stripeCustomerID, returnURL string) (string, error) {
	obs.From(ctx).Info("mock_portal", "pkg", "billing", "customer_id", stripeCustomerID)
	return returnURL + "?mock_portal=true", nil
}

func (m *MockService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	obs.From(ctx).Debug("mock_webhook_ignored", "pkg", "billing")
	return nil
}
