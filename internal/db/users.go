package db

import (
	"context"
	"database/sql"
	"fmt"
)

const userColumns = `id, email, name, google_sub, subscription_status, subscription_id, stripe_customer_id, created_at, last_login`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.GoogleSub,
		&u.SubscriptionStatus, &u.SubscriptionID, &u.StripeCustomerID,
		&u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user row.
func (d *DB) CreateUser(ctx context.Context, u *User) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, google_sub, subscription_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.GoogleSub, u.SubscriptionStatus, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID fetches a user by primary key. Returns sql.ErrNoRows if absent.
func (d *DB) GetUserByID(ctx context.Context, id string) (*User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email. Returns sql.ErrNoRows if absent.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByGoogleSub fetches a user by Google subject. Returns sql.ErrNoRows if absent.
func (d *DB) GetUserByGoogleSub(ctx context.Context, sub string) (*User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_sub = ?`, sub)
	return scanUser(row)
}

// GetUserByStripeCustomerID fetches a user by Stripe customer. Returns sql.ErrNoRows if absent.
func (d *DB) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE stripe_customer_id = ?`, customerID)
	return scanUser(row)
}

// TouchLastLogin records the login timestamp and refreshed profile name.
func (d *DB) TouchLastLogin(ctx context.Context, userID, name string, when int64) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE users SET last_login = ?, name = ? WHERE id = ?`, when, name, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// LinkGoogleSub attaches a Google subject to an existing user, used when
// an account created before OIDC login signs in with Google for the first
// time.
func (d *DB) LinkGoogleSub(ctx context.Context, userID, sub string) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE users SET google_sub = ? WHERE id = ?`, sub, userID)
	if err != nil {
		return fmt.Errorf("failed to link google subject: %w", err)
	}
	return nil
}

// SetStripeCustomerID links a Stripe customer to a user.
func (d *DB) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE users SET stripe_customer_id = ? WHERE id = ?`, customerID, userID)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer: %w", err)
	}
	return nil
}

// UpdateSubscription sets subscription status and id for a user.
func (d *DB) UpdateSubscription(ctx context.Context, userID, status string, subscriptionID sql.NullString) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE users SET subscription_status = ?, subscription_id = ? WHERE id = ?`,
		status, subscriptionID, userID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

// UpdateSubscriptionByCustomerID sets subscription state keyed by Stripe customer.
// Returns the number of rows updated so callers can log unmatched webhooks.
func (d *DB) UpdateSubscriptionByCustomerID(ctx context.Context, customerID, status string, subscriptionID sql.NullString) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`UPDATE users SET subscription_status = ?, subscription_id = ? WHERE stripe_customer_id = ?`,
		status, subscriptionID, customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to update subscription by customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}
