package db

import "database/sql"

// User is a row in the users table.
type User struct {
	ID                 string
	Email              string
	Name               string
	GoogleSub          sql.NullString
	SubscriptionStatus string
	SubscriptionID     sql.NullString
	StripeCustomerID   sql.NullString
	CreatedAt          int64
	LastLogin          sql.NullInt64
}

// Note is a row in the notes table.
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Slug      string
	ImageURL  sql.NullString
	CreatedAt int64
	UpdatedAt int64
}

// Session is a row in the sessions table.
type Session struct {
	SessionID string
	UserID    string
	ExpiresAt int64
	CreatedAt int64
}
