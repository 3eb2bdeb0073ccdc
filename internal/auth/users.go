package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

// SubscriptionActive is the status a paid account carries after checkout.
const SubscriptionActive = "active"

// Seeder plants the starter content for a brand-new account.
type Seeder interface {
	EnsureSeeded(ctx context.Context, userID string) error
}

// WelcomeEmailer sends the signup email. It may be nil on a UserService,
// in which case no email is sent.
type WelcomeEmailer interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// UserService resolves OIDC claims to local user accounts, creating them
// on first sign-in.
type UserService struct {
	db      *db.DB
	seeder  Seeder
	emailer WelcomeEmailer
	now     func() time.Time
}

// NewUserService creates a user service. emailer may be nil.
func NewUserService(database *db.DB, seeder Seeder, emailer WelcomeEmailer) *UserService {
	return &UserService{
		db:      database,
		seeder:  seeder,
		emailer: emailer,
		now:     time.Now,
	}
}

// SetNowFunc overrides the clock for tests.
func (s *UserService) SetNowFunc(now func() time.Time) { s.now = now }

// Provision returns the local user for the given claims. Known Google
// subjects refresh their profile; known emails get the subject linked;
// anyone else gets a fresh account with the welcome note seeded.
func (s *UserService) Provision(ctx context.Context, claims *Claims) (*db.User, error) {
	if claims == nil || claims.Email == "" {
		return nil, errs.New(errs.Unauthenticated, "identity claims are incomplete")
	}

	now := s.now().UTC()

	user, err := s.db.GetUserByGoogleSub(ctx, claims.Sub)
	if err == nil {
		if err := s.db.TouchLastLogin(ctx, user.ID, claims.Name, now.Unix()); err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to record login", err)
		}
		user.Name = claims.Name
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Wrap(errs.Unavailable, "failed to look up user", err)
	}

	user, err = s.db.GetUserByEmail(ctx, claims.Email)
	if err == nil {
		if err := s.db.LinkGoogleSub(ctx, user.ID, claims.Sub); err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to link account", err)
		}
		if err := s.db.TouchLastLogin(ctx, user.ID, claims.Name, now.Unix()); err != nil {
			return nil, errs.Wrap(errs.Unavailable, "failed to record login", err)
		}
		user.GoogleSub = sql.NullString{String: claims.Sub, Valid: true}
		user.Name = claims.Name
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Wrap(errs.Unavailable, "failed to look up user", err)
	}

	user = &db.User{
		ID:                 uuid.New().String(),
		Email:              claims.Email,
		Name:               claims.Name,
		GoogleSub:          sql.NullString{String: claims.Sub, Valid: true},
		SubscriptionStatus: "free",
		CreatedAt:          now.Unix(),
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to create user", err)
	}
	obs.From(ctx).Info("user_created", "pkg", "auth", "user_id", user.ID)

	if s.seeder != nil {
		if err := s.seeder.EnsureSeeded(ctx, user.ID); err != nil {
			// The lazy list-time seed path will retry; signup proceeds.
			obs.From(ctx).Warn("welcome_seed_failed", "pkg", "auth", "user_id", user.ID, "error", err)
		}
	}
	if s.emailer != nil {
		if err := s.emailer.SendWelcome(ctx, user.Email, user.Name); err != nil {
			obs.From(ctx).Warn("welcome_email_failed", "pkg", "auth", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// IsPaid reports whether the account has an active subscription.
func IsPaid(u *db.User) bool {
	return u != nil && u.SubscriptionStatus == SubscriptionActive
}
