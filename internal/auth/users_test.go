package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/notes"
)

type recordingEmailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (e *recordingEmailer) SendWelcome(ctx context.Context, to, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, to)
	return nil
}

func googleClaims(email string) *auth.Claims {
	return &auth.Claims{
		Sub:           "google-" + email,
		Email:         email,
		Name:          "Ada Example",
		EmailVerified: true,
	}
}

func TestProvision_FirstSignInCreatesSeededUser(t *testing.T) {
	d := newAuthTestDB(t)
	noteSvc := notes.NewService(d)
	emailer := &recordingEmailer{}
	users := auth.NewUserService(d, noteSvc, emailer)
	ctx := context.Background()

	user, err := users.Provision(ctx, googleClaims("ada@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "ada@example.com", user.Email)
	require.Equal(t, "free", user.SubscriptionStatus)

	// The welcome note exists before the first list request.
	welcome, err := noteSvc.Get(ctx, user.ID, "welcome-"+user.ID)
	require.NoError(t, err)
	require.Equal(t, notes.WelcomeTitle, welcome.Title)

	emailer.mu.Lock()
	defer emailer.mu.Unlock()
	require.Equal(t, []string{"ada@example.com"}, emailer.sent)
}

func TestProvision_ReturningUserIsNotDuplicated(t *testing.T) {
	d := newAuthTestDB(t)
	users := auth.NewUserService(d, notes.NewService(d), nil)
	ctx := context.Background()

	current := time.Unix(1_700_000_000, 0)
	users.SetNowFunc(func() time.Time { return current })

	first, err := users.Provision(ctx, googleClaims("ada@example.com"))
	require.NoError(t, err)

	current = current.Add(48 * time.Hour)
	second, err := users.Provision(ctx, googleClaims("ada@example.com"))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	stored, err := d.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, current.UTC().Unix(), stored.LastLogin.Int64)
}

func TestProvision_LinksGoogleSubToExistingEmail(t *testing.T) {
	d := newAuthTestDB(t)
	users := auth.NewUserService(d, notes.NewService(d), nil)
	ctx := context.Background()

	// Account that predates OIDC sign-in.
	require.NoError(t, d.CreateUser(ctx, &db.User{
		ID:                 "legacy-1",
		Email:              "ada@example.com",
		Name:               "Ada",
		SubscriptionStatus: "free",
		CreatedAt:          time.Now().Unix(),
	}))

	user, err := users.Provision(ctx, googleClaims("ada@example.com"))
	require.NoError(t, err)
	require.Equal(t, "legacy-1", user.ID)

	stored, err := d.GetUserByGoogleSub(ctx, "google-ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "legacy-1", stored.ID)
}

func TestProvision_RejectsIncompleteClaims(t *testing.T) {
	d := newAuthTestDB(t)
	users := auth.NewUserService(d, notes.NewService(d), nil)

	_, err := users.Provision(context.Background(), nil)
	require.Equal(t, errs.Unauthenticated, errs.CodeOf(err))

	_, err = users.Provision(context.Background(), &auth.Claims{Sub: "s"})
	require.Equal(t, errs.Unauthenticated, errs.CodeOf(err))
}

func TestProvision_EmailFailureDoesNotBlockSignup(t *testing.T) {
	d := newAuthTestDB(t)
	emailer := &recordingEmailer{err: errors.New("smtp down")}
	users := auth.NewUserService(d, notes.NewService(d), emailer)

	user, err := users.Provision(context.Background(), googleClaims("ada@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
}

func TestIsPaid(t *testing.T) {
	require.False(t, auth.IsPaid(nil))
	require.False(t, auth.IsPaid(&db.User{SubscriptionStatus: "free"}))
	require.True(t, auth.IsPaid(&db.User{SubscriptionStatus: auth.SubscriptionActive}))
}
