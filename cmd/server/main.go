// Command server runs the Inkpad HTTP server: note CRUD and search,
// public share pages, AI suggestions, image uploads, Google sign-in,
// and Stripe billing. Each external provider can be swapped for an
// in-process mock with a --no-* flag for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/inkpad/inkpad/internal/ai"
	"github.com/inkpad/inkpad/internal/api"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/billing"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/crypto"
	"github.com/inkpad/inkpad/internal/db"
	"github.com/inkpad/inkpad/internal/email"
	"github.com/inkpad/inkpad/internal/media"
	"github.com/inkpad/inkpad/internal/notes"
	"github.com/inkpad/inkpad/internal/obs"
	"github.com/inkpad/inkpad/internal/ratelimit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load() // a missing .env is fine; deployments use the environment

	flags := config.ParseFlags()
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		return err
	}
	cfg.PrintStartupSummary()

	obs.Init()
	log := obs.Pkg("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	masterKey, err := crypto.ParseMasterKey(cfg.MasterKey)
	if err != nil {
		return fmt.Errorf("parse master key: %w", err)
	}
	database, err := db.Open(cfg.DatabasePath, crypto.DeriveDatabaseKey(masterKey))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	notesSvc := notes.NewService(database)

	secure := cfg.RequireSecureCookies()
	sessions := auth.NewSessionService(database, cfg.SessionDuration, secure)
	sessions.StartSweeper(ctx, time.Hour)

	var emailer email.Service
	if cfg.NoEmail {
		emailer = email.NewMock()
	} else {
		emailer = email.NewResendService(cfg.ResendAPIKey, cfg.ResendFromEmail)
	}

	users := auth.NewUserService(database, notesSvc, emailer)

	mux := http.NewServeMux()

	var oidc auth.OIDCClient
	if cfg.NoOIDC {
		mock := auth.NewMockOIDCProvider(cfg.BaseURL)
		mock.RegisterRoutes(mux)
		oidc = mock
	} else {
		oidc, err = auth.NewGoogleOIDCClient(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			return fmt.Errorf("init google oidc: %w", err)
		}
	}
	auth.NewHandler(oidc, users, sessions, secure).RegisterRoutes(mux)
	authMW := auth.NewMiddleware(sessions, database)

	var suggester ai.Suggester
	if cfg.NoOpenAI {
		suggester = ai.Mock{}
	} else {
		suggester = ai.NewGateway(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	var storage *media.Storage
	if cfg.NoS3 {
		memStorage, shutdown, memErr := media.NewMemoryStorage(cfg.AWSBucketName)
		if memErr != nil {
			return fmt.Errorf("start in-memory storage: %w", memErr)
		}
		defer shutdown()
		storage = memStorage
	} else {
		publicURL := cfg.AWSPublicURL
		if publicURL == "" {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AWSBucketName, cfg.AWSRegion)
		}
		storage, err = media.NewStorage(ctx, media.StorageConfig{
			Endpoint:        cfg.AWSEndpointS3,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Bucket:          cfg.AWSBucketName,
			PublicURL:       publicURL,
			UsePathStyle:    cfg.AWSEndpointS3 != "",
		})
		if err != nil {
			return fmt.Errorf("connect object storage: %w", err)
		}
	}

	var billingSvc billing.Service
	if cfg.NoStripe {
		billingSvc = billing.NewMockService(database)
	} else {
		billingSvc = billing.NewStripeService(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceID:       cfg.StripePriceID,
		}, database)
	}

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer limiter.Stop()
	aiWindow := ratelimit.NewWindow(cfg.AIWindowConfig)
	defer aiWindow.Stop()

	api.NewHandler(notesSvc, suggester, aiWindow, media.NewService(storage), billingSvc, authMW, cfg.BaseURL).RegisterRoutes(mux)

	// The token-bucket limiter keys on the session's user. Anonymous
	// requests pass through; the auth layer rejects them where it must.
	sessionUser := func(r *http.Request) string {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			return ""
		}
		userID, err := sessions.Validate(r.Context(), cookie.Value)
		if err != nil {
			return ""
		}
		return userID
	}
	sessionPaid := func(r *http.Request) bool {
		userID := sessionUser(r)
		if userID == "" {
			return false
		}
		user, err := database.GetUserByID(r.Context(), userID)
		if err != nil {
			return false
		}
		return auth.IsPaid(user)
	}

	handler := obs.RequestContextMiddleware(
		obs.AccessLogMiddleware("server",
			ratelimit.Middleware(limiter, sessionUser, sessionPaid)(mux)))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
