package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/admin"
	"github.com/Vishwas132/university-admin-panel/internal/auth"
	"github.com/Vishwas132/university-admin-panel/internal/config"
	"github.com/Vishwas132/university-admin-panel/internal/db"
	"github.com/Vishwas132/university-admin-panel/internal/events"
	"github.com/Vishwas132/university-admin-panel/internal/health"
	"github.com/Vishwas132/university-admin-panel/internal/httputil"
	"github.com/Vishwas132/university-admin-panel/internal/logger"
	"github.com/Vishwas132/university-admin-panel/internal/mailer"
	"github.com/Vishwas132/university-admin-panel/internal/metrics"
	"github.com/Vishwas132/university-admin-panel/internal/password"
	"github.com/Vishwas132/university-admin-panel/internal/student"
	"github.com/Vishwas132/university-admin-panel/internal/telemetry"
	"github.com/Vishwas132/university-admin-panel/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	telemetry *telemetry.Telemetry
	closers   []io.Closer
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)
	slog.SetDefault(slogLogger)
	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	app := &App{config: cfg, logger: slogLogger}

	app.telemetry, err = telemetry.Init(ctx, telemetry.Config{OTLPEndpoint: cfg.Telemetry.OTLPEndpoint}, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	m := app.telemetry.Metrics

	app.db, err = db.New(cfg.Database, slogLogger)
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}

	meter := app.telemetry.MeterProvider.Meter(ServiceName)
	if err := m.Database.RegisterDB(app.db.DB, meter); err != nil {
		slogLogger.Warn("failed to register connection pool metrics", "error", err)
	}
	if err := metrics.RegisterRuntime(meter); err != nil {
		slogLogger.Warn("failed to register runtime metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, app.db, slogLogger, (*admin.Admin)(nil), (*student.Student)(nil)); err != nil {
		app.Shutdown(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	sender, err := app.newSender()
	if err != nil {
		app.Shutdown(ctx)
		return nil, err
	}
	publisher := app.newPublisher()

	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	errWriter := httputil.NewErrorWriter(slogLogger, cfg.IsProduction())

	adminRepo := admin.NewRepository(app.db, m)
	studentRepo := student.NewRepository(app.db, m)

	authService := auth.NewService(auth.Deps{
		Admins:    adminRepo,
		Students:  studentRepo,
		Hasher:    hasher,
		Issuer:    issuer,
		Sender:    sender,
		Publisher: publisher,
		Metrics:   m,
		Logger:    slogLogger,
	}, auth.Config{
		ResetURLBase: cfg.Auth.FrontendURL,
		TestMode:     cfg.Mail.TestMode,
		ResetTTL:     cfg.Auth.ResetTokenTTL,
	})

	app.router = NewRouter(Handlers{
		Health:   health.NewHandler(app.db, m.Dependencies, slogLogger),
		Auth:     auth.NewHandler(authService, errWriter, slogLogger),
		Admin:    admin.NewHandler(admin.NewService(adminRepo, hasher, slogLogger), errWriter, slogLogger, cfg.Auth.MaxUploadBytes),
		Student:  student.NewHandler(student.NewService(studentRepo, hasher, publisher, m, slogLogger), errWriter, slogLogger, cfg.Auth.MaxUploadBytes),
		Verifier: issuer,
	}, cfg.Server.CORSOrigins, slogLogger)

	slogLogger.Info("application initialized successfully")
	return app, nil
}

func (a *App) newSender() (mailer.Sender, error) {
	if a.config.Mail.TestMode {
		a.logger.Info("email test mode enabled, reset tokens are returned in responses")
	}

	switch a.config.Mail.Transport {
	case "nats":
		sender, err := mailer.NewNATSSender(a.config.NATS.URL, a.config.NATS.Subject, a.config.Mail.From, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect mail relay: %w", err)
		}
		sender.WithMetrics(a.telemetry.Metrics.Messaging)
		a.closers = append(a.closers, sender)
		a.logger.Info("mail relay connected", "subject", a.config.NATS.Subject)
		return sender, nil
	default:
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     a.config.Mail.Host,
			Port:     a.config.Mail.Port,
			User:     a.config.Mail.User,
			Password: a.config.Mail.Password,
			From:     a.config.Mail.From,
		}, a.logger), nil
	}
}

// newPublisher falls back to a no-op publisher when Kafka is not configured
// or unreachable; events are never required for a request to succeed.
func (a *App) newPublisher() events.Publisher {
	if len(a.config.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, account events disabled")
		return events.NopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(a.config.Kafka.Brokers, a.config.Kafka.Topic, a.logger)
	if err != nil {
		a.logger.Warn("failed to initialize kafka publisher", "error", err)
		return events.NopPublisher{}
	}
	publisher.WithMetrics(a.telemetry.Metrics.Messaging)
	a.closers = append(a.closers, publisher)
	a.logger.Info("kafka publisher initialized", "topic", a.config.Kafka.Topic)
	return publisher
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown server: %w", err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	db.Close(a.db)
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
