// Package server wires the application together: config, database,
// migrations, the mail channel and the HTTP endpoint, with graceful shutdown
// on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/auth"
	"github.com/dmitrijs2005/agencyhub/internal/server/config"
	"github.com/dmitrijs2005/agencyhub/internal/server/httpapi"
	"github.com/dmitrijs2005/agencyhub/internal/server/mail"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/agencyhub/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	codec := auth.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	if codec.UsingPlaceholderSecret() {
		logger.Warn(context.Background(), "JWT_SECRET is not set, tokens are signed with a placeholder secret")
	}

	mailer := mail.NewService(mail.Config{
		AppName:    cfg.AppName,
		AppHost:    cfg.AppHost,
		AdminEmail: cfg.AdminEmail,
	}, newSender(cfg, logger), logger)

	authService := services.NewAuthService(db, repos, codec, mailer, cfg, logger)
	handler := httpapi.NewRouter(authService, codec, logger)

	return &App{config: cfg, logger: logger, db: db, handler: handler}, nil
}

// newSender picks the mail transport: test-like environments dump messages
// to files, everything else goes through SMTP.
func newSender(cfg *config.Config, logger logging.Logger) mail.Sender {
	if cfg.IsTestLike() {
		return mail.NewFileSender(cfg.EmailDir, logger)
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Password:  cfg.SMTPPassword,
		FromName:  cfg.AppName,
		FromEmail: cfg.FromEmail,
	}, logger)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: app.handler}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr, "environment", app.config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "error closing db", "error", err.Error())
	}
	return nil
}
