// Package server initializes and runs the issue tracker's auth server: it
// opens the database, runs migrations, wires the services behind the HTTP
// API and handles graceful shutdown.
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
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Anish-3-12/public-issue/internal/logging"
	"github.com/Anish-3-12/public-issue/internal/server/auth"
	"github.com/Anish-3-12/public-issue/internal/server/config"
	"github.com/Anish-3-12/public-issue/internal/server/httpapi"
	"github.com/Anish-3-12/public-issue/internal/server/middleware"
	"github.com/Anish-3-12/public-issue/internal/server/password"
	"github.com/Anish-3-12/public-issue/internal/server/repositories/repomanager"
	"github.com/Anish-3-12/public-issue/internal/server/services"
)

// purgeInterval is how often expired refresh tokens are swept from storage.
const purgeInterval = time.Hour

const shutdownTimeout = 5 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	sessionService *services.SessionService
	userService    *services.UserService
	authenticator  *middleware.Authenticator
	handler        *httpapi.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token codec error: %w", err)
	}

	hasher := password.NewHasher()
	ss := services.NewSessionService(db, repos, codec, hasher, cfg.RefreshTokenValidityDuration, logger)
	us := services.NewUserService(db, repos, hasher, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		sessionService: ss,
		userService:    us,
		authenticator:  middleware.NewAuthenticator(codec, repos.Users(db), logger),
		handler:        httpapi.NewHandler(ss, us, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	mux := http.NewServeMux()
	app.handler.Register(mux)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.authenticator.Authenticate(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startTokenPurger periodically deletes expired refresh tokens. Validity
// checks never depend on the sweep; it only keeps the table small.
func (app *App) startTokenPurger(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.sessionService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "token purge error", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired refresh tokens purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startTokenPurger(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
