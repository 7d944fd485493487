package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/auth"
	authpg "github.com/campuspub/publication-portal/internal/auth/postgres"
	"github.com/campuspub/publication-portal/internal/cache"
	"github.com/campuspub/publication-portal/internal/core/events"
	"github.com/campuspub/publication-portal/internal/department"
	"github.com/campuspub/publication-portal/internal/email"
	"github.com/campuspub/publication-portal/internal/event"
	eventpg "github.com/campuspub/publication-portal/internal/event/postgres"
	"github.com/campuspub/publication-portal/internal/landing"
	"github.com/campuspub/publication-portal/internal/profile"
	profilepg "github.com/campuspub/publication-portal/internal/profile/postgres"
	"github.com/campuspub/publication-portal/internal/request"
	requestpg "github.com/campuspub/publication-portal/internal/request/postgres"
	"github.com/campuspub/publication-portal/internal/transport/rest"
	"github.com/campuspub/publication-portal/internal/user"
	userpg "github.com/campuspub/publication-portal/internal/user/postgres"
	"github.com/campuspub/publication-portal/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server for the portal pages and API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Sessions *scs.SessionManager
	Cache    cache.Cacher
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Sessions.LoadAndSave(deps.Router),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.Cache.Close(); err != nil {
			deps.Logger.Error("cache close error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, config.Database.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	sessions := scs.New()
	sessions.Lifetime = config.Session.Lifetime
	sessions.Cookie.Name = config.Session.CookieName
	sessions.Cookie.Secure = config.Session.Secure
	sessions.Cookie.HttpOnly = true
	if config.Database.Driver == "sqlite" {
		sessions.Store = sqlite3store.New(db.DB)
	}

	cacher, err := cache.New(cache.Config{
		Type:       config.Cache.Type,
		RedisURL:   config.Cache.RedisURL,
		Prefix:     config.Cache.Prefix,
		DefaultTTL: config.Cache.DefaultTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	bus := events.NewEventBus(lg)

	mailer, err := email.New(config.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail backend: %w", err)
	}
	email.NewNotifier(mailer).Subscribe(bus)

	store := auth.NewRoleStore(sessions)
	guard := auth.NewGuard(store)

	directory := authpg.NewDirectoryRepository(gormDB)
	tokens := auth.NewRememberTokens(config.Security.RememberSecret, config.Security.RememberTTL)
	authService := auth.NewService(directory, tokens, config.Security.BCryptCost, lg)

	requestRepo := requestpg.NewRequestRepository(gormDB)
	requestService := request.NewService(requestRepo, bus, lg)

	eventRepo := eventpg.NewEventRepository(gormDB)
	eventService := event.NewService(eventRepo, requestService, cacher, config.Cache.DefaultTTL, lg)
	eventService.SubscribeBus(bus)

	userRepo := userpg.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, config.Security.BCryptCost, lg)

	profileRepo := profilepg.NewProfileRepository(gormDB)
	profileService := profile.NewService(profileRepo, lg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authService.EnsureAdmin(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure admin account: %w", err)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, config.Database.Driver, guard, store, rest.Handlers{
		Auth:       auth.NewHandler(authService, store, config.Session.Secure),
		Landing:    landing.NewHandler(store),
		Request:    request.NewHandler(requestService),
		Event:      event.NewHandler(eventService),
		User:       user.NewHandler(userService),
		Profile:    profile.NewHandler(profileService),
		Department: department.NewHandler(),
		Email:      email.NewHandler(mailer),
	}, lg)

	return &dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gormDB,
		Sessions: sessions,
		Cache:    cacher,
		Router:   router,
		Logger:   lg,
	}, nil
}

// initDB opens the configured database through sqlx.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := "pgx"
	if cfg.Driver == "sqlite" {
		driver = "sqlite3"
	}

	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initGorm layers the ORM over the already-open connection pool.
func initGorm(db *sqlx.DB, driver string) (*gorm.DB, error) {
	if driver == "sqlite" {
		return gorm.Open(gormsqlite.Dialector{Conn: db.DB}, &gorm.Config{})
	}
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
