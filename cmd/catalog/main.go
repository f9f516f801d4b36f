// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/catalog"
	"github.com/olegiv/ocms-catalog/internal/config"
	"github.com/olegiv/ocms-catalog/internal/handler"
	"github.com/olegiv/ocms-catalog/internal/imaging"
	"github.com/olegiv/ocms-catalog/internal/logging"
	"github.com/olegiv/ocms-catalog/internal/metrics"
	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/render"
	"github.com/olegiv/ocms-catalog/internal/service"
	"github.com/olegiv/ocms-catalog/internal/session"
	"github.com/olegiv/ocms-catalog/internal/storage"
	"github.com/olegiv/ocms-catalog/internal/tracing"
	"github.com/olegiv/ocms-catalog/internal/version"
	"github.com/olegiv/ocms-catalog/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "catalog - product and video catalog manager\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_ADMIN_USERNAME    Login username (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_ADMIN_PASSWORD    Login password (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_DB_PATH           SQLite database path (default: ./data/catalog.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_STORAGE           Item storage: memory|sqlite|mysql|postgres|redis|s3 (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_MYSQL_DSN         MySQL DSN when CATALOG_STORAGE=mysql\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_POSTGRES_DSN      PostgreSQL DSN when CATALOG_STORAGE=postgres\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_REDIS_URL         Redis URL when CATALOG_STORAGE=redis\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_S3_BUCKET         Bucket when CATALOG_STORAGE=s3 (see also CATALOG_S3_*)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_TRACING           Span exporter: none|stdout (default: none)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CATALOG_ENV               Environment: development|production (default: development)\n")
	}

	flag.Parse()

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(info.Banner("catalog"))
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logger counts WARN and ERROR records into Prometheus
	m := metrics.New()
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(logging.NewMetricsHandler(textHandler, m))
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(tracing.Config{
		Exporter:       cfg.Tracing,
		ServiceName:    "catalog",
		ServiceVersion: info.Version,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("error flushing spans", "error", err)
		}
	}()

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// The SQLite database always holds the sessions; it also holds the
	// items unless another backend is configured.
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := storage.Migrate(db, storage.DialectSQLite); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Composition root: the item store is owned here and injected.
	ctx := context.Background()

	st, closeStorage, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.Storage,
		SQLiteDB:    db,
		MySQLDSN:    cfg.MySQLDSN,
		PostgresDSN: cfg.PostgresDSN,
		RedisURL:    cfg.RedisURL,
		S3: storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3PathStyle,
			AccessKeyID:  cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		},
		Prefix: cfg.StoragePrefix,
	})
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage, err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			slog.Error("error closing item storage", "error", err)
		}
	}()
	slog.Info("item storage initialized", "backend", cfg.Storage)

	sessionManager, sessionStore := session.New(db, cfg.IsDevelopment())
	defer sessionStore.StopCleanup()
	slog.Info("session manager initialized", "cookie", sessionManager.Cookie.Name)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	store := catalog.New(ctx, st, logger)
	slog.Info("item store loaded", "items", store.Count())

	verifier, err := auth.NewVerifier(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("preparing credentials: %w", err)
	}

	catalogService := service.NewCatalog(store,
		service.WithDelay(cfg.MutationDelay),
		service.WithLogger(logger),
		service.WithMetrics(m),
	)
	authService := service.NewAuth(verifier,
		service.WithDelay(cfg.LoginDelay),
		service.WithLogger(logger),
		service.WithMetrics(m),
	)

	lpConfig := middleware.DefaultLoginProtectionConfig()
	lpConfig.IPRateLimit = cfg.LoginRateLimit
	lpConfig.MaxFailedAttempts = cfg.LoginMaxAttempts
	loginProtection := middleware.NewLoginProtection(lpConfig)
	defer loginProtection.Close()
	slog.Info("login protection initialized",
		"ip_rate_limit", cfg.LoginRateLimit,
		"max_failed_attempts", cfg.LoginMaxAttempts,
	)

	// Health checks
	checks := map[string]storage.Pinger{
		"database": storage.NewSQLStorage(db, storage.DialectSQLite),
	}
	if p, ok := st.(storage.Pinger); ok && cfg.Storage != config.StorageSQLite {
		checks["storage"] = p
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService, renderer, storage.NewSessionStorage(sessionManager), loginProtection, logger)
	itemsHandler := handler.NewItemsHandler(catalogService, renderer, imaging.NewProcessor(), logger)
	apiHandler := handler.NewAPIHandler(catalogService, logger)
	healthHandler := handler.NewHealthHandler(info, checks)

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Tracing(tracing.Tracer()))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadSession(sessionManager, logger))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))

	// Unguarded routes
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealthLive, healthHandler.Liveness)
	r.Get(handler.RouteHealthReady, healthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", middleware.StaticFiles(staticFS, 24*time.Hour)))

	// Public: only visitors without a session token
	r.Group(func(r chi.Router) {
		r.Use(middleware.Public)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
	})

	// Private: the management view and its forms
	r.Group(func(r chi.Router) {
		r.Use(middleware.Private)
		r.Get(handler.RouteRoot, itemsHandler.List)
		r.Post(handler.RouteItemsProducts, itemsHandler.CreateProduct)
		r.Post(handler.RouteItemsVideos, itemsHandler.CreateVideo)
		r.Get(handler.RouteItemsIDEdit, itemsHandler.EditForm)
		r.Post(handler.RouteItemsID, itemsHandler.Update)
		r.Post(handler.RouteItemsIDDelete, itemsHandler.Delete)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// JSON API: same session, 401 instead of redirects
	apiLimiter := middleware.NewAPIRateLimiter(10, 20)
	r.Route(handler.RouteAPIItems, func(r chi.Router) {
		r.Use(apiLimiter.Handler)
		r.Use(middleware.PrivateAPI)
		r.Get("/", apiHandler.List)
		r.Post("/", apiHandler.Create)
		r.Get(handler.RouteParamID, apiHandler.Get)
		r.Put(handler.RouteParamID, apiHandler.Update)
		r.Delete(handler.RouteParamID, apiHandler.Delete)
	})

	// Every other path goes to the login page, whose guard forwards
	// signed-in visitors to the list.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, handler.RouteLogin, http.StatusSeeOther)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // image uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
