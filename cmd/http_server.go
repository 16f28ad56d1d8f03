package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/beacon/api"
	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/internal/audit"
	auditPostgres "github.com/frahmantamala/beacon/internal/audit/postgres"
	"github.com/frahmantamala/beacon/internal/auth"
	authPostgres "github.com/frahmantamala/beacon/internal/auth/postgres"
	"github.com/frahmantamala/beacon/internal/billing"
	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/core/saga"
	"github.com/frahmantamala/beacon/internal/identity"
	"github.com/frahmantamala/beacon/internal/identity/firebase"
	identityPostgres "github.com/frahmantamala/beacon/internal/identity/postgres"
	"github.com/frahmantamala/beacon/internal/invitation"
	invitationPostgres "github.com/frahmantamala/beacon/internal/invitation/postgres"
	"github.com/frahmantamala/beacon/internal/notification"
	"github.com/frahmantamala/beacon/internal/organization"
	organizationPostgres "github.com/frahmantamala/beacon/internal/organization/postgres"
	"github.com/frahmantamala/beacon/internal/settings"
	settingsPostgres "github.com/frahmantamala/beacon/internal/settings/postgres"
	"github.com/frahmantamala/beacon/internal/telemetry"
	"github.com/frahmantamala/beacon/internal/transport/middleware"
	"github.com/frahmantamala/beacon/internal/transport/rest"
	"github.com/frahmantamala/beacon/internal/user"
	userPostgres "github.com/frahmantamala/beacon/internal/user/postgres"
	"github.com/frahmantamala/beacon/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies holds everything the server, worker and seeder commands share.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Logger zerolog.Logger
	Bus    *events.EventBus

	Identity      identity.Provider
	Organizations *organizationPostgres.OrganizationRepository
	Users         *userPostgres.UserRepository
	Invitations   *invitationPostgres.InvitationRepository
	Audit         *auditPostgres.AuditRepository

	Provisioner       *organization.Provisioner
	OrganizationSvc   *organization.Service
	InvitationSvc     *invitation.Service
	UserSvc           *user.Service
	SettingsSvc       *settings.Service
	AuthSvc           *auth.Service
	Billing           *billing.Client
	telemetryShutdown telemetry.ShutdownFunc
}

// Close drains in-flight event handlers before releasing the database.
func (d *Dependencies) Close(ctx context.Context) {
	d.Bus.Wait()
	if d.telemetryShutdown != nil {
		if err := d.telemetryShutdown(ctx); err != nil {
			d.Logger.Error().Err(err).Msg("telemetry shutdown error")
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error().Err(err).Msg("database close error")
	}
}

func startHTTPServer() {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	router, err := setupRoutes(ctx, deps)
	if err != nil {
		lg.Error().Err(err).Msg("failed to set up routes")
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info().Str("address", addr).Str("version", version).Msg("starting HTTP server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error().Err(err).Msg("server shutdown error")
		}
		deps.Close(shutdownCtx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error().Err(err).Msg("server failed to start")
			os.Exit(1)
		}
	}

	lg.Info().Msg("server stopped")
}

func setupRoutes(ctx context.Context, deps *Dependencies) (*chi.Mux, error) {
	lg := deps.Logger

	validator, err := middleware.NewOpenAPIValidator(ctx, api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(deps.AuthSvc, &lg),
		User:         user.NewHandler(deps.UserSvc, &lg),
		Organization: organization.NewHandler(deps.Provisioner, deps.OrganizationSvc, &lg),
		Invitation:   invitation.NewHandler(deps.InvitationSvc, &lg),
		Settings:     settings.NewHandler(deps.SettingsSvc, &lg),
		Billing:      billing.NewWebhookHandler(deps.Config.Billing.StripeWebhookSecret, deps.OrganizationSvc, &lg),
		Validator:    validator,

		AllowedOrigins: deps.Config.Server.AllowedOrigins,
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, deps.DB.DB, version, handlers, lg)
	return router, nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithLevel(appEnv(), config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	shutdown, err := telemetry.Init(ctx, config.Observability, version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{TranslateError: true})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	deps := &Dependencies{
		Config:            config,
		DB:                db,
		Gorm:              gormDB,
		Logger:            lg,
		Bus:               events.NewEventBus(lg),
		Organizations:     organizationPostgres.NewOrganizationRepository(gormDB),
		Users:             userPostgres.NewUserRepository(gormDB),
		Invitations:       invitationPostgres.NewInvitationRepository(gormDB),
		Audit:             auditPostgres.NewAuditRepository(gormDB),
		Billing:           billing.NewClient(config.Billing, lg),
		telemetryShutdown: shutdown,
	}

	var (
		accounts identity.Authenticator
		verifier identity.TokenVerifier
	)
	switch config.Identity.Driver {
	case "firebase":
		client, err := firebase.NewAuthClient(ctx, config.Identity)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
		}
		provider := firebase.NewProvider(client)
		deps.Identity = provider
		verifier = provider
	default:
		local := identityPostgres.NewAccountRepository(gormDB, config.Security.BCryptCost)
		deps.Identity = local
		accounts = local
	}
	lg.Info().Str("driver", identityDriver(config.Identity)).Msg("identity provider ready")

	notification.NewDispatcher(config.Email, lg).RegisterEventHandlers(deps.Bus)

	runner := saga.NewRunner(lg, saga.WithCompensationRetry(3, 200*time.Millisecond))
	var recorder audit.Recorder = deps.Audit

	deps.SettingsSvc = settings.NewService(settingsPostgres.NewSettingsRepository(gormDB))
	deps.UserSvc = user.NewService(deps.Users)
	deps.OrganizationSvc = organization.NewService(deps.Organizations, lg)
	deps.Provisioner = organization.NewProvisioner(organization.ProvisionerDeps{
		Organizations: deps.Organizations,
		Users:         deps.Users,
		Identity:      deps.Identity,
		Billing:       deps.Billing,
		Settings:      deps.SettingsSvc,
		Audit:         recorder,
		Events:        deps.Bus,
		Runner:        runner,
	}, lg)
	deps.InvitationSvc = invitation.NewService(invitation.Deps{
		Invitations:   deps.Invitations,
		Organizations: deps.Organizations,
		Users:         deps.Users,
		Identity:      deps.Identity,
		Audit:         recorder,
		Events:        deps.Bus,
		Runner:        runner,
		TTL:           config.Invitation.GetTTL(),
	}, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	deps.AuthSvc = auth.NewService(accounts, authPostgres.NewRepository(gormDB), tokenGen, lg)
	if verifier != nil {
		deps.AuthSvc.WithTokenVerifier(verifier)
	}

	return deps, nil
}

func identityDriver(cfg internal.IdentityConfig) string {
	if cfg.Driver == "" {
		return "local"
	}
	return cfg.Driver
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
