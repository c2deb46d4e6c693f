package internal

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	repository "github.com/devicedesk/devicedesk/internal/repository/postgres"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
)

// scriptEnv is the service wiring shared by the maintenance scripts. Scripts
// run without the HTTP server, so email and metrics are left out.
type scriptEnv struct {
	cfg    *config.Configuration
	log    *logger.Logger
	db     *postgres.Client
	params service.ServiceParams
}

func newScriptEnv() (*scriptEnv, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := postgres.NewClient(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	params := service.ServiceParams{
		Logger:       log,
		Config:       cfg,
		DB:           db,
		ClientRepo:   repository.NewClientRepository(db, log),
		ProviderRepo: repository.NewProviderRepository(db, log),
		DeviceRepo:   repository.NewDeviceRepository(db, log),
		SubRepo:      repository.NewSubscriptionRepository(db, log),
		InvoiceRepo:  repository.NewInvoiceRepository(db, log),
		AlertRepo:    repository.NewAlertRepository(db, log),
		Cache:        cache.NewInMemoryCache(false),
	}

	return &scriptEnv{cfg: cfg, log: log, db: db, params: params}, nil
}

func (e *scriptEnv) close() {
	_ = e.log.Sync()
	e.db.Close()
}

// tenantContext reads TENANT_ID and USER_ID from the environment.
func tenantContext() (context.Context, error) {
	tenantID := os.Getenv("TENANT_ID")
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required (set TENANT_ID environment variable)")
	}
	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "script"
	}

	ctx := context.Background()
	ctx = types.SetTenantID(ctx, tenantID)
	ctx = types.SetUserID(ctx, userID)
	ctx = types.SetRole(ctx, types.RoleAdmin)
	return ctx, nil
}
