package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/devicedesk/devicedesk/internal/api"
	"github.com/devicedesk/devicedesk/internal/api/cron"
	v1 "github.com/devicedesk/devicedesk/internal/api/v1"
	"github.com/devicedesk/devicedesk/internal/auth"
	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/email"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/metrics"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/profiling"
	repository "github.com/devicedesk/devicedesk/internal/repository/postgres"
	"github.com/devicedesk/devicedesk/internal/sentry"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Desugar()}
		}),
		fx.Provide(
			// Config and ambient infrastructure
			config.NewConfig,
			logger.NewLogger,
			sentry.NewSentryService,
			metrics.New,
			cache.New,
			provideEmailSender,
			auth.NewSupabaseValidator,

			// Storage
			providePostgres,
			func(c *postgres.Client) postgres.IClient { return c },
			repository.NewClientRepository,
			repository.NewProviderRepository,
			repository.NewDeviceRepository,
			repository.NewSubscriptionRepository,
			repository.NewInvoiceRepository,
			repository.NewAlertRepository,

			// Services
			service.NewClientService,
			service.NewProviderService,
			service.NewDeviceService,
			service.NewSubscriptionService,
			service.NewInvoiceService,
			service.NewRevenueService,
			service.NewAlertService,
			service.NewDashboardService,
			service.NewImportService,
			service.NewExportService,

			// Transport
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startProfiler, startServer),
	)

	app.Run()
}

func providePostgres(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := postgres.NewClient(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

func provideEmailSender(cfg *config.Configuration, log *logger.Logger) email.Sender {
	return email.NewEmail(email.NewEmailClient(cfg.Email, log), log)
}

func provideHandlers(
	cfg *config.Configuration,
	log *logger.Logger,
	db *postgres.Client,
	clientService service.ClientService,
	providerService service.ProviderService,
	deviceService service.DeviceService,
	subscriptionService service.SubscriptionService,
	invoiceService service.InvoiceService,
	revenueService service.RevenueService,
	alertService service.AlertService,
	dashboardService service.DashboardService,
	importService service.ImportService,
	exportService service.ExportService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(db, log),
		Client:       v1.NewClientHandler(clientService, log),
		Provider:     v1.NewProviderHandler(providerService, log),
		Device:       v1.NewDeviceHandler(deviceService, log),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, log),
		Invoice:      v1.NewInvoiceHandler(invoiceService, log),
		Revenue:      v1.NewRevenueHandler(revenueService, log),
		Alert:        v1.NewAlertHandler(alertService, log),
		Dashboard:    v1.NewDashboardHandler(dashboardService, log),
		Transfer:     v1.NewTransferHandler(importService, exportService, cfg, log),
		CronAlert:    cron.NewAlertCronHandler(alertService, log),
	}
}

func startProfiler(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	profiler, err := profiling.Start(cfg, log)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return profiler.Stop()
		},
	})
	return nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	sentrySvc *sentry.Service,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting http server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("http server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down http server")
			if cfg.Server.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
			}
			err := srv.Shutdown(ctx)
			sentrySvc.Flush()
			_ = log.Sync()
			return err
		},
	})
}
