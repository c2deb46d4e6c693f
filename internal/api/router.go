package api

import (
	"github.com/devicedesk/devicedesk/internal/api/cron"
	v1 "github.com/devicedesk/devicedesk/internal/api/v1"
	"github.com/devicedesk/devicedesk/internal/auth"
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/metrics"
	"github.com/devicedesk/devicedesk/internal/rest/middleware"
	"github.com/devicedesk/devicedesk/internal/sentry"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Client       *v1.ClientHandler
	Provider     *v1.ProviderHandler
	Device       *v1.DeviceHandler
	Subscription *v1.SubscriptionHandler
	Invoice      *v1.InvoiceHandler
	Revenue      *v1.RevenueHandler
	Alert        *v1.AlertHandler
	Dashboard    *v1.DashboardHandler
	Transfer     *v1.TransferHandler
	CronAlert    *cron.AlertCronHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	validator auth.Validator,
	sentrySvc *sentry.Service,
	m *metrics.Metrics,
) *gin.Engine {
	if cfg.Logging.Level != config.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.RecoveryWithWriter(logger.GetGinLogger()),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(m),
		middleware.ErrorHandler(sentrySvc),
	)

	router.GET("/health", handlers.Health.Health)
	if cfg.Server.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	private := router.Group("/v1",
		middleware.AuthenticateMiddleware(cfg, validator, logger),
		middleware.SentryTenantContextMiddleware,
		middleware.RateLimitMiddleware(cfg),
	)

	billing := middleware.RequireRole(types.Role.CanManageBilling)
	inventory := middleware.RequireRole(types.Role.CanManageInventory)
	revenue := middleware.RequireRole(types.Role.CanViewRevenue)

	clients := private.Group("/clients")
	{
		clients.GET("", handlers.Client.ListClients)
		clients.GET("/:id", handlers.Client.GetClient)
		clients.POST("", billing, handlers.Client.CreateClient)
		clients.PUT("/:id", billing, handlers.Client.UpdateClient)
		clients.DELETE("/:id", billing, handlers.Client.DeleteClient)
	}

	providers := private.Group("/providers")
	{
		providers.GET("", handlers.Provider.ListProviders)
		providers.GET("/:id", handlers.Provider.GetProvider)
		providers.POST("", inventory, handlers.Provider.CreateProvider)
		providers.PUT("/:id", inventory, handlers.Provider.UpdateProvider)
		providers.DELETE("/:id", inventory, handlers.Provider.DeleteProvider)
	}

	devices := private.Group("/devices")
	{
		devices.GET("", handlers.Device.ListDevices)
		devices.GET("/:id", handlers.Device.GetDevice)
		devices.POST("", inventory, handlers.Device.CreateDevice)
		devices.PUT("/:id", inventory, handlers.Device.UpdateDevice)
		devices.DELETE("/:id", inventory, handlers.Device.DeleteDevice)
	}

	subscriptions := private.Group("/subscriptions")
	{
		subscriptions.GET("", handlers.Subscription.ListSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("", billing, handlers.Subscription.CreateSubscription)
		subscriptions.PUT("/:id", billing, handlers.Subscription.UpdateSubscription)
		subscriptions.DELETE("/:id", billing, handlers.Subscription.DeleteSubscription)
	}

	invoices := private.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("", billing, handlers.Invoice.CreateInvoice)
		invoices.PUT("/:id", billing, handlers.Invoice.UpdateInvoice)
		invoices.DELETE("/:id", billing, handlers.Invoice.DeleteInvoice)
		invoices.POST("/:id/pay", billing, handlers.Invoice.MarkPaid)
		invoices.POST("/from-subscription/:id", billing, handlers.Invoice.CreateFromSubscription)
	}

	private.GET("/dashboard", handlers.Dashboard.GetDashboard)
	private.GET("/alerts", handlers.Alert.ListAlerts)
	private.GET("/revenue/mrr", revenue, handlers.Revenue.GetMRR)
	private.GET("/revenue/export.xlsx", revenue, handlers.Revenue.ExportXLSX)

	private.POST("/import/:entity", middleware.RequireRole(types.Role.CanImport), handlers.Transfer.Import)
	private.GET("/export/:file", handlers.Transfer.Export)

	cronGroup := private.Group("/cron", middleware.RequireRole(types.Role.IsAdmin))
	{
		cronGroup.POST("/alerts/digest", handlers.CronAlert.SendDigest)
	}

	return router
}
