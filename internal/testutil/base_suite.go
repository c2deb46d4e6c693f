package testutil

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/metrics"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/stretchr/testify/suite"
)

const (
	DefaultTenantID = "tenant_test"
	DefaultUserID   = "user_test"
)

// Stores holds all in-memory repositories of a test run.
type Stores struct {
	ClientRepo       *InMemoryClientStore
	ProviderRepo     *InMemoryProviderStore
	DeviceRepo       *InMemoryDeviceStore
	SubscriptionRepo *InMemorySubscriptionStore
	InvoiceRepo      *InMemoryInvoiceStore
	AlertRepo        *InMemoryAlertStore
}

// BaseServiceTestSuite wires in-memory infrastructure for service tests.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	db      *MockPostgresClient
	email   *MockEmailSender
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

func (s *BaseServiceTestSuite) SetupSuite() {
	s.config = config.GetDefaultConfig()
	s.config.Email.FromAddress = "alerts@devicedesk.test"
	s.config.Alerts.DigestRecipients = []string{"ops@devicedesk.test"}
	s.logger = logger.NewNopLogger()
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	ctx := context.Background()
	ctx = types.SetTenantID(ctx, DefaultTenantID)
	ctx = types.SetUserID(ctx, DefaultUserID)
	ctx = types.SetRole(ctx, types.RoleAdmin)
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	s.ctx = ctx
}

func (s *BaseServiceTestSuite) setupStores() {
	clients := NewInMemoryClientStore()
	devices := NewInMemoryDeviceStore()
	s.stores = Stores{
		ClientRepo:       clients,
		ProviderRepo:     NewInMemoryProviderStore(),
		DeviceRepo:       devices,
		SubscriptionRepo: NewInMemorySubscriptionStore(devices, clients),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		AlertRepo:        NewInMemoryAlertStore(),
	}
	s.db = NewMockPostgresClient()
	s.email = NewMockEmailSender()
	s.cache = cache.NewInMemoryCache(true)
	s.metrics = metrics.New()
}

// ClearStores resets every store between tests.
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.ClientRepo.Clear()
	s.stores.ProviderRepo.Clear()
	s.stores.DeviceRepo.Clear()
	s.stores.SubscriptionRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.AlertRepo.Clear()
	s.db.Reset()
	s.email.Reset()
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetContextForTenant returns a context scoped to another tenant.
func (s *BaseServiceTestSuite) GetContextForTenant(tenantID string) context.Context {
	return types.SetTenantID(s.ctx, tenantID)
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetEmailSender() *MockEmailSender {
	return s.email
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
