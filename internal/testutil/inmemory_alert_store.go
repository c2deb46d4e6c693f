package testutil

import (
	"context"
	"sync"

	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/types"
)

// InMemoryAlertStore implements alert.Repository with rows seeded per tenant.
// It records the thresholds of the last call so tests can assert on them.
type InMemoryAlertStore struct {
	mu             sync.Mutex
	rows           map[string][]alert.RawAlertRow
	err            error
	LastThresholds types.AlertThresholds
	Calls          int
}

func NewInMemoryAlertStore() *InMemoryAlertStore {
	return &InMemoryAlertStore{rows: make(map[string][]alert.RawAlertRow)}
}

// SetRows replaces the rows returned for tenantID.
func (s *InMemoryAlertStore) SetRows(tenantID string, rows []alert.RawAlertRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tenantID] = append([]alert.RawAlertRow(nil), rows...)
}

// SetError makes every following call fail with err.
func (s *InMemoryAlertStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryAlertStore) ListRawAlerts(ctx context.Context, thresholds types.AlertThresholds) ([]alert.RawAlertRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls++
	s.LastThresholds = thresholds
	if s.err != nil {
		return nil, s.err
	}
	return append([]alert.RawAlertRow(nil), s.rows[types.GetTenantID(ctx)]...), nil
}

func (s *InMemoryAlertStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[string][]alert.RawAlertRow)
	s.err = nil
	s.LastThresholds = types.AlertThresholds{}
	s.Calls = 0
}
