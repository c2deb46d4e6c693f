package testutil

import (
	"context"
	"sync"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
)

type mockTxKey struct{}

// MockPostgresClient satisfies postgres.IClient without a database. WithTx
// marks the context the way the real client carries its transaction, runs
// fn directly and records every advisory lock key.
type MockPostgresClient struct {
	mu       sync.Mutex
	locked   []string
	TxCount  int
	FailPing error
}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(mockTxKey{}) != nil {
		return fn(ctx)
	}

	c.mu.Lock()
	c.TxCount++
	c.mu.Unlock()
	return fn(context.WithValue(ctx, mockTxKey{}, true))
}

func (c *MockPostgresClient) LockKey(ctx context.Context, key string) error {
	if ctx.Value(mockTxKey{}) == nil {
		return ierr.NewError("lock requested outside a transaction").
			WithHint("Advisory locks require a transaction").
			Mark(ierr.ErrInternal)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = append(c.locked, key)
	return nil
}

func (c *MockPostgresClient) Ping(context.Context) error {
	return c.FailPing
}

// LockedKeys returns every key locked so far, in order.
func (c *MockPostgresClient) LockedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.locked...)
}

func (c *MockPostgresClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = nil
	c.TxCount = 0
	c.FailPing = nil
}
