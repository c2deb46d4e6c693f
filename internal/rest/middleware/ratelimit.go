package middleware

import (
	"sync"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// tenantLimiters hands out one token bucket per tenant.
type tenantLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func (t *tenantLimiters) get(tenantID string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[tenantID]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[tenantID] = l
	}
	return l
}

// RateLimitMiddleware throttles requests per tenant. Requests without a
// tenant share one bucket. A zero rate disables limiting.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if cfg.Server.RateLimitPerSecond <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := cfg.Server.RateLimitBurst
	if burst <= 0 {
		burst = int(cfg.Server.RateLimitPerSecond) + 1
	}
	limiters := &tenantLimiters{
		limit:    rate.Limit(cfg.Server.RateLimitPerSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}

	return func(c *gin.Context) {
		tenantID := types.GetTenantID(c.Request.Context())
		if !limiters.get(tenantID).Allow() {
			_ = c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please retry shortly").
				WithReportableDetails(map[string]any{"tenant_id": tenantID}).
				Mark(ierr.ErrTooManyRequests))
			c.Abort()
			return
		}
		c.Next()
	}
}
