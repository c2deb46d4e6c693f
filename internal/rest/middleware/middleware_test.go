package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devicedesk/devicedesk/internal/auth"
	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/sentry"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (v stubValidator) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return v.claims, v.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(cfg *config.Configuration, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(sentry.NewSentryService(cfg, logger.NewNopLogger())))
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, gin.H{
			"tenant_id":  types.GetTenantID(ctx),
			"user_id":    types.GetUserID(ctx),
			"role":       types.GetRole(ctx),
			"request_id": types.GetRequestID(ctx),
		})
	})
	return r
}

func serve(r *gin.Engine, header map[string]string) (*httptest.ResponseRecorder, map[string]string) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := map[string]string{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticateMiddleware_LocalMode(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Enabled = false
	r := newEngine(cfg, AuthenticateMiddleware(cfg, stubValidator{}, logger.NewNopLogger()))

	w, _ := serve(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := serve(r, map[string]string{types.HeaderTenantID: "tenant_a"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant_a", body["tenant_id"])
	assert.Equal(t, localUserID, body["user_id"])
	assert.Equal(t, string(types.RoleAdmin), body["role"])
}

func TestAuthenticateMiddleware_Token(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Enabled = true

	t.Run("valid token", func(t *testing.T) {
		v := stubValidator{claims: &auth.Claims{UserID: "user_1", TenantID: "tenant_a", Role: types.RoleTechnician}}
		r := newEngine(cfg, AuthenticateMiddleware(cfg, v, logger.NewNopLogger()))
		w, body := serve(r, map[string]string{types.HeaderAuthorization: "Bearer x"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "tenant_a", body["tenant_id"])
		assert.Equal(t, "user_1", body["user_id"])
		assert.Equal(t, string(types.RoleTechnician), body["role"])
	})

	t.Run("rejected token", func(t *testing.T) {
		v := stubValidator{err: ierr.NewError("token expired").Mark(ierr.ErrPermissionDenied)}
		r := newEngine(cfg, AuthenticateMiddleware(cfg, v, logger.NewNopLogger()))
		w, _ := serve(r, map[string]string{types.HeaderAuthorization: "Bearer x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	cfg := config.GetDefaultConfig()
	withRole := func(role types.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Request = c.Request.WithContext(types.SetRole(c.Request.Context(), role))
			c.Next()
		}
	}

	tests := []struct {
		role types.Role
		want int
	}{
		{types.RoleAdmin, http.StatusOK},
		{types.RoleTechnician, http.StatusOK},
		{types.RoleFrontDesk, http.StatusForbidden},
		{types.RoleViewer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			r := newEngine(cfg, withRole(tt.role), RequireRole(types.Role.CanManageInventory))
			w, _ := serve(r, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine(config.GetDefaultConfig(), RequestIDMiddleware)

	w, body := serve(r, map[string]string{types.HeaderRequestID: "req_given"})
	assert.Equal(t, "req_given", body["request_id"])
	assert.Equal(t, "req_given", w.Header().Get(types.HeaderRequestID))

	w, body = serve(r, nil)
	assert.NotEmpty(t, body["request_id"])
	assert.Equal(t, body["request_id"], w.Header().Get(types.HeaderRequestID))
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Server.RateLimitPerSecond = 0.001
	cfg.Server.RateLimitBurst = 2
	withTenant := func(c *gin.Context) {
		c.Request = c.Request.WithContext(types.SetTenantID(c.Request.Context(), c.GetHeader(types.HeaderTenantID)))
		c.Next()
	}
	r := newEngine(cfg, withTenant, RateLimitMiddleware(cfg))

	a := map[string]string{types.HeaderTenantID: "tenant_a"}
	for i := 0; i < 2; i++ {
		w, _ := serve(r, a)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, _ := serve(r, a)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w, _ = serve(r, map[string]string{types.HeaderTenantID: "tenant_b"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Server.RateLimitPerSecond = 0
	r := newEngine(cfg, RateLimitMiddleware(cfg))
	for i := 0; i < 50; i++ {
		w, _ := serve(r, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestErrorHandler(t *testing.T) {
	cfg := config.GetDefaultConfig()
	r := gin.New()
	r.Use(ErrorHandler(sentry.NewSentryService(cfg, logger.NewNopLogger())))
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(ierr.NewError("device dev_1 not found").WithHint("Device not found").Mark(ierr.ErrNotFound))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(ierr.NewError("pq: connection reset").Mark(ierr.ErrDatabase))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(ierr.NewError("late").Mark(ierr.ErrSystem))
	})

	tests := []struct {
		path    string
		want    int
		display string
	}{
		{"/missing", http.StatusNotFound, "Device not found"},
		{"/boom", http.StatusInternalServerError, ""},
		{"/written", http.StatusAccepted, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			if tt.display != "" {
				var resp ierr.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.display, resp.Error.Display)
			}
		})
	}
}
