package auth

import (
	"context"
	"testing"
	"time"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-for-tests"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestSupabaseValidator_ValidateToken(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = testSecret
	v := NewSupabaseValidator(cfg)
	ctx := context.Background()

	valid := jwt.MapClaims{
		"sub":   "user_1",
		"email": "owner@acme.io",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"app_metadata": map[string]interface{}{
			"tenant_id": "tenant_1",
			"role":      "front_desk",
		},
	}

	t.Run("valid token", func(t *testing.T) {
		claims, err := v.ValidateToken(ctx, "Bearer "+sign(t, jwt.SigningMethodHS256, []byte(testSecret), valid))
		require.NoError(t, err)
		assert.Equal(t, "user_1", claims.UserID)
		assert.Equal(t, "tenant_1", claims.TenantID)
		assert.Equal(t, "owner@acme.io", claims.Email)
		assert.Equal(t, types.RoleFrontDesk, claims.Role)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{name: "empty", token: func(t *testing.T) string { return "" }},
		{name: "wrong secret", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte("other"), valid)
		}},
		{name: "expired", token: func(t *testing.T) string {
			c := jwt.MapClaims{}
			for k, v := range valid {
				c[k] = v
			}
			c["exp"] = time.Now().Add(-time.Minute).Unix()
			return sign(t, jwt.SigningMethodHS256, []byte(testSecret), c)
		}},
		{name: "missing tenant", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user_1"})
		}},
		{name: "missing subject", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"app_metadata": map[string]interface{}{"tenant_id": "tenant_1"},
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(ctx, tt.token(t))
			require.Error(t, err)
			assert.True(t, ierr.IsPermissionDenied(err))
		})
	}
}

func TestSupabaseValidator_UnknownRoleIsViewer(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = testSecret
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":          "user_2",
		"app_metadata": map[string]interface{}{"tenant_id": "tenant_1", "role": "owner"},
	})

	claims, err := NewSupabaseValidator(cfg).ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, types.RoleViewer, claims.Role)
}
