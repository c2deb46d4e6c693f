package auth

import (
	"context"
	"strings"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/golang-jwt/jwt/v4"
)

// Claims are the identity fields the API needs from an access token.
type Claims struct {
	UserID   string
	TenantID string
	Email    string
	Role     types.Role
}

// Validator checks bearer tokens issued by the hosted auth service.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

type supabaseValidator struct {
	secret []byte
}

// NewSupabaseValidator validates HS256 access tokens signed with the
// project's JWT secret. Tenant and role are read from app_metadata.
func NewSupabaseValidator(cfg *config.Configuration) Validator {
	return &supabaseValidator{secret: []byte(cfg.Auth.Secret)}
}

func (s *supabaseValidator) ValidateToken(_ context.Context, token string) (*Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ierr.NewError("missing token").
			WithHint("Authorization token is required").
			Mark(ierr.ErrPermissionDenied)
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint("Unexpected signing method").
				WithReportableDetails(map[string]interface{}{
					"signing_method": token.Method.Alg(),
				}).
				Mark(ierr.ErrPermissionDenied)
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid or expired token").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrPermissionDenied)
	}

	var tenantID, role string
	if appMetadata, ok := claims["app_metadata"].(map[string]interface{}); ok {
		tenantID, _ = appMetadata["tenant_id"].(string)
		role, _ = appMetadata["role"].(string)
	}
	if tenantID == "" {
		return nil, ierr.NewError("token missing tenant").
			WithHint("User is not assigned to a workspace").
			Mark(ierr.ErrPermissionDenied)
	}

	email, _ := claims["email"].(string)

	return &Claims{
		UserID:   userID,
		TenantID: tenantID,
		Email:    email,
		Role:     types.ParseRole(role),
	}, nil
}
