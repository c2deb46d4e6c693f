package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/devicedesk/devicedesk/internal/auth"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/supabase"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	got  supabase.SelectRequest
	rows []supabase.Row
}

func (r *stubReader) Select(_ context.Context, req supabase.SelectRequest) ([]supabase.Row, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.got = req
	return r.rows, nil
}

type stubValidator struct{ err error }

func (v stubValidator) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &auth.Claims{UserID: "user_1", TenantID: "tenant_a", Role: types.RoleViewer}, nil
}

func TestProxyHandle(t *testing.T) {
	reader := &stubReader{rows: []supabase.Row{{"id": "dev_1", "serial_number": "SN-1"}}}
	p := &proxy{reader: reader, validator: stubValidator{}, log: logger.NewNopLogger()}

	resp, err := p.handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		PathParameters:        map[string]string{"table": "devices"},
		Headers:               map[string]string{"authorization": "Bearer x"},
		QueryStringParameters: map[string]string{"category": "laptop", "limit": "5"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	assert.Equal(t, types.TableNameDevices, reader.got.Table)
	assert.Equal(t, "tenant_a", reader.got.TenantID)
	assert.Equal(t, map[string]string{"category": "laptop"}, reader.got.Filters)
	assert.Equal(t, 5, reader.got.Limit)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &rows))
	assert.Equal(t, "SN-1", rows[0]["serial_number"])
}

func TestProxyHandle_Errors(t *testing.T) {
	tests := []struct {
		name      string
		validator auth.Validator
		req       events.APIGatewayProxyRequest
		want      int
	}{
		{
			name:      "bad token",
			validator: stubValidator{err: ierr.NewError("expired").Mark(ierr.ErrPermissionDenied)},
			req:       events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/devices"},
			want:      http.StatusUnauthorized,
		},
		{
			name:      "table not allow-listed",
			validator: stubValidator{},
			req:       events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/auth_users"},
			want:      http.StatusNotFound,
		},
		{
			name:      "tenant filter cannot be overridden",
			validator: stubValidator{},
			req: events.APIGatewayProxyRequest{
				HTTPMethod:            http.MethodGet,
				Path:                  "/clients",
				QueryStringParameters: map[string]string{"tenant_id": "tenant_b"},
			},
			want: http.StatusBadRequest,
		},
		{
			name:      "bad limit",
			validator: stubValidator{},
			req: events.APIGatewayProxyRequest{
				HTTPMethod:            http.MethodGet,
				Path:                  "/clients",
				QueryStringParameters: map[string]string{"limit": "many"},
			},
			want: http.StatusBadRequest,
		},
		{
			name:      "writes rejected",
			validator: stubValidator{},
			req:       events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/clients"},
			want:      http.StatusMethodNotAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &proxy{reader: &stubReader{}, validator: tt.validator, log: logger.NewNopLogger()}
			resp, err := p.handle(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode, resp.Body)
		})
	}
}
