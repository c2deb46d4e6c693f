package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/devicedesk/devicedesk/internal/auth"
	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/supabase"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// reserved query parameters that are not column filters
const paramLimit = "limit"

// proxy serves read-only GET /{table}?col=val requests for the caller's tenant.
type proxy struct {
	reader    supabase.TableReader
	validator auth.Validator
	log       *logger.Logger
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodGet {
		return respondError(ierr.NewErrorf("method %s is not allowed", req.HTTPMethod).
			WithHint("Only GET is supported").
			Mark(ierr.ErrInvalidOperation), http.StatusMethodNotAllowed), nil
	}

	token := header(req.Headers, types.HeaderAuthorization)
	claims, err := p.validator.ValidateToken(ctx, token)
	if err != nil {
		return respondError(err, http.StatusUnauthorized), nil
	}

	table := strings.Trim(req.PathParameters["table"], "/")
	if table == "" {
		table = strings.Trim(req.Path, "/")
	}

	sel := supabase.SelectRequest{
		Table:    types.TableName(table),
		TenantID: claims.TenantID,
		Filters:  lo.OmitByKeys(req.QueryStringParameters, []string{paramLimit}),
	}
	if raw, ok := req.QueryStringParameters[paramLimit]; ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(ierr.WithError(err).
				WithHint("limit must be a number").
				Mark(ierr.ErrValidation), 0), nil
		}
		sel.Limit = limit
	}

	ctx = types.SetTenantID(ctx, claims.TenantID)
	rows, err := p.reader.Select(ctx, sel)
	if err != nil {
		p.log.WithContext(ctx).Warnw("proxy select failed", "table", table, "error", err)
		return respondError(err, 0), nil
	}
	if rows == nil {
		rows = []supabase.Row{}
	}
	return respond(http.StatusOK, rows), nil
}

// header looks a header up case-insensitively, API Gateway keeps the
// client's casing.
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func respond(status int, body interface{}) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"success":false}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}

// respondError maps err to its HTTP status unless status overrides it.
func respondError(err error, status int) events.APIGatewayProxyResponse {
	mapped, resp := ierr.ToResponse(err)
	if status == 0 {
		status = mapped
	}
	return respond(status, resp)
}

func newProxy() (*proxy, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	reader, err := supabase.NewClient(cfg.Supabase, log)
	if err != nil {
		return nil, err
	}
	return &proxy{reader: reader, validator: auth.NewSupabaseValidator(cfg), log: log}, nil
}

func main() {
	p, err := newProxy()
	if err != nil {
		log.Fatalf("failed to initialize proxy: %v", err)
	}

	// Running locally: serve one request built from the environment.
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		log.Println("Running locally...")
		resp, err := p.handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodGet,
			Path:       "/" + os.Getenv("PROXY_TABLE"),
			Headers:    map[string]string{types.HeaderAuthorization: os.Getenv("PROXY_TOKEN")},
		})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		log.Printf("Result: %d %s", resp.StatusCode, resp.Body)
		return
	}

	lambda.Start(p.handle)
}
