package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paylinks/internal/auth"
	"paylinks/internal/config"
	"paylinks/internal/handler"
	"paylinks/internal/metrics"
	"paylinks/internal/model"
	"paylinks/internal/processor"
	"paylinks/internal/repository"
	"paylinks/internal/service"
)

type testServer struct {
	e    *echo.Echo
	repo *repository.MemoryLinkRepository
	fake *processor.Fake
}

type serverOptions struct {
	processor  processor.Processor
	webhook    config.WebhookConfig
	noFake     bool
	withSecret string
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	repo := repository.NewMemoryLinkRepository()
	fake := processor.NewFake()
	var proc processor.Processor = fake
	if opts.noFake {
		proc = opts.processor
	}
	opts.webhook.SimulationSecret = opts.withSecret

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svcOpts := []service.Option{service.WithMetrics(m)}
	links := service.NewLinkService(repo, proc, config.ProcessorConfig{Currency: "MXN"}, svcOpts...)
	webhook := service.NewWebhookService(repo, proc, opts.webhook, svcOpts...)

	e := echo.New()
	Register(e, zap.NewNop(), Handlers{
		Health:  handler.NewHealthHandler("local", proc != nil, proc != nil && proc.Configured()),
		Links:   handler.NewLinkHandler(links),
		Webhook: handler.NewWebhookHandler(webhook, opts.withSecret != ""),
	}, Options{SimulationSecret: opts.withSecret, Gatherer: reg})

	return &testServer{e: e, repo: repo, fake: fake}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) seed(t *testing.T, id, amount string) {
	t.Helper()
	require.NoError(t, s.repo.Put(context.Background(), &model.PaymentLink{
		ID:                   id,
		User:                 "u",
		Amount:               decimal.RequireFromString(amount),
		Status:               model.LinkStatusCreated,
		PaymentProvider:      model.ProviderMercadoPago,
		ProviderPreferenceID: "pref-" + id,
		PaymentURL:           "https://checkout.example/" + id,
		CreatedAt:            time.Now().Add(-time.Minute).UTC(),
	}))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "local", body["storeMode"])
	assert.Equal(t, true, body["processorConfigured"])
	assert.Equal(t, true, body["credentialsPresent"])
}

func TestCreateLinkEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodPost, "/links", `{"user":"alice","amount":1234.56,"description":"Shoes"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "CREATED", body["status"])
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["payment_url"])
	assert.NotEmpty(t, body["provider_preference_id"])

	get := s.do(t, http.MethodGet, "/links/"+body["id"].(string), "")
	require.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), `"amount":1234.56`)
	assert.Contains(t, get.Body.String(), `"description":"Shoes"`)
}

func TestCreateLinkEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		opts   serverOptions
		setup  func(*processor.Fake)
		body   string
		status int
		code   string
	}{
		{name: "malformed json", body: `{"user":`, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{name: "missing user", body: `{"amount":10}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "missing amount", body: `{"user":"u"}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "non-positive amount", body: `{"user":"u","amount":0}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "sub-cent amount", body: `{"user":"u","amount":10.005}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "processor disabled", opts: serverOptions{noFake: true}, body: `{"user":"u","amount":5}`, status: http.StatusInternalServerError, code: "CONFIGURATION_ERROR"},
		{
			name:   "processor rejects",
			setup:  func(f *processor.Fake) { f.PreferenceErr = &processor.APIError{StatusCode: 401} },
			body:   `{"user":"u","amount":5}`,
			status: http.StatusBadGateway,
			code:   "UPSTREAM_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.opts)
			if tt.setup != nil {
				tt.setup(s.fake)
			}

			rec := s.do(t, http.MethodPost, "/links", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode(t, rec)["code"])
			assert.Equal(t, 0, s.repo.Len())
		})
	}
}

func TestGetLinkNotFound(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodGet, "/links/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"error": "not_found", "id": "nope"}, decode(t, rec))
}

func TestListLinksEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		s.seed(t, id, "10.10")
	}

	rec := s.do(t, http.MethodGet, "/links?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []handler.LinkResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	for _, item := range body.Items {
		assert.Equal(t, "10.1", item.Amount.String())
	}

	bad := s.do(t, http.MethodGet, "/links?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestWebhookSimulation(t *testing.T) {
	s := newTestServer(t, serverOptions{webhook: config.WebhookConfig{SimulationEnabled: true}})
	s.seed(t, "link-1", "50")

	rec := s.do(t, http.MethodPost, "/webhook/processor", `{"external_reference":"link-1","status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, "simulated", body["mode"])

	got, err := s.repo.Get(context.Background(), "link-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestWebhookSimulationDisabledFallsThrough(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.seed(t, "link-1", "50")

	rec := s.do(t, http.MethodPost, "/webhook/processor", `{"external_reference":"link-1","status":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])

	got, _ := s.repo.Get(context.Background(), "link-1")
	assert.Equal(t, model.LinkStatusCreated, got.Status)
}

func TestWebhookSimulationRequiresToken(t *testing.T) {
	s := newTestServer(t, serverOptions{
		webhook:    config.WebhookConfig{SimulationEnabled: true},
		withSecret: "s3cret",
	})
	s.seed(t, "link-1", "50")
	body := `{"external_reference":"link-1","status":"approved"}`

	rec := s.do(t, http.MethodPost, "/webhook/processor", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/webhook/processor", body, echo.HeaderAuthorization, "Bearer not-a-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	forged, err := auth.NewJWTService("other").GenerateSimulationToken("qa", time.Minute)
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/webhook/processor", body, echo.HeaderAuthorization, "Bearer "+forged)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token, err := auth.NewJWTService("s3cret").GenerateSimulationToken("qa", time.Minute)
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/webhook/processor", body, echo.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, _ := s.repo.Get(context.Background(), "link-1")
	assert.Equal(t, "approved", got.Status)
}

func TestWebhookProcessorEvent(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.seed(t, "link-1", "50")
	s.fake.SetPayment(processor.Payment{ID: "123456789", Status: "approved", ExternalReference: "link-1"})

	rec := s.do(t, http.MethodPost, "/webhook/mercadopago", `{"type":"payment","data":{"id":123456789}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "123456789", body["payment_id"])
	assert.Equal(t, "processor", body["mode"])

	got, _ := s.repo.Get(context.Background(), "link-1")
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, "123456789", *got.ProviderPaymentID)
}

func TestWebhookProcessorEventFromQuery(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.seed(t, "link-1", "50")
	s.fake.SetPayment(processor.Payment{ID: "77", Status: "pending", ExternalReference: "link-1"})

	rec := s.do(t, http.MethodPost, "/webhook/processor?type=payment&data.id=77", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", decode(t, rec)["status"])
}

func TestWebhookProcessorEventErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*processor.Fake)
		body   string
		status int
		code   string
	}{
		{name: "missing data id", body: `{"type":"payment"}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "zero data id", body: `{"type":"payment","data":{"id":0}}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "lookup fails", body: `{"data":{"id":"1"}}`, status: http.StatusBadGateway, code: "UPSTREAM_ERROR"},
		{
			name:   "no external reference",
			setup:  func(f *processor.Fake) { f.SetPayment(processor.Payment{ID: "2", Status: "approved"}) },
			body:   `{"data":{"id":"2"}}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "unknown link",
			setup:  func(f *processor.Fake) { f.SetPayment(processor.Payment{ID: "3", Status: "approved", ExternalReference: "ghost"}) },
			body:   `{"data":{"id":"3"}}`,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "unconfigured",
			setup:  func(f *processor.Fake) { f.NoCredentials = true },
			body:   `{"data":{"id":"4"}}`,
			status: http.StatusInternalServerError,
			code:   "CONFIGURATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, serverOptions{})
			if tt.setup != nil {
				tt.setup(s.fake)
			}

			rec := s.do(t, http.MethodPost, "/webhook/processor", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.do(t, http.MethodPost, "/links", `{"user":"u","amount":5}`)

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `payment_links_created_total{outcome="ok"} 1`)
}
