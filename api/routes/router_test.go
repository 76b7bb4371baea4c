package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	checkoutsvc "github.com/angelmondragon/warehousepos-backend/internal/checkout"
	"github.com/angelmondragon/warehousepos-backend/internal/orders"
	"github.com/angelmondragon/warehousepos-backend/internal/reports"
	pkgAuth "github.com/angelmondragon/warehousepos-backend/pkg/auth"
	"github.com/angelmondragon/warehousepos-backend/pkg/auth/session"
	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	"github.com/angelmondragon/warehousepos-backend/pkg/enums"
	"github.com/angelmondragon/warehousepos-backend/pkg/logger"
	"github.com/angelmondragon/warehousepos-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryRedis struct {
	mu     sync.Mutex
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Ping(context.Context) error { return nil }

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key], _ = value.(string)
	return nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryRedis) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }

func (m *memoryRedis) RateLimitKey(scope string) string { return "rl:" + scope }

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type countingCheckout struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCheckout) Execute(ctx context.Context, userID uuid.UUID, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return &checkoutsvc.Result{State: enums.CheckoutStateSuccess, Order: &orders.OrderDTO{ID: uuid.New()}}, nil
}

func (c *countingCheckout) Preview(ctx context.Context, userID uuid.UUID, input checkoutsvc.Input) (*checkoutsvc.Preview, error) {
	return &checkoutsvc.Preview{}, nil
}

func (c *countingCheckout) Status(ctx context.Context, userID uuid.UUID) (*checkoutsvc.Status, error) {
	return &checkoutsvc.Status{State: enums.CheckoutStateIdle}, nil
}

type stubReports struct{}

func (stubReports) SalesSummary(ctx context.Context, window reports.Range) (*reports.SalesSummary, error) {
	return &reports.SalesSummary{From: window.From, To: window.To}, nil
}

func (stubReports) TopProducts(ctx context.Context, window reports.Range, limit int) ([]reports.TopProduct, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:    time.Minute,
			LoginUserLimit: 2,
			LoginIPLimit:   10,
		},
	}
}

type testRouter struct {
	handler  http.Handler
	checkout *countingCheckout
	registry *prometheus.Registry
}

func newTestRouter(cfg *config.Config) testRouter {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	reg := prometheus.NewRegistry()
	checkout := &countingCheckout{}
	handler := NewRouter(
		cfg,
		logg,
		stubPinger{},
		newMemoryRedis(),
		stubSessions{},
		reg,
		metrics.NewHTTPMetrics(reg),
		Services{
			Checkout: checkout,
			Reports:  stubReports{},
		},
	)
	return testRouter{handler: handler, checkout: checkout, registry: reg}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"role":"cashier"`) {
		t.Fatalf("expected role echoed, got %s", resp.Body.String())
	}
}

func TestReportsRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/reports/sales?from=2026-01-01&to=2026-01-31"

	cashier := httptest.NewRequest(http.MethodGet, target, nil)
	cashier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, cashier)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.handler.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCatalogWritesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/products", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	req.Header.Set("Idempotency-Key", "p-1")
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier got %d", resp.Code)
	}
}

func TestCheckoutRequiresIdempotencyKeyAndReplays(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg, enums.UserRoleCashier)
	body := `{"payment_method":"cash","amount_paid":"100"}`

	missing := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	missing.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, missing)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "till-1-sale-42")
		resp := httptest.NewRecorder()
		router.handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d", i, resp.Code)
		}
	}
	if router.checkout.calls != 1 {
		t.Fatalf("expected a single checkout execution, got %d", router.checkout.calls)
	}
}

func TestCheckoutPreviewSkipsIdempotency(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/preview", strings.NewReader(`{"payment_method":"cash"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	router := newTestRouter(testConfig())

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"kassir1","password":"wrong"}`))
		req.RemoteAddr = "10.0.0.7:5000"
		resp := httptest.NewRecorder()
		router.handler.ServeHTTP(resp, req)
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third attempt got %d", last)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(testConfig())

	resp := httptest.NewRecorder()
	router.handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected ready got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}

	resp = httptest.NewRecorder()
	router.handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_request_duration_seconds") {
		t.Fatalf("expected http histogram in exposition")
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "kassir1",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
