package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"ops-panel/config"
	"ops-panel/internal/api/handler"
	"ops-panel/internal/service"
	"ops-panel/pkg/jwt"
)

func newTestEngine(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:      "router-test-secret-at-least-32-bytes!!",
		Issuer:         "ops-panel",
		AccessTokenTTL: 15 * time.Minute,
	}
	mgr := jwt.NewManager(&cfg.Auth)
	h := handler.NewHandler(&service.Service{}, nil, zap.NewNop())
	return Setup(cfg, h, Deps{JWT: mgr}, zap.NewNop()), mgr
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health 期望 200，实际=%d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/metrics 期望 200，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("/metrics 应输出 Prometheus 指标")
	}
}

func TestAPI_RequiresToken(t *testing.T) {
	r, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/quarry-production/excavator-entries", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际=%d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("响应应带 X-Request-ID")
	}
}

func TestAPI_PermissionGuard(t *testing.T) {
	r, mgr := newTestEngine(t)
	token, err := mgr.GenerateAccessToken("11111111-1111-1111-1111-111111111111", []string{PermProductionRead})
	if err != nil {
		t.Fatalf("签发 Token 应成功: %v", err)
	}

	tests := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/quarry-production/hauling-entries"},
		{"POST", "/api/v1/quarry-production/crusher-feed-entries/e-1/approve"},
		{"POST", "/api/v1/toll-payments/reconcile"},
		{"PATCH", "/api/v1/toll-rates/r-1"},
		{"PATCH", "/api/v1/toll-routes/route-1"},
		{"POST", "/api/v1/depreciation/run-monthly"},
		{"DELETE", "/api/v1/reference/trucks/t-1"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusForbidden {
				t.Errorf("期望 403，实际=%d", w.Code)
			}
		})
	}
}

func TestAPI_AuthMe(t *testing.T) {
	r, mgr := newTestEngine(t)
	token, _ := mgr.GenerateAccessToken("11111111-1111-1111-1111-111111111111", []string{PermTollRead})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), PermTollRead) {
		t.Errorf("响应应包含权限: %s", w.Body.String())
	}
}
