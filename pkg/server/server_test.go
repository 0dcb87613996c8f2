package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aiteddy-hq/guardian/pkg/telemetry/health"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
)

type fixedReporter struct{ status string }

func (f fixedReporter) Health(context.Context) health.Report {
	return health.Report{
		Status:    f.status,
		Checks:    map[string]health.CheckResult{"rules": {Status: health.StatusOK, Required: true}},
		Timestamp: time.Now(),
	}
}

func newTestServer(status string, metrics http.Handler) *Server {
	return New(Config{}, fixedReporter{status}, metrics, logging.Nop())
}

func TestHandler_Routes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "guardian_analyses_total 1")
	})

	tests := []struct {
		name       string
		status     string
		metrics    http.Handler
		method     string
		path       string
		wantStatus int
	}{
		{"liveness", health.StatusUnhealthy, nil, http.MethodGet, "/healthz", http.StatusOK},
		{"ready", health.StatusReady, nil, http.MethodGet, "/readyz", http.StatusOK},
		{"degraded is still ready", health.StatusDegraded, nil, http.MethodGet, "/readyz", http.StatusOK},
		{"unhealthy", health.StatusUnhealthy, nil, http.MethodGet, "/readyz", http.StatusServiceUnavailable},
		{"metrics mounted", health.StatusReady, metrics, http.MethodGet, "/metrics", http.StatusOK},
		{"metrics disabled", health.StatusReady, nil, http.MethodGet, "/metrics", http.StatusNotFound},
		{"wrong method", health.StatusReady, nil, http.MethodPost, "/readyz", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(tt.status, tt.metrics).Handler()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Error("response has no request id")
			}
		})
	}
}

func TestHandler_ReadyBody(t *testing.T) {
	h := newTestServer(health.StatusDegraded, nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var report health.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("body is not a report: %v", err)
	}
	if report.Status != health.StatusDegraded {
		t.Errorf("report status = %q", report.Status)
	}
	if _, ok := report.Checks["rules"]; !ok {
		t.Error("report lost its checks")
	}
}

func TestRequestIDMiddleware_KeepsCallerID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "req-42" || rec.Header().Get(RequestIDHeader) != "req-42" {
		t.Errorf("context id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logging.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestServe_Lifecycle(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	srv := newTestServer(health.StatusReady, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}
