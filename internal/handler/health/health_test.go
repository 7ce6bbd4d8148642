package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/hotseat/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name: "all healthy",
			checks: map[string]health.Checker{
				"sqlite":  mockChecker{},
				"catalog": mockChecker{},
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"sqlite": "ok", "catalog": "ok"},
		},
		{
			name: "sqlite down",
			checks: map[string]health.Checker{
				"sqlite":  mockChecker{err: errors.New("locked")},
				"catalog": mockChecker{},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"sqlite": "error", "catalog": "ok"},
		},
		{
			name: "func checker",
			checks: map[string]health.Checker{
				"catalog": health.CheckFunc(func(context.Context) error { return errors.New("no packs") }),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"catalog": "error"},
		},
		{
			name:       "no checks",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]health.Result
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(body) != len(tt.wantBody) {
				t.Errorf("got %d results, want %d", len(body), len(tt.wantBody))
			}

			for name, want := range tt.wantBody {
				if got := body[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestRunHonoursContext(t *testing.T) {
	h := health.NewHandler(slog.Default(), map[string]health.Checker{
		"slow": health.CheckFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, healthy := h.Run(ctx)
	if healthy {
		t.Fatal("expected unhealthy")
	}
	if results["slow"].Status != "error" {
		t.Errorf("slow status = %q, want error", results["slow"].Status)
	}
}
