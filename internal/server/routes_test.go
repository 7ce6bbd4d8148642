package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/hotseat/internal/handler/health"
)

func TestHealthzMountsHealthRoutes(t *testing.T) {
	f := newFixture(t)
	h := New(":0", testLogger(), Deps{
		Store:  f.store,
		Admin:  f.store,
		Flows:  f.flows,
		Broker: f.broker,
		Health: health.NewHandler(testLogger(), map[string]health.Checker{
			"catalog": health.CheckFunc(func(context.Context) error { return nil }),
		}).Routes(),
	}, "").Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d", rec.Code)
	}
	var body map[string]health.Result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["catalog"].Status != "ok" {
		t.Errorf("catalog = %+v", body["catalog"])
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /healthz = %d, want 405", rec.Code)
	}
}
