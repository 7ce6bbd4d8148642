package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleOpenAPI(t *testing.T) {
	h := handleOpenAPI()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding spec: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Errorf("openapi = %q, want 3.x", doc.OpenAPI)
	}

	for _, op := range apiOperations() {
		methods, ok := doc.Paths[op.path]
		if !ok {
			t.Errorf("path %s missing", op.path)
			continue
		}
		if _, ok := methods[strings.ToLower(op.method)]; !ok {
			t.Errorf("%s %s missing", op.method, op.path)
		}
	}
}

func TestDocsServed(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/docs/", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "/openapi.json") {
		t.Error("docs page does not reference /openapi.json")
	}
}
