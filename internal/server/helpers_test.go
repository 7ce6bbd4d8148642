package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/hotseat/internal/database"
	"github.com/playperu/hotseat/internal/hotseat"
	"github.com/playperu/hotseat/internal/migrations"
	"github.com/playperu/hotseat/internal/selector"
	"github.com/playperu/hotseat/internal/setupflow"
)

// testAdminHash is the bcrypt hash of "changeme".
const testAdminHash = "$2a$10$trCdqP4npsbw0R1vQxVwXeT1HebzRmP01SXaNGPz1eSAZ7mpcL0Uu"

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(ctx, db, testLogger()); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

type fixture struct {
	store   *SQLiteStore
	flows   *FlowRegistry
	broker  *Broker
	handler http.Handler

	players map[string]hotseat.Player
	small   hotseat.QuestionPack // 10 questions
	big     hotseat.QuestionPack // 30 questions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	store := NewSQLiteStore(setupTestDB(t))
	f := &fixture{store: store, players: map[string]hotseat.Player{}}

	for _, p := range []struct {
		name       string
		calibrated bool
	}{
		{"Ana", true}, {"Bruno", true}, {"Carla", true}, {"Dora", false},
	} {
		created, err := store.CreatePlayer(ctx, p.name, p.calibrated)
		if err != nil {
			t.Fatalf("creating player %s: %v", p.name, err)
		}
		f.players[p.name] = created
	}

	f.small = mustCreatePack(t, store, map[string]string{"en": "Small", "es": "Pequeño"}, 10)
	f.big = mustCreatePack(t, store, map[string]string{"en": "Big"}, 30)

	if err := store.EnsureAdmin(ctx, "admin@playperu.com", testAdminHash); err != nil {
		t.Fatalf("ensuring admin: %v", err)
	}

	f.broker = NewBroker()
	f.flows = NewFlowRegistry(setupflow.Deps{
		Roster:   store,
		Catalog:  store,
		Selector: selector.New(store, selector.WithSeed(7)),
		Sessions: store,
	}, setupflow.DefaultCountOptions, f.broker, logger)

	f.handler = New(":0", logger, Deps{
		Store:  store,
		Admin:  store,
		Flows:  f.flows,
		Broker: f.broker,
	}, "").Handler()
	return f
}

func mustCreatePack(t *testing.T, store *SQLiteStore, names map[string]string, n int) hotseat.QuestionPack {
	t.Helper()
	questions := make([]string, n)
	for i := range questions {
		questions[i] = names["en"] + " question"
	}
	p, err := store.CreatePack(context.Background(), names, questions)
	if err != nil {
		t.Fatalf("creating pack %s: %v", names["en"], err)
	}
	return p
}

func (f *fixture) ids(names ...string) []string {
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = f.players[n].ID
	}
	return ids
}

// do sends a JSON request through the router and decodes the response into
// out when out is non-nil.
func (f *fixture) do(t *testing.T, method, path string, body any, out any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body.String())
	}
}
