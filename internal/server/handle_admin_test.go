package server

import (
	"net/http"
	"testing"
)

func loginAdmin(t *testing.T, f *fixture) []*http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/admin/login",
		AdminLoginRequest{Email: "Admin@PlayPeru.com ", Password: "changeme"}, nil)
	expectStatus(t, rec, http.StatusOK)
	return rec.Result().Cookies()
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  AdminLoginRequest
		want int
	}{
		{"wrong password", AdminLoginRequest{Email: "admin@playperu.com", Password: "nope"}, http.StatusUnauthorized},
		{"unknown email", AdminLoginRequest{Email: "x@playperu.com", Password: "changeme"}, http.StatusUnauthorized},
		{"missing fields", AdminLoginRequest{Email: "admin@playperu.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, f.do(t, http.MethodPost, "/api/admin/login", tt.req, nil), tt.want)
		})
	}

	cookies := loginAdmin(t, f)
	found := false
	for _, c := range cookies {
		if c.Name == adminCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected admin_session cookie")
	}

	var me AdminMeResponse
	expectStatus(t, f.do(t, http.MethodGet, "/api/admin/me", nil, &me, cookies...), http.StatusOK)
	if me.Email != "admin@playperu.com" {
		t.Errorf("email = %q", me.Email)
	}

	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/logout", nil, nil, cookies...), http.StatusOK)
	expectStatus(t, f.do(t, http.MethodGet, "/api/admin/me", nil, nil, cookies...), http.StatusUnauthorized)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/players", CreatePlayerRequest{Name: "Eva"}, nil), http.StatusUnauthorized)
	expectStatus(t, f.do(t, http.MethodDelete, "/api/admin/packs/"+f.small.ID, nil, nil), http.StatusUnauthorized)
}

func TestAdminManagesRoster(t *testing.T) {
	f := newFixture(t)
	cookies := loginAdmin(t, f)

	var p PlayerInfo
	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/players",
		CreatePlayerRequest{Name: "  Eva  "}, &p, cookies...), http.StatusCreated)
	if p.Name != "Eva" || p.Calibrated {
		t.Fatalf("created = %+v", p)
	}
	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/players",
		CreatePlayerRequest{Name: " "}, nil, cookies...), http.StatusBadRequest)

	var roster []PlayerInfo
	f.do(t, http.MethodGet, "/api/players", nil, &roster)
	if len(roster) != 3 {
		t.Fatalf("roster = %d, want 3 before calibration", len(roster))
	}

	expectStatus(t, f.do(t, http.MethodPut, "/api/admin/players/"+p.ID+"/calibration",
		CalibrationRequest{Calibrated: true}, &p, cookies...), http.StatusOK)
	if !p.Calibrated {
		t.Fatal("player not calibrated")
	}
	f.do(t, http.MethodGet, "/api/players", nil, &roster)
	if len(roster) != 4 {
		t.Errorf("roster = %d, want 4 after calibration", len(roster))
	}

	expectStatus(t, f.do(t, http.MethodPut, "/api/admin/players/missing/calibration",
		CalibrationRequest{Calibrated: true}, nil, cookies...), http.StatusNotFound)
}

func TestAdminManagesPacks(t *testing.T) {
	f := newFixture(t)
	cookies := loginAdmin(t, f)

	var pack PackInfo
	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/packs", CreatePackRequest{
		Names:     map[string]string{"en": "Extra"},
		Questions: []string{"one", " ", "two", "three"},
	}, &pack, cookies...), http.StatusCreated)
	if pack.Name != "Extra" || pack.QuestionCount != 3 {
		t.Fatalf("created = %+v", pack)
	}

	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/packs", CreatePackRequest{
		Names:     map[string]string{"es": "Sin inglés"},
		Questions: []string{"uno"},
	}, nil, cookies...), http.StatusBadRequest)
	expectStatus(t, f.do(t, http.MethodPost, "/api/admin/packs", CreatePackRequest{
		Names: map[string]string{"en": "Empty"},
	}, nil, cookies...), http.StatusBadRequest)

	var packs []PackInfo
	f.do(t, http.MethodGet, "/api/packs", nil, &packs)
	if len(packs) != 3 || packs[2].ID != pack.ID {
		t.Fatalf("packs = %+v, want new pack last", packs)
	}

	expectStatus(t, f.do(t, http.MethodDelete, "/api/admin/packs/"+pack.ID, nil, nil, cookies...), http.StatusNoContent)
	expectStatus(t, f.do(t, http.MethodDelete, "/api/admin/packs/"+pack.ID, nil, nil, cookies...), http.StatusNotFound)
	expectStatus(t, f.do(t, http.MethodGet, "/api/packs/"+pack.ID+"/questions", nil, nil), http.StatusNotFound)
}
