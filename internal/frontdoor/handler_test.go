package frontdoor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/fantasy-relay/internal/cookies"
	"github.com/tjfontaine/fantasy-relay/internal/domain"
	"github.com/tjfontaine/fantasy-relay/internal/prediction"
	"github.com/tjfontaine/fantasy-relay/internal/refdata"
	"github.com/tjfontaine/fantasy-relay/internal/relay"
	"github.com/tjfontaine/fantasy-relay/internal/setpieces"
	"github.com/tjfontaine/fantasy-relay/internal/upstream"
)

const bootstrapBody = `{
  "events": [
    {"id": 1, "is_current": false, "finished": true},
    {"id": 2, "is_current": true},
    {"id": 3, "is_next": true}
  ],
  "teams": [
    {"id": 1, "code": 3, "name": "Arsenal", "short_name": "ARS", "strength": 4},
    {"id": 12, "code": 14, "name": "Liverpool", "short_name": "LIV", "strength": 5}
  ],
  "elements": [
    {"id": 328, "web_name": "M.Salah", "team": 12, "element_type": 3, "form": "8.5", "total_points": 29, "now_cost": 145, "minutes": 180, "starts": 2},
    {"id": 7, "web_name": "Saka", "team": 1, "element_type": 3, "form": "4.0", "total_points": 12, "now_cost": 100, "minutes": 150, "starts": 2}
  ]
}`

// mockRelay implements SessionRelay for testing
type mockRelay struct {
	loginResult  *relay.LoginResult
	verifyResult *relay.VerifyResult
	teamResult   *relay.TeamDataResult
	err          error

	lastCreds    relay.Credentials
	lastCookie   string
	lastAccount  int
	lastGameweek int
	calls        int
}

func (m *mockRelay) Login(_ context.Context, creds relay.Credentials) (*relay.LoginResult, error) {
	m.calls++
	m.lastCreds = creds
	if m.err != nil {
		return nil, m.err
	}
	return m.loginResult, nil
}

func (m *mockRelay) VerifySession(_ context.Context, cookieHeader string) (*relay.VerifyResult, error) {
	m.calls++
	m.lastCookie = cookieHeader
	if m.err != nil {
		return nil, m.err
	}
	return m.verifyResult, nil
}

func (m *mockRelay) FetchTeamData(_ context.Context, accountID, gameweek int, cookieHeader string) (*relay.TeamDataResult, error) {
	m.calls++
	m.lastAccount = accountID
	m.lastGameweek = gameweek
	m.lastCookie = cookieHeader
	if m.err != nil {
		return nil, m.err
	}
	return m.teamResult, nil
}

type mockReference struct {
	snap     *refdata.Snapshot
	fixtures []upstream.Fixture
	err      error
}

func (m *mockReference) Snapshot(context.Context) (*refdata.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

func (m *mockReference) Fixtures(context.Context) ([]upstream.Fixture, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.fixtures, nil
}

type mockCrests struct {
	crest refdata.Crest
	err   error
	codes []int
}

func (m *mockCrests) Get(_ context.Context, code int) (refdata.Crest, error) {
	m.codes = append(m.codes, code)
	return m.crest, m.err
}

func intPtr(v int) *int { return &v }

func newReference(t *testing.T) *mockReference {
	t.Helper()
	snap, err := refdata.NewSnapshot([]byte(bootstrapBody))
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return &mockReference{
		snap: snap,
		fixtures: []upstream.Fixture{
			{ID: 1, Event: intPtr(2), TeamH: 1, TeamA: 12},
			{ID: 2, Event: intPtr(3), TeamH: 12, TeamA: 1},
		},
	}
}

func newRouter(cfg Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := chi.NewRouter()
	NewHandler(cfg).Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func sessionCookies() []*http.Cookie {
	return cookies.NormalizeAll([]*http.Cookie{
		{Name: "pl_profile", Value: "abc"},
		{Name: "sessionid", Value: "xyz"},
	})
}

// =============================================================================
// Login
// =============================================================================

func TestHandleLogin_JSON(t *testing.T) {
	rl := &mockRelay{loginResult: &relay.LoginResult{
		DisplayName: "Jane Doe",
		AccountID:   12345,
		Message:     "Signed in as Jane Doe",
		Cookies:     sessionCookies(),
	}}
	h := newRouter(Config{Relay: rl})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"login":"jane@example.com","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if rl.lastCreds.Login != "jane@example.com" || rl.lastCreds.Password != "hunter2" {
		t.Errorf("credentials = %+v", rl.lastCreds)
	}
	body := decode[LoginResponse](t, rec)
	if !body.Success || body.DisplayName != "Jane Doe" || body.AccountID != 12345 {
		t.Errorf("body = %+v", body)
	}

	installed := rec.Result().Cookies()
	if len(installed) != 2 {
		t.Fatalf("installed %d cookies, want 2", len(installed))
	}
	for _, c := range rec.Header().Values("Set-Cookie") {
		if !strings.Contains(c, "SameSite=None") || !strings.Contains(c, "Secure") {
			t.Errorf("cookie not normalized: %s", c)
		}
	}
}

func TestHandleLogin_Form(t *testing.T) {
	rl := &mockRelay{loginResult: &relay.LoginResult{DisplayName: "Jane Doe", AccountID: 1}}
	h := newRouter(Config{Relay: rl})

	form := url.Values{"login": {"jane@example.com"}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	rec := do(t, h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if rl.lastCreds.Login != "jane@example.com" || rl.lastCreds.Password != "hunter2" {
		t.Errorf("credentials = %+v", rl.lastCreds)
	}
}

func TestHandleLogin_InvalidBody(t *testing.T) {
	rl := &mockRelay{}
	h := newRouter(Config{Relay: rl})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{not json`))
	rec := do(t, h, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if rl.calls != 0 {
		t.Errorf("relay called %d times", rl.calls)
	}
	body := decode[LoginResponse](t, rec)
	if body.Success || body.ErrorKind != domain.KindInvalidRequest {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleLogin_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		devMode    bool
		wantStatus int
		wantKind   domain.ErrorKind
		wantDetail string
	}{
		{
			name:       "bot protection",
			err:        domain.ErrBotProtection("bot protection detected"),
			wantStatus: http.StatusForbidden,
			wantKind:   domain.KindBotProtectionDetected,
		},
		{
			name:       "rejected hides detail outside dev mode",
			err:        domain.ErrAuthenticationRejected("login rejected").WithDetail("status 200: <html>"),
			wantStatus: http.StatusUnauthorized,
			wantKind:   domain.KindAuthenticationRejected,
		},
		{
			name:       "rejected shows detail in dev mode",
			err:        domain.ErrAuthenticationRejected("login rejected").WithDetail("status 200: <html>"),
			devMode:    true,
			wantStatus: http.StatusUnauthorized,
			wantKind:   domain.KindAuthenticationRejected,
			wantDetail: "status 200: <html>",
		},
		{
			name:       "no cookies",
			err:        domain.ErrNoCookies("no cookies received"),
			wantStatus: http.StatusBadGateway,
			wantKind:   domain.KindNoCookiesReceived,
		},
		{
			name:       "unclassified error",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   domain.KindUpstreamUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(Config{Relay: &mockRelay{err: tt.err}, DevMode: tt.devMode})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"login":"a","password":"b"}`))
			rec := do(t, h, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decode[LoginResponse](t, rec)
			if body.Success || body.ErrorKind != tt.wantKind || body.Detail != tt.wantDetail {
				t.Errorf("body = %+v", body)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("no cookies should be installed on failure")
			}
		})
	}
}

// =============================================================================
// Verify
// =============================================================================

func TestHandleVerify(t *testing.T) {
	rl := &mockRelay{verifyResult: &relay.VerifyResult{
		IsLoggedIn:     true,
		DisplayName:    "Jane Doe",
		AccountID:      12345,
		RefreshCookies: sessionCookies()[:1],
	}}
	h := newRouter(Config{Relay: rl})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Cookie", "pl_profile=abc; theme=dark")
	rec := do(t, h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rl.lastCookie != "pl_profile=abc; theme=dark" {
		t.Errorf("cookie header forwarded as %q", rl.lastCookie)
	}
	body := decode[VerifyResponse](t, rec)
	if !body.IsLoggedIn || body.DisplayName != "Jane Doe" || body.AccountID != 12345 {
		t.Errorf("body = %+v", body)
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Errorf("refresh cookies installed = %d, want 1", len(rec.Result().Cookies()))
	}
}

func TestHandleVerify_NotLoggedIn(t *testing.T) {
	h := newRouter(Config{Relay: &mockRelay{verifyResult: &relay.VerifyResult{Reason: relay.ReasonVerificationFailed}}})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if body := decode[VerifyResponse](t, rec); body.IsLoggedIn || body.Reason != "verification failed" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleVerify_UpstreamDown(t *testing.T) {
	h := newRouter(Config{Relay: &mockRelay{err: domain.ErrUpstreamUnavailable("session verification request failed")}})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if body := decode[VerifyResponse](t, rec); body.IsLoggedIn || body.ErrorKind != domain.KindUpstreamUnavailable {
		t.Errorf("body = %+v", body)
	}
}

// =============================================================================
// Team data
// =============================================================================

func TestHandleTeam(t *testing.T) {
	rl := &mockRelay{teamResult: &relay.TeamDataResult{
		Data:         json.RawMessage(`{"picks":[]}`),
		EndpointUsed: "entry",
		Warning:      domain.KindIncompleteOwnerData,
		Attempts:     []relay.Attempt{{Candidate: "my-team", Status: 404}, {Candidate: "entry", Status: 200}},
	}}

	for _, devMode := range []bool{false, true} {
		h := newRouter(Config{Relay: rl, DevMode: devMode})
		req := httptest.NewRequest(http.MethodGet, "/api/team/12345?gameweek=7", nil)
		req.Header.Set("Cookie", "pl_profile=abc")
		rec := do(t, h, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if rl.lastAccount != 12345 || rl.lastGameweek != 7 || rl.lastCookie != "pl_profile=abc" {
			t.Errorf("relay called with %d, %d, %q", rl.lastAccount, rl.lastGameweek, rl.lastCookie)
		}
		body := decode[TeamResponse](t, rec)
		if !body.Success || body.EndpointUsed != "entry" || body.Warning != domain.KindIncompleteOwnerData {
			t.Errorf("body = %+v", body)
		}
		if string(body.Data) != `{"picks":[]}` {
			t.Errorf("data = %s", body.Data)
		}
		if (len(body.Attempts) > 0) != devMode {
			t.Errorf("devMode=%v: attempts = %v", devMode, body.Attempts)
		}
	}
}

func TestHandleTeam_BadInput(t *testing.T) {
	rl := &mockRelay{}
	h := newRouter(Config{Relay: rl})

	for _, target := range []string{"/api/team/abc", "/api/team/0", "/api/team/5?gameweek=x", "/api/team/5?gameweek=-1"} {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
	if rl.calls != 0 {
		t.Errorf("relay called %d times", rl.calls)
	}
}

func TestHandleTeam_AuthenticationRequired(t *testing.T) {
	h := newRouter(Config{Relay: &mockRelay{err: domain.ErrAuthenticationRequired("session expired").WithUpstreamStatus(403)}})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/team/5", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	body := decode[errorBody](t, rec)
	if body.Success || body.ErrorKind != domain.KindAuthenticationRequired {
		t.Errorf("body = %+v", body)
	}
}

// =============================================================================
// Reference data
// =============================================================================

func TestHandleBootstrap(t *testing.T) {
	h := newRouter(Config{Reference: newReference(t)})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/bootstrap-static", nil))

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("status = %d, content type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != bootstrapBody {
		t.Error("bootstrap payload should pass through unchanged")
	}
}

func TestHandleTeams(t *testing.T) {
	h := newRouter(Config{Reference: newReference(t)})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/teams", nil))

	body := decode[TeamsResponse](t, rec)
	if body.ShortNames[12] != "LIV" || body.IDs["ARS"] != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleReference_Unavailable(t *testing.T) {
	h := newRouter(Config{Reference: &mockReference{err: domain.ErrUpstreamUnavailable("bootstrap request failed")}})
	for _, target := range []string{"/api/bootstrap-static", "/api/teams", "/api/predictions"} {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", target, rec.Code)
		}
	}
}

func TestHandleCrest(t *testing.T) {
	crests := &mockCrests{crest: refdata.Crest{Data: []byte("\x89PNG"), ContentType: "image/png"}}
	h := newRouter(Config{Crests: crests})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/crests/14", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "image/png" || rec.Header().Get("Cache-Control") != crestCacheControl {
		t.Errorf("headers = %v", rec.Header())
	}
	if rec.Body.String() != "\x89PNG" || len(crests.codes) != 1 || crests.codes[0] != 14 {
		t.Errorf("body %q, codes %v", rec.Body.String(), crests.codes)
	}

	if rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/crests/badge", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric code: status = %d, want 400", rec.Code)
	}

	crests.err = domain.ErrResourceFetch("crest returned status 404").WithUpstreamStatus(404)
	if rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/crests/99", nil)); rec.Code != http.StatusBadGateway {
		t.Errorf("missing crest: status = %d, want 502", rec.Code)
	}
}

func TestHandleSetPieces(t *testing.T) {
	if rec := do(t, newRouter(Config{}), httptest.NewRequest(http.MethodGet, "/api/set-pieces", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("without a table: status = %d, want 404", rec.Code)
	}

	table := setpieces.Table{"Arsenal": {Penalties: []string{"Saka"}}}
	rec := do(t, newRouter(Config{SetPieces: table}), httptest.NewRequest(http.MethodGet, "/api/set-pieces", nil))
	body := decode[SetPiecesResponse](t, rec)
	if !body.Success || len(body.Clubs["Arsenal"].Penalties) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleHealth(t *testing.T) {
	rec := do(t, newRouter(Config{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
}

// =============================================================================
// Predictions
// =============================================================================

func TestHandleUpcomingPredictions(t *testing.T) {
	h := newRouter(Config{Reference: newReference(t)})
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/predictions?count=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := decode[PredictionResponse](t, rec)
	if len(body.Gameweeks) != 2 || body.Gameweeks[0] != 2 || body.Gameweeks[1] != 3 {
		t.Fatalf("gameweeks = %v, want [2 3]", body.Gameweeks)
	}
	if len(body.Predictions[2]) != 2 || len(body.Predictions[3]) != 2 {
		t.Fatalf("predictions = %v", body.Predictions)
	}

	sum := 0.0
	for _, gw := range body.Gameweeks {
		for _, p := range body.Predictions[gw] {
			if p.PredictedPoints <= 0 {
				t.Errorf("gw %d player %d predicted %v", gw, p.PlayerID, p.PredictedPoints)
			}
			sum += p.PredictedPoints
		}
	}
	if math.Abs(sum-body.Total) > 1e-9 {
		t.Errorf("total = %v, sum of predictions = %v", body.Total, sum)
	}
	if math.Abs(body.Totals[328]+body.Totals[7]-body.Total) > 1e-9 {
		t.Errorf("per-player totals %v do not add up to %v", body.Totals, body.Total)
	}
}

func TestHandleUpcomingPredictions_Query(t *testing.T) {
	h := newRouter(Config{Reference: newReference(t)})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/predictions?from=3&players=328", nil))
	body := decode[PredictionResponse](t, rec)
	if len(body.Gameweeks) != 1 || body.Gameweeks[0] != 3 {
		t.Errorf("gameweeks = %v", body.Gameweeks)
	}
	if len(body.Predictions[3]) != 1 || body.Predictions[3][0].PlayerID != 328 {
		t.Errorf("predictions = %v", body.Predictions)
	}
	if body.Predictions[3][0].Factors["home"] <= 1 {
		t.Errorf("Liverpool are at home in gameweek 3: factors %v", body.Predictions[3][0].Factors)
	}

	for _, target := range []string{"/api/predictions?count=0", "/api/predictions?count=11", "/api/predictions?players=a,b", "/api/predictions?from=x", "/api/predictions?from=39", "/api/predictions?from=9223372036854775807&count=10"} {
		if rec := do(t, h, httptest.NewRequest(http.MethodGet, target, nil)); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleUpcomingPredictions_StopsAtSeasonEnd(t *testing.T) {
	h := newRouter(Config{Reference: newReference(t)})

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/predictions?from=37&count=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := decode[PredictionResponse](t, rec)
	if len(body.Gameweeks) != 2 || body.Gameweeks[0] != 37 || body.Gameweeks[1] != 38 {
		t.Errorf("gameweeks = %v, want [37 38]", body.Gameweeks)
	}
}

func TestHandlePredictions(t *testing.T) {
	h := newRouter(Config{})
	reqBody := PredictionRequest{
		Players: []prediction.PlayerStats{
			{ID: 1, TeamID: 10, Form: 6, TotalPoints: 40, Minutes: 900, Starts: 10},
		},
		Schedule: prediction.Schedule{
			Gameweeks: []int{5, 6},
			ByTeam: map[int][]prediction.PlayerFixture{
				10: {
					{Gameweek: 5, OpponentTeamID: 20, IsHome: true},
					{Gameweek: 6, OpponentTeamID: 20, IsHome: false},
					{Gameweek: 6, OpponentTeamID: 30, IsHome: true},
				},
			},
		},
		Strengths: prediction.Strengths{10: {Overall: 3}, 20: {Overall: 3}, 30: {Overall: 2}},
	}
	raw, _ := json.Marshal(reqBody)

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(string(raw))))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := decode[PredictionResponse](t, rec)

	gw5 := body.Predictions[5][0]
	gw6 := body.Predictions[6][0]
	if gw6.Factors["fixtures"] != 2 {
		t.Errorf("gameweek 6 should be a double: factors %v", gw6.Factors)
	}
	if gw6.PredictedPoints <= gw5.PredictedPoints {
		t.Errorf("double gameweek %v should beat single %v", gw6.PredictedPoints, gw5.PredictedPoints)
	}
	if math.Abs(body.Totals[1]-(gw5.PredictedPoints+gw6.PredictedPoints)) > 1e-9 {
		t.Errorf("totals = %v", body.Totals)
	}
}

func TestHandlePredictions_BadRequest(t *testing.T) {
	h := newRouter(Config{})
	tooManyPlayers, _ := json.Marshal(PredictionRequest{
		Players:  make([]prediction.PlayerStats, maxPredictionPlayers+1),
		Schedule: prediction.Schedule{Gameweeks: []int{1}},
	})
	payloads := []string{
		`nope`,
		`{"players":[],"schedule":{"gameweeks":[]}}`,
		`{"players":[],"schedule":{"gameweeks":[1,2,3,4,5,6,7,8,9,10,11]}}`,
		`{"players":[],"schedule":{"gameweeks":[0]}}`,
		`{"players":[],"schedule":{"gameweeks":[39]}}`,
		string(tooManyPlayers),
	}
	for _, payload := range payloads {
		rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/predictions", strings.NewReader(payload)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", payload, rec.Code)
		}
	}
}
