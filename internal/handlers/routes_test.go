package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/dashboard"
	"github.com/gdg-garage/conference-api/internal/models"
	"github.com/gdg-garage/conference-api/internal/wizard"
)

type testServer struct {
	t       *testing.T
	router  *chi.Mux
	db      *gorm.DB
	mailer  *recordingMailer
	notices *recordingNotifier
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := setupTestDB(t)
	cfg := testConfig()
	mailer := &recordingMailer{}
	notices := &recordingNotifier{}

	authHandler := auth.NewAuthHandler(cfg, db)
	r := chi.NewRouter()
	RegisterRoutes(r, cfg, Handlers{
		Auth:          authHandler,
		Participants:  NewParticipantHandler(db, cfg, authHandler),
		PasswordReset: NewPasswordResetHandler(db, cfg, authHandler, mailer),
		Wizard:        NewWizardHandler(db, wizard.NewService(db), notices, authHandler),
		Dashboard:     NewDashboardHandler(db, authHandler),
	})
	return &testServer{t: t, router: r, db: db, mailer: mailer, notices: notices}
}

// client keeps the latest auth cookie between requests like a browser.
type client struct {
	s      *testServer
	cookie *http.Cookie
}

func (s *testServer) client() *client {
	return &client{s: s}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.s.router.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			if cookie.Value == "" {
				c.cookie = nil
			} else {
				c.cookie = cookie
			}
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (c *client) register(email string) ParticipantView {
	c.s.t.Helper()
	rec := c.do(http.MethodPost, "/auth/register", map[string]any{
		"first_name":       "Anna",
		"last_name":        "Schmidt",
		"email":            email,
		"password":         testPassword,
		"password_confirm": testPassword,
	})
	require.Equal(c.s.t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(c.s.t, c.cookie)
	return decode[ParticipantView](c.s.t, rec)
}

func TestRoutes_Health(t *testing.T) {
	s := setupServer(t)
	c := s.client()

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil).Code)

	metrics := c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "conference_registrations_finalized_total")
}

func TestRoutes_ProtectedRedirectsToLogin(t *testing.T) {
	s := setupServer(t)
	c := s.client()

	for _, path := range []string{"/me", "/registrations/draft", "/registrations", "/dashboard"} {
		rec := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestRoutes_RegisterDuplicateEmail(t *testing.T) {
	s := setupServer(t)
	s.client().register("anna@example.org")

	rec := s.client().do(http.MethodPost, "/auth/register", map[string]any{
		"first_name":       "Anna",
		"last_name":        "Zwei",
		"email":            "Anna@Example.org",
		"password":         testPassword,
		"password_confirm": testPassword,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "body.email")

	var count int64
	s.db.Model(&models.Participant{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRoutes_LoginLogout(t *testing.T) {
	s := setupServer(t)
	s.client().register("login@example.org")

	c := s.client()
	rec := c.do(http.MethodPost, "/auth/login", map[string]any{"email": "login@example.org", "password": "falsch123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/auth/login", map[string]any{"email": "login@example.org", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/me", nil).Code)

	rec = c.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, c.cookie)
	assert.Equal(t, http.StatusSeeOther, c.do(http.MethodGet, "/me", nil).Code)
}

func TestRoutes_RegistrationFlowAndDashboard(t *testing.T) {
	s := setupServer(t)

	family := s.client()
	family.register("family@example.org")

	rec := family.do(http.MethodPost, "/registrations/draft", map[string]any{"adults": 1, "children": 1, "needs_transport": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = family.do(http.MethodPost, "/registrations/draft/adults", map[string]any{
		"name":           "Anna",
		"age":            34,
		"arrival_date":   "2025-07-05",
		"departure_date": "2025-07-07",
		"services":       []string{"guitar", "chairs"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = family.do(http.MethodPost, "/registrations/draft/children", map[string]any{
		"name":            "Max",
		"age":             12,
		"arrival_date":    "2025-07-05",
		"departure_date":  "2025-07-07",
		"food_preference": "vegetarian",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = family.do(http.MethodPost, "/registrations/draft/finalize", map[string]any{"privacy_accepted": false})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = family.do(http.MethodPost, "/registrations/draft/finalize", map[string]any{"privacy_accepted": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, s.notices.calls())

	// The draft is gone from the session once finalized.
	assert.Equal(t, http.StatusNotFound, family.do(http.MethodGet, "/registrations/draft", nil).Code)

	// A second, unfinished draft does not show up on the dashboard.
	other := s.client()
	other.register("other@example.org")
	require.Equal(t, http.StatusOK, other.do(http.MethodPost, "/registrations/draft", map[string]any{}).Code)
	require.Equal(t, http.StatusCreated, other.do(http.MethodPost, "/registrations/draft/adults", map[string]any{
		"name":           "Draft",
		"age":            50,
		"arrival_date":   "2025-07-01",
		"departure_date": "2025-07-10",
	}).Code)

	assert.Equal(t, http.StatusForbidden, family.do(http.MethodGet, "/dashboard", nil).Code)

	staff := s.client()
	staff.register("staff@example.org")
	rec = staff.do(http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[dashboard.Report](t, rec)
	assert.Equal(t, 3, report.TotalParticipants)
	assert.Equal(t, 1, report.TotalAdults)
	assert.Equal(t, 1, report.TotalChildren)
	assert.Equal(t, 1, report.NeedsTransport)
	require.Len(t, report.FeeGroups, 3)
	assert.Equal(t, 3.6, report.FeeGroups[0].Fee)
	assert.Equal(t, 2.0, report.FeeGroups[1].Fee)
	assert.Equal(t, 5.6, report.TotalFee)
	assert.Equal(t, map[string]int{"guitar": 1}, report.Instruments)
	assert.Equal(t, map[string]int{"chairs": 1}, report.Services)
	assert.Equal(t, map[string]int{"normal": 1, "vegetarian": 1}, report.Food)
}

func TestRoutes_PasswordReset(t *testing.T) {
	s := setupServer(t)
	s.client().register("reset@example.org")

	c := s.client()
	rec := c.do(http.MethodPost, "/auth/password-reset", map[string]any{"email": "reset@example.org"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	sent := s.mailer.messages()
	require.Len(t, sent, 1)
	token := tokenFromLink(t, sent[0].link)

	rec = c.do(http.MethodGet, "/auth/password-reset/confirm/"+token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "reset@example.org")

	rec = c.do(http.MethodPost, "/auth/password-reset/confirm/"+token, map[string]any{
		"password":         "neuesPasswort1",
		"password_confirm": "neuesPasswort1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/auth/login", map[string]any{"email": "reset@example.org", "password": "neuesPasswort1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/auth/password-reset/confirm/"+strings.Repeat("x", 20), nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/password-reset/done", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/auth/password-reset/complete", nil).Code)
}
