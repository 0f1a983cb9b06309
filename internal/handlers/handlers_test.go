package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/database"
	"github.com/gdg-garage/conference-api/internal/models"
)

const testPassword = "geheim123"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		FrontendURL:        "http://frontend.test/",
		LoginPath:          "/login",
		StaffEmails:        []string{"staff@example.org"},
		ResetRatePerMinute: 60,
		ResetRateBurst:     10,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err, "failed to open database")
	return db
}

func createParticipant(t *testing.T, db *gorm.DB, email string, staff bool) models.Participant {
	t.Helper()
	p := models.Participant{FirstName: "Test", LastName: "User", Email: email, FamilyMembers: 1, IsStaff: staff}
	require.NoError(t, p.SetPassword(testPassword))
	require.NoError(t, db.Create(&p).Error)
	return p
}

func sessionContext(participantID, draftID uint) context.Context {
	return auth.WithSession(context.Background(), &auth.Session{ParticipantID: participantID, DraftID: draftID})
}

// statusOf returns the HTTP status carried by a handler error.
func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected a status error, got %v", err)
	return se.GetStatus()
}

func errorLocations(t *testing.T, err error) []string {
	t.Helper()
	var model *huma.ErrorModel
	require.True(t, errors.As(err, &model), "expected an error model, got %v", err)
	var locations []string
	for _, d := range model.Errors {
		locations = append(locations, d.Location)
	}
	return locations
}

func sessionOf(t *testing.T, authHandler *auth.AuthHandler, cookie http.Cookie) *auth.Session {
	t.Helper()
	require.Equal(t, auth.CookieName, cookie.Name)
	sess, _, err := authHandler.ParseToken(cookie.Value)
	require.NoError(t, err)
	return sess
}

type sentMail struct {
	to   string
	link string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, link: link})
	return nil
}

func (m *recordingMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type recordingNotifier struct {
	mu            sync.Mutex
	registrations []uint
	err           error
}

func (n *recordingNotifier) NotifyRegistration(_ models.Participant, registration models.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registrations = append(n.registrations, registration.ID)
	return n.err
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.registrations)
}
