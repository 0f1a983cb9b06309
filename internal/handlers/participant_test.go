package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdg-garage/conference-api/internal/auth"
	"github.com/gdg-garage/conference-api/internal/models"
)

func registerRequest(email, password, confirm string) *RegisterRequest {
	req := &RegisterRequest{}
	req.Body.FirstName = " Anna "
	req.Body.LastName = "Schmidt"
	req.Body.Email = email
	req.Body.Password = password
	req.Body.PasswordConfirm = confirm
	req.Body.City = "Leipzig"
	return req
}

func TestHandleRegister(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	authHandler := auth.NewAuthHandler(cfg, db)
	handler := NewParticipantHandler(db, cfg, authHandler)

	resp, err := handler.HandleRegister(context.Background(), registerRequest("Anna@Example.org", testPassword, testPassword))
	require.NoError(t, err)

	assert.Equal(t, "anna@example.org", resp.Body.Email)
	assert.Equal(t, "Anna", resp.Body.FirstName)
	assert.Equal(t, 1, resp.Body.FamilyMembers)
	assert.False(t, resp.Body.IsStaff)

	sess := sessionOf(t, authHandler, resp.SetCookie)
	assert.Equal(t, resp.Body.ID, sess.ParticipantID)
	assert.Zero(t, sess.DraftID)

	var stored models.Participant
	require.NoError(t, db.First(&stored, resp.Body.ID).Error)
	assert.NotEqual(t, testPassword, stored.PasswordHash)
	assert.True(t, stored.CheckPassword(testPassword))
	assert.Equal(t, "Leipzig", stored.City)
}

func TestHandleRegister_StaffEmail(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))

	resp, err := handler.HandleRegister(context.Background(), registerRequest("staff@example.org", testPassword, testPassword))
	require.NoError(t, err)
	assert.True(t, resp.Body.IsStaff)
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))

	_, err := handler.HandleRegister(context.Background(), registerRequest("anna@example.org", testPassword, testPassword))
	require.NoError(t, err)

	_, err = handler.HandleRegister(context.Background(), registerRequest("ANNA@example.org", testPassword, testPassword))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
	assert.Equal(t, []string{"body.email"}, errorLocations(t, err))

	var count int64
	db.Model(&models.Participant{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestHandleRegister_InvalidPassword(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))

	tests := []struct {
		name     string
		password string
		confirm  string
		location string
	}{
		{"TooShort", "ab1", "ab1", "body.password"},
		{"NoDigit", "abcdefghij", "abcdefghij", "body.password"},
		{"Mismatch", testPassword, "geheim124", "body.password_confirm"},
		{"TooLongForBcrypt", strings.Repeat("a1", 40), strings.Repeat("a1", 40), "body.password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.HandleRegister(context.Background(), registerRequest("pw@example.org", tt.password, tt.confirm))
			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
			assert.Equal(t, []string{tt.location}, errorLocations(t, err))
		})
	}

	var count int64
	db.Model(&models.Participant{}).Count(&count)
	assert.Zero(t, count)
}

func TestHandleLogin(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	authHandler := auth.NewAuthHandler(cfg, db)
	handler := NewParticipantHandler(db, cfg, authHandler)
	p := createParticipant(t, db, "login@example.org", false)

	login := func(email, password string) (*SessionResponse, error) {
		req := &LoginRequest{}
		req.Body.Email = email
		req.Body.Password = password
		return handler.HandleLogin(context.Background(), req)
	}

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := login("login@example.org", "wrong-password1")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := login("nobody@example.org", testPassword)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("Success", func(t *testing.T) {
		resp, err := login(" Login@Example.org ", testPassword)
		require.NoError(t, err)
		assert.Equal(t, p.ID, sessionOf(t, authHandler, resp.SetCookie).ParticipantID)
	})
}

func TestHandleLogin_PromotesStaff(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))
	p := createParticipant(t, db, "staff@example.org", false)

	req := &LoginRequest{}
	req.Body.Email = "staff@example.org"
	req.Body.Password = testPassword
	resp, err := handler.HandleLogin(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Body.IsStaff)

	var stored models.Participant
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.True(t, stored.IsStaff)
}

func TestHandleLogout(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))

	resp, err := handler.HandleLogout(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, auth.CookieName, resp.SetCookie.Name)
	assert.Empty(t, resp.SetCookie.Value)
	assert.Negative(t, resp.SetCookie.MaxAge)
}

func TestHandleUpdateMe(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))
	p := createParticipant(t, db, "me@example.org", false)

	req := &UpdateProfileRequest{}
	req.Body.FirstName = "Maria"
	req.Body.LastName = "Muster"
	req.Body.Phone = " 0341 123 "
	req.Body.FamilyMembers = 0

	resp, err := handler.HandleUpdateMe(sessionContext(p.ID, 0), req)
	require.NoError(t, err)
	assert.Equal(t, "Maria", resp.Body.FirstName)
	assert.Equal(t, "0341 123", resp.Body.Phone)
	assert.Equal(t, 1, resp.Body.FamilyMembers)

	var stored models.Participant
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, "Maria Muster", stored.FullName())
	assert.Equal(t, "me@example.org", stored.Email)
	assert.True(t, stored.CheckPassword(testPassword), "profile update must not touch the password")
}

func TestHandleMe_Session(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := NewParticipantHandler(db, cfg, auth.NewAuthHandler(cfg, db))
	p := createParticipant(t, db, "me@example.org", false)

	resp, err := handler.HandleMe(sessionContext(p.ID, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, p.ID, resp.Body.ID)

	t.Run("NoSession", func(t *testing.T) {
		_, err := handler.HandleMe(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusSeeOther, statusOf(t, err))
	})

	t.Run("DeletedParticipant", func(t *testing.T) {
		_, err := handler.HandleMe(sessionContext(p.ID+100, 0), nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusSeeOther, statusOf(t, err))
	})
}
