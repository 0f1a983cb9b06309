package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config

	// Discord REST endpoints read after the OAuth exchange.
	discordUserURL   string
	discordGuildsURL string
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:               db,
		cfg:              cfg,
		discordUserURL:   DiscordUserAPI,
		discordGuildsURL: DiscordUserGuildsAPI,
	}
}

func (h *AuthHandler) LoginPath() string {
	return h.cfg.LoginPath
}

func (h *AuthHandler) GenerateToken(sess Session) (string, error) {
	claims := jwt.MapClaims{
		"participant_id": sess.ParticipantID,
		"draft_id":       sess.DraftID,
		"exp":            time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken verifies a session token and returns the session with its expiry.
func (h *AuthHandler) ParseToken(tokenString string) (*Session, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, time.Time{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, time.Time{}, errors.New("invalid token claims")
	}
	participantID, ok := claims["participant_id"].(float64)
	if !ok || participantID <= 0 {
		return nil, time.Time{}, errors.New("invalid token claims")
	}
	draftID, _ := claims["draft_id"].(float64)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, time.Time{}, errors.New("token without expiry")
	}

	return &Session{ParticipantID: uint(participantID), DraftID: uint(draftID)}, exp.Time, nil
}

// SessionCookie encodes sess into a fresh auth cookie.
func (h *AuthHandler) SessionCookie(sess Session) (http.Cookie, error) {
	token, err := h.GenerateToken(sess)
	if err != nil {
		return http.Cookie{}, err
	}
	return http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie expires the auth cookie in the browser.
func ClearCookie() http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	}
}
