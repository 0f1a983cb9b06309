package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ResetTokenValidity = time.Hour
	resetPurpose       = "password-reset"
	resetSalt          = "participant-password-reset-salt"
)

var ErrInvalidResetToken = errors.New("invalid or expired password reset token")

type resetClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateResetToken signs email into a token valid for ResetTokenValidity from now.
func (h *AuthHandler) GenerateResetToken(email string, now time.Time) (string, error) {
	claims := resetClaims{
		Email:   email,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenValidity)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.resetKey())
}

// VerifyResetToken returns the email bound to token. now is the time the
// expiry is checked against.
func (h *AuthHandler) VerifyResetToken(token string, now time.Time) (string, error) {
	var claims resetClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return h.resetKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidResetToken
	}
	if claims.Purpose != resetPurpose || claims.Email == "" {
		return "", ErrInvalidResetToken
	}
	return claims.Email, nil
}

func (h *AuthHandler) resetKey() []byte {
	return []byte(h.cfg.JWTSecret + resetSalt)
}
