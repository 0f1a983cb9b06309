package auth

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type contextKey string

const sessionKey contextKey = "session"

// Session is the per-request state carried in the auth cookie. DraftID is
// non-zero while a registration wizard is in progress.
type Session struct {
	ParticipantID uint
	DraftID       uint
}

func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session stored by RequireSession. Without
// one the caller is sent to loginPath.
func SessionFromContext(ctx context.Context, loginPath string) (Session, error) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	if !ok || sess == nil || sess.ParticipantID == 0 {
		return Session{}, LoginRedirect(loginPath)
	}
	return *sess, nil
}

// LoginRedirect answers with 303 See Other pointing at the login page.
func LoginRedirect(loginPath string) error {
	return huma.ErrorWithHeaders(
		huma.NewError(http.StatusSeeOther, "Login required"),
		http.Header{"Location": {loginPath}},
	)
}
