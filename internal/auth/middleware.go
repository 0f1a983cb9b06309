package auth

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// RequireSession is a huma operation middleware. It resolves the session from
// the auth cookie and sends anonymous callers to the login page.
func (h *AuthHandler) RequireSession(api huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cookie, err := huma.ReadCookie(ctx, CookieName)
		if err != nil {
			h.redirectToLogin(api, ctx)
			return
		}

		sess, exp, err := h.ParseToken(cookie.Value)
		if err != nil {
			h.redirectToLogin(api, ctx)
			return
		}

		// Sliding session: refresh token if it's more than halfway through its duration
		if time.Until(exp) < TokenDuration/2 {
			if refreshed, err := h.SessionCookie(*sess); err == nil {
				ctx.AppendHeader("Set-Cookie", refreshed.String())
			}
		}

		next(huma.WithValue(ctx, sessionKey, sess))
	}
}

func (h *AuthHandler) redirectToLogin(api huma.API, ctx huma.Context) {
	ctx.SetHeader("Location", h.cfg.LoginPath)
	huma.WriteErr(api, ctx, http.StatusSeeOther, "Login required")
}
