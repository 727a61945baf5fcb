package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trustedgroup/enrollment-service/internal/services"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

type contextKey string

// ContextKeySessionHandle carries the authenticated handle through the
// request context.
const ContextKeySessionHandle = contextKey("sessionHandle")

// SessionHandleFromContext returns the handle the middleware stored,
// or "" when the request carried no valid session.
func SessionHandleFromContext(ctx context.Context) string {
	handle, _ := ctx.Value(ContextKeySessionHandle).(string)
	return handle
}

// AdminAuthMiddleware validates the session cookie and ensures the
// caller passes the admin policy. Intended for invite/uninvite/remove.
func AdminAuthMiddleware(sessions services.SessionService, policy services.AdminPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(r, sessions)
			if errors.Is(err, jwt.ErrTokenExpired) {
				// Distinct code so clients know to log in again rather
				// than treat it as a permissions problem.
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeSessionExpired, "Your session has expired", nil,
				)
				return
			}

			if !policy.Allows(session) {
				if session == nil {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Sorry, you're not an admin", nil,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusForbidden, utils.ErrCodeUnauthorized, "Sorry, you're not an admin", nil,
				)
				return
			}

			ctx := r.Context()
			if session != nil {
				ctx = context.WithValue(ctx, ContextKeySessionHandle, session.Handle)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromRequest returns the validated session, or (nil, err) with
// jwt.ErrTokenExpired when the cookie carried an expired-but-otherwise
// valid credential. Any other rejection reads as no session at all.
func sessionFromRequest(r *http.Request, sessions services.SessionService) (*services.Session, error) {
	cookie, err := r.Cookie(utils.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	session, err := sessions.Validate(cookie.Value)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			utils.Logger.Debug("Rejecting expired session cookie")
			return nil, err
		}
		utils.Logger.WithError(err).Debug("Rejecting invalid session cookie")
		return nil, nil
	}
	return session, nil
}
