package rbac

import (
	"log/slog"
	"net/http"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/shared"
)

// Middleware wires the authorization gate for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
	// OnDenied, when set, is invoked with "unauthenticated" or "forbidden"
	// for every rejected request.
	OnDenied func(reason string)
}

// RequireRoles permits the request only when the session principal's role is
// in the allow-list. A missing or anonymous session yields 401; an
// authenticated principal outside the allow-list yields 403. The two denials
// log as distinct messages for audit purposes.
func (m Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" || sess.Role() == "" {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied: no session", slog.String("path", r.URL.Path))
				}
				if m.OnDenied != nil {
					m.OnDenied("unauthenticated")
				}
				httpx.Error(w, http.StatusUnauthorized, "no session")
				return
			}
			if _, ok := allowed[sess.Role()]; !ok {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied: role not permitted",
						slog.String("path", r.URL.Path),
						slog.String("role", sess.Role()))
				}
				if m.OnDenied != nil {
					m.OnDenied("forbidden")
				}
				httpx.Error(w, http.StatusForbidden, "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
