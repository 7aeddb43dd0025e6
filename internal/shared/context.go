package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session for downstream handlers. The session
// middleware installs it once per request; the authorization gate and the
// profile endpoints read the principal back out of it.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session, or nil when the request never
// passed through the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
