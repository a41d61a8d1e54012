package api

import (
	"context"
)

type keyType string

const sessionKey keyType = "session"

// ctxWithSession adds the resolved session to the context
func ctxWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ctxGetSession retrieves the session, if the request has one
func ctxGetSession(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey).(Session)
	if !ok || session.User == nil {
		return Session{}, false
	}
	return session, true
}
