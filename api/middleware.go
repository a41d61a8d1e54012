package api

import (
	"errors"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authMiddleware struct {
	responder Responder
	logger    zerolog.Logger
	sessions  sessionManager
	accounts  *aggregator.Service
}

func newAuthMiddleware(sessions sessionManager, accounts *aggregator.Service) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		logger:    logger,
		sessions:  sessions,
		accounts:  accounts,
	}
}

// loadSession resolves the session cookie into a Session on the request
// context. Invalid cookies and cookies of missing or disabled users are
// cleared; the request then continues without a session.
func (m authMiddleware) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.sessions.read(r)
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) {
				m.logger.Debug().Err(err).Msg("Discarding invalid session cookie")
				m.sessions.clear(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.accounts.User(r.Context(), userID)
		switch {
		case errs.IsNotFound(err):
			m.sessions.clear(w)
		case err != nil:
			m.logger.Error().Err(err).Int64("userId", userID).Msg("Could not load session user")
		case !user.IsActive:
			m.sessions.clear(w)
		default:
			r = r.WithContext(ctxWithSession(r.Context(), Session{User: user}))
		}
		next.ServeHTTP(w, r)
	})
}

// requirePage sends visitors without a session to the log in page.
func (m authMiddleware) requirePage(h sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := ctxGetSession(r.Context())
		if !ok {
			target := "/log_in?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h(w, r, session)
	}
}

// requireStatus answers 401 to requests without a session. Used where a
// redirect makes no sense, e.g. for feed readers.
func (m authMiddleware) requireStatus(h sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := ctxGetSession(r.Context())
		if !ok {
			m.responder.WriteError(w, errs.Unauthorized)
			return
		}
		h(w, r, session)
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.Header().Set("Content-Type", "text/plain; charset=utf-8")
					srw.WriteHeader(http.StatusInternalServerError)
					_, _ = srw.Write([]byte(genericErrorMessage))
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// HTTPLoggingMiddleware logs one line per request, at a level chosen by the
// response status.
func HTTPLoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: 200}

			next.ServeHTTP(srw, r)

			var logEvent *zerolog.Event
			switch {
			case srw.status >= 500:
				logEvent = logger.Error()
			case srw.status >= 400:
				logEvent = logger.Warn()
			default:
				logEvent = logger.Info()
			}

			logEvent.
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", srw.status).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP Request")
		})
	}
}
