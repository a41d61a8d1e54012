package api

import (
	"net/http"
	"strings"

	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type accountHandler struct {
	responder Responder
	logger    zerolog.Logger
	accounts  *aggregator.Service
	sessions  sessionManager
}

func newAccountHandler(accounts *aggregator.Service, sessions sessionManager, p pages) accountHandler {
	logger := log.With().Str("handlerName", "accountHandler").Logger()

	return accountHandler{
		responder: NewResponder(logger).withPages(p),
		logger:    logger,
		accounts:  accounts,
		sessions:  sessions,
	}
}

// localPath accepts only same-site paths as redirect targets.
func localPath(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

func (h accountHandler) getLogIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{Next: localPath(r.URL.Query().Get("next"), "")}
		if session, ok := ctxGetSession(r.Context()); ok {
			data.CurrentUser = session.User
		}
		h.responder.Render(w, http.StatusOK, "log_in.html", data)
	}
}

// postLogIn checks the credentials and starts a session. Failures are
// answered with a plain message and no cookie.
func (h accountHandler) postLogIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form credentialsForm
		if err := decodeForm(w, r, &form); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.Login(r.Context(), form.Email, form.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.sessions.issue(w, user.ID); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issue session", err))
			return
		}
		http.Redirect(w, r, localPath(form.Next, "/new"), http.StatusFound)
	}
}

func (h accountHandler) getCreateAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data pageData
		if session, ok := ctxGetSession(r.Context()); ok {
			data.CurrentUser = session.User
		}
		h.responder.Render(w, http.StatusOK, "create_account.html", data)
	}
}

// postCreateAccount registers the user and sends them on to add a blog.
func (h accountHandler) postCreateAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form credentialsForm
		if err := decodeForm(w, r, &form); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.Register(r.Context(), form.Email, form.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.sessions.issue(w, user.ID); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issue session", err))
			return
		}
		http.Redirect(w, r, "/add_blog", http.StatusFound)
	}
}

func (h accountHandler) postLogOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.clear(w)
		http.Redirect(w, r, "/log_in", http.StatusFound)
	}
}
