package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	blogs     *aggregator.Service
}

func newBlogHandler(blogs *aggregator.Service, p pages) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger).withPages(p),
		logger:    logger,
		blogs:     blogs,
	}
}

func (h blogHandler) getAddBlog() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		h.responder.Render(w, http.StatusOK, "add_blog.html", newPageData(session))
	}
}

// postAddBlog registers the feed, imports its posts and shows the timeline.
func (h blogHandler) postAddBlog() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		var form addBlogForm
		if err := decodeForm(w, r, &form); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.blogs.RegisterBlog(r.Context(), session.UserID(), form.FeedURL); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		http.Redirect(w, r, "/new", http.StatusFound)
	}
}

func profileUserID(r *http.Request) (int64, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		return 0, errs.NewNotFoundError("user")
	}
	return userID, nil
}

func (h blogHandler) getProfile() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		userID, err := profileUserID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		view, err := h.blogs.Profile(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		data := newPageData(session)
		data.Profile = view
		data.IsOwner = session.UserID() == userID
		h.responder.Render(w, http.StatusOK, "profile.html", data)
	}
}

// postProfile lets the owner refresh their avatar and social handles.
func (h blogHandler) postProfile() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		userID, err := profileUserID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var form profileForm
		if err := decodeForm(w, r, &form); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		view, err := h.blogs.UpdateProfile(r.Context(), session.UserID(), userID, aggregator.ProfileUpdate{
			AvatarURL: form.AvatarURL,
			Github:    form.Github,
			Twitter:   form.Twitter,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		data := newPageData(session)
		data.Profile = view
		data.IsOwner = true
		h.responder.Render(w, http.StatusOK, "profile.html", data)
	}
}
