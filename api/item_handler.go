package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type itemHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  *aggregator.Service
}

func newItemHandler(comments *aggregator.Service, p pages) itemHandler {
	logger := log.With().Str("handlerName", "itemHandler").Logger()

	return itemHandler{
		responder: NewResponder(logger).withPages(p),
		logger:    logger,
		comments:  comments,
	}
}

func (h itemHandler) getItem() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		h.renderThread(w, r, session, chi.URLParam(r, "slug"))
	}
}

// postItem adds a comment and shows the thread again. Blank comments are
// ignored.
func (h itemHandler) postItem() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		slug := chi.URLParam(r, "slug")

		var form commentForm
		if err := decodeForm(w, r, &form); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.comments.AddComment(r.Context(), slug, session.UserID(), form.Content); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.renderThread(w, r, session, slug)
	}
}

func (h itemHandler) renderThread(w http.ResponseWriter, r *http.Request, session Session, slug string) {
	post, comments, err := h.comments.PostWithComments(r.Context(), slug)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	data := newPageData(session)
	data.Post = post
	data.Comments = comments
	h.responder.Render(w, http.StatusOK, "item.html", data)
}
