package api

import (
	"net/http"

	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type timelineHandler struct {
	responder Responder
	logger    zerolog.Logger
	timeline  *aggregator.Service
}

func newTimelineHandler(timeline *aggregator.Service, p pages) timelineHandler {
	logger := log.With().Str("handlerName", "timelineHandler").Logger()

	return timelineHandler{
		responder: NewResponder(logger).withPages(p),
		logger:    logger,
		timeline:  timeline,
	}
}

// getNew shows the newest posts with their comments.
func (h timelineHandler) getNew() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, session Session) {
		posts, err := h.timeline.ListRecent(r.Context(), h.timeline.TimelineLimit())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		data := newPageData(session)
		data.Posts = posts
		h.responder.Render(w, http.StatusOK, "new.html", data)
	}
}

// getFeed serves every post as Atom.
func (h timelineHandler) getFeed() sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ Session) {
		feed, err := h.timeline.ListFeed(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc, err := services.RenderAtom(feed)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("render atom feed", err))
			return
		}
		h.responder.WriteAtom(w, doc)
	}
}
