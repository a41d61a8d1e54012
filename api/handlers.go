package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/blogroll/aggregator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(svc *aggregator.Service, sessions sessionManager, p pages, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		accountHandler:  newAccountHandler(svc, sessions, p),
		blogHandler:     newBlogHandler(svc, p),
		timelineHandler: newTimelineHandler(svc, p),
		itemHandler:     newItemHandler(svc, p),
		healthHandler:   newHealthHandler(startupTime),
	}
}

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	startupTime time.Time
}

func newHealthHandler(startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		startupTime: startupTime,
	}
}

func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, HealthResponse{
			Status:    "ok",
			StartedAt: h.startupTime.UTC().Format(time.RFC3339),
			Uptime:    time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
