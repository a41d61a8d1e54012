package api

import (
	"github.com/rpupo63/blogroll/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	accountHandler  accountHandler
	blogHandler     blogHandler
	timelineHandler timelineHandler
	itemHandler     itemHandler
	healthHandler   healthHandler
}

// pageData is what every template receives. Pages only read the fields they
// need.
type pageData struct {
	CurrentUser *models.User
	Next        string
	Posts       []models.TimelinePost
	Post        models.PostView
	Comments    []models.CommentView
	Profile     models.ProfileView
	IsOwner     bool
}

func newPageData(session Session) pageData {
	return pageData{CurrentUser: session.User}
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	StartedAt string `json:"startedAt"`
	Uptime    string `json:"uptime"`
}
