package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes wires every page. All pages except log in, account creation
// and the health check need a session.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Get("/healthz", handlers.healthHandler.getHealth())

	r.Group(func(r chi.Router) {
		r.Use(auth.loadSession)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusFound)
		})

		r.Get("/log_in", handlers.accountHandler.getLogIn())
		r.Post("/log_in", handlers.accountHandler.postLogIn())
		r.Get("/create_account", handlers.accountHandler.getCreateAccount())
		r.Post("/create_account", handlers.accountHandler.postCreateAccount())
		r.Post("/log_out", handlers.accountHandler.postLogOut())

		r.Get("/add_blog", auth.requirePage(handlers.blogHandler.getAddBlog()))
		r.Post("/add_blog", auth.requirePage(handlers.blogHandler.postAddBlog()))
		r.Get("/profile/{userID}", auth.requirePage(handlers.blogHandler.getProfile()))
		r.Post("/profile/{userID}", auth.requirePage(handlers.blogHandler.postProfile()))

		r.Get("/new", auth.requirePage(handlers.timelineHandler.getNew()))
		r.Get("/feed", auth.requireStatus(handlers.timelineHandler.getFeed()))

		r.Get("/item/{slug}", auth.requirePage(handlers.itemHandler.getItem()))
		r.Post("/item/{slug}", auth.requirePage(handlers.itemHandler.postItem()))
	})
}
