package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"survive-sports/handlers"
	"survive-sports/middleware"
	"survive-sports/models"
)

// SetupRoutes wires the HTTP surface. Standings and health are public;
// pick endpoints require an authenticated identity; the choice list
// refresh is for operators only.
func SetupRoutes(router *chi.Mux, mm *handlers.MarchMadnessHandler, jwtSecret []byte) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/api/health", handlers.HealthHandler)

	router.Route("/api/march-madness", func(r chi.Router) {
		r.Get("/results", mm.ResultsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Get("/choices", mm.UserChoicesHandler)
			r.Get("/picks", mm.GetPicksHandler)
			r.Post("/picks", mm.CreateEntryHandler)
			r.Put("/picks/{entryIndex}", mm.SetPickHandler)
			r.Delete("/picks/{entryIndex}", mm.DeleteEntryHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/choices/refresh", mm.RefreshChoicesHandler)
			})
		})
	})
}
