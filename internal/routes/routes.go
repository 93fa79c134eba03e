package routes

import (
	"github.com/Arihant25/isitopen/internal/handlers"
	"github.com/Arihant25/isitopen/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	canteenHandler *handlers.CanteenHandler,
	adminHandler *handlers.AdminHandler,
	voteHandler *handlers.VoteHandler,
	analyticsHandler *handlers.AnalyticsHandler,
) {
	pinLimit := middleware.RateLimitByIP(middleware.DefaultPINRateLimit())
	apiLimit := middleware.RateLimitByIP(middleware.DefaultAPIRateLimit())

	router.Route("/api", func(r chi.Router) {
		// Public board routes
		r.Group(func(r chi.Router) {
			r.Use(apiLimit)
			r.Get("/canteens", canteenHandler.List)
			r.Get("/canteens/{id}", canteenHandler.Get)
			r.Get("/votes", voteHandler.Current)
			r.Post("/votes", voteHandler.Submit)
			r.Get("/analytics", analyticsHandler.Summary)
			r.Post("/analytics", analyticsHandler.Track)
		})

		// PIN routes carry the full guardrail composition inside the
		// handlers; the outer limit only stops request floods.
		r.Group(func(r chi.Router) {
			r.Use(pinLimit)
			r.Patch("/canteens/{id}", canteenHandler.UpdateStatus)
			r.Post("/admin/verify", adminHandler.Verify)
			r.Patch("/admin/pin", adminHandler.ChangePIN)
			r.Post("/admin/canteen-pins", adminHandler.ListCanteenPINs)
			r.Patch("/admin/canteen-pin", adminHandler.ChangeCanteenPIN)
			r.Post("/admin/rate-limits", adminHandler.ListRateLimits)
		})
	})
}
