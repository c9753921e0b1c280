package routes

import (
	"github.com/go-chi/chi/v5"

	"Apiverse/internal/api/handlers/listing"
	"Apiverse/internal/api/middleware"
	"Apiverse/internal/core/listings"
	"Apiverse/internal/core/upvotes"
	"Apiverse/internal/metrics"
)

// RegisterListingRoutes registers the listing read endpoints and the
// like/unlike write path on the router
func RegisterListingRoutes(
	r chi.Router,
	listingService listings.Service,
	upvoteService upvotes.Service,
	authMiddleware *middleware.IdentityAuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
) {
	listHandler := listing.NewListHandler(listingService, m)
	toggleHandler := listing.NewToggleHandler(upvoteService, m)

	// Query endpoints (GET) - public
	r.Get("/listings", listHandler.HandleList)
	r.Get("/listings/{id}", listHandler.HandleGet)

	// Procedure endpoints (POST) - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		if rateLimiter != nil {
			r.Use(rateLimiter.Middleware)
		}
		r.Post("/listings/{id}/like", toggleHandler.HandleLike)
		r.Post("/listings/{id}/unlike", toggleHandler.HandleUnlike)
	})
}
