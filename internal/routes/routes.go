package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sokonihq/sokoni-backend/internal/handlers"
	"github.com/sokonihq/sokoni-backend/internal/middleware"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"github.com/sokonihq/sokoni-backend/internal/services"
)

func Setup(
	app *fiber.App,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	sellerHandler *handlers.SellerHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter limiter: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/request-otp", authHandler.RequestOTP)
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/signin", authHandler.Signin)

	// Auth — protected
	protected := middleware.Protected(authService)
	api.Get("/auth/me", protected, authHandler.Me)
	api.Patch("/auth/profile", protected, authHandler.UpdateProfile)
	api.Post("/auth/signout", protected, authHandler.SignOut)
	api.Delete("/auth/account", protected, authHandler.DeleteAccount)

	// Seller requests — authenticated, phone-verified callers only
	seller := api.Group("/seller-requests", protected, middleware.RequirePhoneVerified())
	seller.Post("/", sellerHandler.Submit)
	seller.Get("/me", sellerHandler.MyRequests)
	seller.Post("/:id/resubmit", sellerHandler.Resubmit)

	// Admin review surface
	admin := api.Group("/admin", protected, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/seller-requests", adminHandler.ListSellerRequests)
	admin.Post("/seller-requests/:id/review", adminHandler.ReviewSellerRequest)
	admin.Patch("/users/:id/role", adminHandler.UpdateUserRole)
}
