package routes

import (
	"promptmarket/backend/config"
	"promptmarket/backend/controllers"
	"promptmarket/backend/middleware"
	"promptmarket/backend/services"
	"promptmarket/backend/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, cfg *config.Config, svc *services.EngagementService, users store.UserStore, logger *zap.Logger) {
	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg, users)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg, users)
	adminMiddleware := middleware.AdminMiddleware()

	api := app.Group("/api")

	// Ratings routes
	ratingsController := controllers.NewRatingsController(svc, logger)
	templates := api.Group("/templates")
	templates.Get("/ratings", optionalAuth, ratingsController.GetRatingSummaries)
	templates.Get("/:id/ratings", optionalAuth, ratingsController.GetRatingSummary)
	templates.Post("/:id/ratings", authMiddleware, ratingsController.SubmitRating)

	// Upvotes routes
	upvotesController := controllers.NewUpvotesController(svc, logger)
	templates.Get("/:id/upvotes", optionalAuth, upvotesController.GetUpvoteStatus)
	templates.Post("/:id/upvotes/toggle", authMiddleware, upvotesController.ToggleUpvote)

	// Comments routes
	commentsController := controllers.NewCommentsController(svc, logger)
	templates.Get("/:id/comments", commentsController.GetTemplateComments)
	templates.Post("/:id/comments", authMiddleware, commentsController.AddTemplateComment)
	api.Delete("/comments/:id", authMiddleware, commentsController.DeleteComment)

	// Admin routes
	expertsController := controllers.NewExpertsController(svc, logger)
	admin := api.Group("/admin", authMiddleware, adminMiddleware)
	admin.Get("/experts", expertsController.ListExperts)
}
