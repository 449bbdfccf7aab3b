package api

import (
	"herba-guide/internal/api/handlers"
	"herba-guide/pkg/auth"
	"herba-guide/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	predictHandler *handlers.PredictHandler,
	historyHandler *handlers.HistoryHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Health check
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API WORKING")
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	api := app.Group("/api/v1")
	api.Post("/predict_image_anon", predictHandler.PredictImageAnon)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(jwtManager, appLogger))
	protected.Post("/predict_image", predictHandler.PredictImage)
	protected.Get("/gethistory", historyHandler.GetHistory)
	protected.Get("/search_history", historyHandler.SearchHistory)

	return app
}
