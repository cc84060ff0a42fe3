package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/cyberpress/internal/middleware"
	"github.com/bilgisen/cyberpress/internal/models"
)

// SetupRoutes configures all the routes for the application. Requests that
// change state need the admin key when adminKey is set.
func SetupRoutes(app *fiber.App, h *Handlers, adminKey string) {
	admin := middleware.AdminOnly(adminKey)

	// API group with versioning
	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)
	api.Get("/state", h.GetState)
	api.Get("/sections/:section", h.GetSection)

	api.Post("/refresh", admin, h.RefreshAll)
	api.Post("/refresh/:section", admin, h.RefreshSection)

	saved := api.Group("/saved")
	{
		saved.Get("", h.ListSaved)
		saved.Post("", admin, middleware.ValidateBody[saveRequest](), h.SaveItem)
		saved.Get("/:id", h.GetSaved)
		saved.Delete("/:id", admin, h.RemoveSaved)
		saved.Patch("/:id/read", admin, middleware.ValidateBody[readRequest](), h.MarkRead)
	}

	api.Get("/preferences", h.GetPreferences)
	api.Put("/preferences", admin, middleware.ValidateBody[models.UserPreferences](), h.UpdatePreferences)

	api.Get("/tools/:category", h.ListTools)
	api.Get("/crypto/:id/history", h.GetCryptoHistory)

	api.Get("/schedules", h.ListSchedules)
	api.Post("/schedules/:name/trigger", admin, h.TriggerSchedule)

	api.Get("/storage/stats", h.StorageStats)
	api.Delete("/storage", admin, h.ClearStorage)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
