package students

import (
	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/config"
	"tendo-schools/app/routes/auth"
)

// SetupStudentsRoutes sets up student management routes.
func SetupStudentsRoutes(app *fiber.App) {
	db := config.GetDB()

	api := app.Group("/api/students")
	api.Use(auth.AuthMiddleware)

	api.Get("/", func(c *fiber.Ctx) error { return GetStudentsAPI(c, db) })
	api.Get("/:id", func(c *fiber.Ctx) error { return GetStudentAPI(c, db) })
	api.Post("/", func(c *fiber.Ctx) error { return CreateStudentAPI(c, db) })
	api.Post("/bulk", func(c *fiber.Ctx) error { return BulkImportStudentsAPI(c, db) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateStudentAPI(c, db) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteStudentAPI(c, db) })
}
