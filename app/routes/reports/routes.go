package reports

import (
	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/config"
	"tendo-schools/app/database"
	"tendo-schools/app/finance"
	"tendo-schools/app/routes/auth"
)

// SetupReportsRoutes sets up the balance reporting routes.
func SetupReportsRoutes(app *fiber.App) {
	db := config.GetDB()
	agg := finance.NewAggregator(database.NewSQLStore(db))

	api := app.Group("/api/reports")
	api.Use(auth.AuthMiddleware)

	api.Get("/debtors", func(c *fiber.Ctx) error { return GetDebtorsAPI(c, agg) })
	api.Get("/school-summary", func(c *fiber.Ctx) error { return GetSchoolSummaryAPI(c, agg) })
	api.Get("/class-summary", func(c *fiber.Ctx) error { return GetClassSummaryAPI(c, agg) })
	api.Get("/term-comparison", func(c *fiber.Ctx) error { return GetTermComparisonAPI(c, agg) })
	api.Get("/students/:id/statement", func(c *fiber.Ctx) error { return GetStudentStatementAPI(c, agg, db) })
}
