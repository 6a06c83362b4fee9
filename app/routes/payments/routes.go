package payments

import (
	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/config"
	"tendo-schools/app/database"
	"tendo-schools/app/finance"
	"tendo-schools/app/routes/auth"
)

// SetupPaymentsRoutes sets up the payment and ledger routes. The engine is
// created once so its per-student locks cover every request.
func SetupPaymentsRoutes(app *fiber.App) {
	db := config.GetDB()
	engine := finance.NewEngine(database.NewSQLStore(db))

	api := app.Group("/api/payments")
	api.Use(auth.AuthMiddleware)

	api.Post("/", func(c *fiber.Ctx) error {
		return RecordPaymentAPI(c, engine)
	})
	api.Get("/transactions", func(c *fiber.Ctx) error {
		return GetTransactionsAPI(c, db)
	})
	api.Get("/credits", func(c *fiber.Ctx) error {
		return GetCreditsAPI(c, db)
	})
}
