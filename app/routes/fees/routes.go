package fees

import (
	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/config"
	"tendo-schools/app/routes/auth"
)

// SetupFeesRoutes sets up fee rule and class level configuration routes.
func SetupFeesRoutes(app *fiber.App) {
	db := config.GetDB()

	rules := app.Group("/api/fee-rules")
	rules.Use(auth.AuthMiddleware)
	rules.Get("/", func(c *fiber.Ctx) error { return GetFeeRulesAPI(c, db) })
	rules.Post("/", func(c *fiber.Ctx) error { return CreateFeeRuleAPI(c, db) })
	rules.Put("/:id", func(c *fiber.Ctx) error { return UpdateFeeRuleAPI(c, db) })
	rules.Delete("/:id", func(c *fiber.Ctx) error { return DeleteFeeRuleAPI(c, db) })

	levels := app.Group("/api/class-levels")
	levels.Use(auth.AuthMiddleware)
	levels.Get("/", func(c *fiber.Ctx) error { return GetClassLevelsAPI(c, db) })
	levels.Post("/", func(c *fiber.Ctx) error { return CreateClassLevelAPI(c, db) })
	levels.Put("/:id", func(c *fiber.Ctx) error { return UpdateClassLevelAPI(c, db) })
	levels.Delete("/:id", func(c *fiber.Ctx) error { return DeleteClassLevelAPI(c, db) })
}
