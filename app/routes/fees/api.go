package fees

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/database"
	"tendo-schools/app/finance"
	"tendo-schools/app/models"
	"tendo-schools/app/routes/auth"
)

var validate = validator.New()

// FeeRuleRequest is the create/update body for a fee rule.
type FeeRuleRequest struct {
	AcademicYear string  `json:"academic_year" validate:"required"`
	Term         string  `json:"term" validate:"required"`
	FromClass    string  `json:"from_class" validate:"required"`
	ToClass      string  `json:"to_class" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
}

// validateRule checks the parts the struct tags cannot: the year label format
// and that both endpoint classes exist in the school's configured order. The
// resolver itself tolerates unknown classes, so strictness lives here.
func validateRule(db *sql.DB, schoolID string, req *FeeRuleRequest) error {
	if _, err := finance.ParseYear(req.AcademicYear); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !models.ValidTerm(models.Term(req.Term)) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid term: "+req.Term)
	}

	levels, err := database.GetClassLevels(db, schoolID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load class levels")
	}
	order := finance.NewClassOrder(levels)
	if order.Index(req.FromClass) < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown class level: "+req.FromClass)
	}
	if order.Index(req.ToClass) < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown class level: "+req.ToClass)
	}
	return nil
}

func GetFeeRulesAPI(c *fiber.Ctx, db *sql.DB) error {
	rules, err := database.GetFeeRules(db, auth.SchoolID(c), c.Query("academic_year"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fee rules")
	}
	if rules == nil {
		rules = []*models.FeeRule{}
	}
	return c.JSON(fiber.Map{"success": true, "data": rules})
}

func CreateFeeRuleAPI(c *fiber.Ctx, db *sql.DB) error {
	var req FeeRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validateRule(db, auth.SchoolID(c), &req); err != nil {
		return err
	}

	rule := &models.FeeRule{
		SchoolID:     auth.SchoolID(c),
		AcademicYear: req.AcademicYear,
		Term:         models.Term(req.Term),
		FromClass:    req.FromClass,
		ToClass:      req.ToClass,
		Amount:       req.Amount,
		CreatedBy:    auth.UserID(c),
	}
	if err := database.CreateFeeRule(db, rule); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create fee rule")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": rule})
}

func UpdateFeeRuleAPI(c *fiber.Ctx, db *sql.DB) error {
	rule, err := database.GetFeeRuleByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Fee rule not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fee rule")
	}
	if rule.SchoolID != auth.SchoolID(c) {
		return fiber.NewError(fiber.StatusNotFound, "Fee rule not found")
	}

	var req FeeRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validateRule(db, auth.SchoolID(c), &req); err != nil {
		return err
	}

	rule.AcademicYear = req.AcademicYear
	rule.Term = models.Term(req.Term)
	rule.FromClass = req.FromClass
	rule.ToClass = req.ToClass
	rule.Amount = req.Amount
	if err := database.UpdateFeeRule(db, rule); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update fee rule")
	}
	return c.JSON(fiber.Map{"success": true, "data": rule})
}

func DeleteFeeRuleAPI(c *fiber.Ctx, db *sql.DB) error {
	rule, err := database.GetFeeRuleByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Fee rule not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch fee rule")
	}
	if rule.SchoolID != auth.SchoolID(c) {
		return fiber.NewError(fiber.StatusNotFound, "Fee rule not found")
	}
	if err := database.DeleteFeeRule(db, rule.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete fee rule")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Fee rule deleted"})
}

// ClassLevelRequest is the create/update body for a class level.
type ClassLevelRequest struct {
	Name     string `json:"name" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
	IsActive *bool  `json:"is_active"`
}

func GetClassLevelsAPI(c *fiber.Ctx, db *sql.DB) error {
	levels, err := database.GetClassLevels(db, auth.SchoolID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch class levels")
	}
	if levels == nil {
		levels = []*models.ClassLevel{}
	}
	return c.JSON(fiber.Map{"success": true, "data": levels})
}

func CreateClassLevelAPI(c *fiber.Ctx, db *sql.DB) error {
	var req ClassLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	level := &models.ClassLevel{
		SchoolID: auth.SchoolID(c),
		Name:     req.Name,
		Position: req.Position,
		IsActive: true,
	}
	if err := database.CreateClassLevel(db, level); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create class level")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": level})
}

func UpdateClassLevelAPI(c *fiber.Ctx, db *sql.DB) error {
	var req ClassLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	level := &models.ClassLevel{
		ID:       c.Params("id"),
		SchoolID: auth.SchoolID(c),
		Name:     req.Name,
		Position: req.Position,
		IsActive: true,
	}
	if req.IsActive != nil {
		level.IsActive = *req.IsActive
	}
	if err := database.UpdateClassLevel(db, level); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update class level")
	}
	return c.JSON(fiber.Map{"success": true, "data": level})
}

func DeleteClassLevelAPI(c *fiber.Ctx, db *sql.DB) error {
	if err := database.DeleteClassLevel(db, c.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete class level")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Class level deleted"})
}
