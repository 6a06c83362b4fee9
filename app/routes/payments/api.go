package payments

import (
	"database/sql"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/database"
	"tendo-schools/app/finance"
	"tendo-schools/app/models"
	"tendo-schools/app/routes/auth"
)

var validate = validator.New()

// RecordPaymentRequest is the payment intake body.
type RecordPaymentRequest struct {
	StudentID    string  `json:"student_id" validate:"required,uuid"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	Term         string  `json:"term" validate:"required"`
	Amount       float64 `json:"amount"`
	Kind         string  `json:"kind" validate:"omitempty,oneof=payment adjustment fine refund opening"`
	Method       string  `json:"method" validate:"omitempty,oneof=cash mobile_money bank cheque system"`
	Note         string  `json:"note"`
}

// RecordPaymentAPI applies a payment through the carryover engine and echoes
// everything it wrote: the target-term transaction, any spill transactions,
// any year-boundary credits, and any unallocated remainder.
func RecordPaymentAPI(c *fiber.Ctx, engine *finance.Engine) error {
	var req RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Kind == "" {
		req.Kind = string(models.KindPayment)
	}
	if req.Method == "" {
		req.Method = string(models.MethodCash)
	}

	result, err := engine.ApplyPayment(c.UserContext(), finance.PaymentRequest{
		StudentID:    req.StudentID,
		AcademicYear: req.AcademicYear,
		Term:         models.Term(req.Term),
		Amount:       req.Amount,
		Kind:         models.TransactionKind(req.Kind),
		Method:       models.PaymentMethod(req.Method),
		Note:         req.Note,
		Actor:        auth.UserID(c),
	})
	if err != nil {
		return financeError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"transaction": result.Recorded,
		"spills":      result.Spills,
		"credits":     result.Credits,
		"unallocated": result.Unallocated,
	})
}

// GetTransactionsAPI lists ledger entries for the caller's school.
func GetTransactionsAPI(c *fiber.Ctx, db *sql.DB) error {
	filters := database.TransactionFilters{
		StudentID:    c.Query("student_id"),
		AcademicYear: c.Query("academic_year"),
		Term:         c.Query("term"),
		Limit:        queryInt(c, "limit", 50),
		Offset:       queryInt(c, "offset", 0),
	}

	txns, err := database.GetTransactions(db, auth.SchoolID(c), filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transactions")
	}
	if txns == nil {
		txns = []*models.Transaction{}
	}
	return c.JSON(fiber.Map{"success": true, "data": txns})
}

// GetCreditsAPI lists year-boundary carryover credits.
func GetCreditsAPI(c *fiber.Ctx, db *sql.DB) error {
	filters := database.TransactionFilters{
		StudentID:    c.Query("student_id"),
		AcademicYear: c.Query("academic_year"),
		Term:         c.Query("term"),
		Limit:        queryInt(c, "limit", 50),
		Offset:       queryInt(c, "offset", 0),
	}

	credits, err := database.GetCredits(db, auth.SchoolID(c), filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch credits")
	}
	if credits == nil {
		credits = []*models.Credit{}
	}
	return c.JSON(fiber.Map{"success": true, "data": credits})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func financeError(err error) error {
	switch {
	case finance.IsValidation(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case finance.IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case finance.IsConflict(err):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to record payment")
	}
}
