package reports

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"tendo-schools/app/database"
	"tendo-schools/app/finance"
	"tendo-schools/app/models"
	"tendo-schools/app/routes/auth"
)

// reportTimeout bounds the aggregation queries behind each report.
const reportTimeout = 15 * time.Second

// GetDebtorsAPI lists students whose outstanding balance exceeds a threshold.
//
// Query params: academic_year (required), class_level, search,
// min_outstanding, max_outstanding, page, limit.
func GetDebtorsAPI(c *fiber.Ctx, agg *finance.Aggregator) error {
	year := c.Query("academic_year")
	if year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "academic_year is required")
	}

	q := finance.DebtorsQuery{
		SchoolID:       auth.SchoolID(c),
		AcademicYear:   year,
		ClassLevel:     c.Query("class_level"),
		Search:         c.Query("search"),
		MinOutstanding: queryFloat(c, "min_outstanding", 0),
		Page:           queryInt(c, "page", 1),
		Limit:          queryInt(c, "limit", 20),
	}
	if v := c.Query("max_outstanding"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid max_outstanding")
		}
		q.MaxOutstanding = &max
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), reportTimeout)
	defer cancel()

	page, err := agg.Debtors(ctx, q)
	if err != nil {
		return financeError(err)
	}
	if page.Debtors == nil {
		page.Debtors = []finance.StudentBalance{}
	}
	return c.JSON(fiber.Map{"success": true, "data": page})
}

// GetSchoolSummaryAPI rolls the whole school up into expected/paid/outstanding.
func GetSchoolSummaryAPI(c *fiber.Ctx, agg *finance.Aggregator) error {
	year := c.Query("academic_year")
	if year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "academic_year is required")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), reportTimeout)
	defer cancel()

	sum, err := agg.SchoolSummary(ctx, auth.SchoolID(c), year)
	if err != nil {
		return financeError(err)
	}
	return c.JSON(fiber.Map{"success": true, "academic_year": year, "data": sum})
}

// GetClassSummaryAPI rolls balances up per class level, in class order.
func GetClassSummaryAPI(c *fiber.Ctx, agg *finance.Aggregator) error {
	year := c.Query("academic_year")
	if year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "academic_year is required")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), reportTimeout)
	defer cancel()

	summaries, err := agg.ClassSummaries(ctx, auth.SchoolID(c), year)
	if err != nil {
		return financeError(err)
	}
	if summaries == nil {
		summaries = []finance.ClassSummary{}
	}
	return c.JSON(fiber.Map{"success": true, "academic_year": year, "data": summaries})
}

// GetTermComparisonAPI rolls the school up term by term for one year.
func GetTermComparisonAPI(c *fiber.Ctx, agg *finance.Aggregator) error {
	year := c.Query("academic_year")
	if year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "academic_year is required")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), reportTimeout)
	defer cancel()

	terms, err := agg.TermComparison(ctx, auth.SchoolID(c), year)
	if err != nil {
		return financeError(err)
	}
	return c.JSON(fiber.Map{"success": true, "academic_year": year, "data": terms})
}

// GetStudentStatementAPI returns one student's per-term balances plus the raw
// ledger entries and credits behind them.
func GetStudentStatementAPI(c *fiber.Ctx, agg *finance.Aggregator, db *sql.DB) error {
	year := c.Query("academic_year")
	if year == "" {
		return fiber.NewError(fiber.StatusBadRequest, "academic_year is required")
	}
	studentID := c.Params("id")

	ctx, cancel := context.WithTimeout(c.UserContext(), reportTimeout)
	defer cancel()

	balance, err := agg.StudentBalance(ctx, studentID, year)
	if err != nil {
		return financeError(err)
	}

	filters := database.TransactionFilters{StudentID: studentID, AcademicYear: year}
	txns, err := database.GetTransactions(db, auth.SchoolID(c), filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch transactions")
	}
	credits, err := database.GetCredits(db, auth.SchoolID(c), filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch credits")
	}
	if txns == nil {
		txns = []*models.Transaction{}
	}
	if credits == nil {
		credits = []*models.Credit{}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"academic_year": year,
		"balance":       balance,
		"transactions":  txns,
		"credits":       credits,
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(c *fiber.Ctx, key string, fallback float64) float64 {
	if v := c.Query(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to build report")
	}
}
