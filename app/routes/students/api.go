package students

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tendo-schools/app/database"
	"tendo-schools/app/finance"
	"tendo-schools/app/models"
	"tendo-schools/app/routes/auth"
)

var validate = validator.New()

// StudentRequest is the create/update body for a student.
type StudentRequest struct {
	StudentNo    string `json:"student_no" validate:"required"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Gender       string `json:"gender" validate:"omitempty,oneof=male female other"`
	ClassLevelID string `json:"class_level_id" validate:"required,uuid"`
	IsActive     *bool  `json:"is_active"`
}

func GetStudentsAPI(c *fiber.Ctx, db *sql.DB) error {
	filters := database.StudentFilters{
		Search:  c.Query("search"),
		ClassID: c.Query("class_level_id"),
		Limit:   queryInt(c, "limit", 50),
		Offset:  queryInt(c, "offset", 0),
	}

	students, err := database.GetStudentsBySchool(db, auth.SchoolID(c), filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch students")
	}
	if students == nil {
		students = []*models.Student{}
	}
	return c.JSON(fiber.Map{"success": true, "data": students})
}

func GetStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch student")
	}
	if student.SchoolID != auth.SchoolID(c) {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": student})
}

func CreateStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	student := &models.Student{
		SchoolID:     auth.SchoolID(c),
		StudentNo:    req.StudentNo,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       models.Gender(req.Gender),
		ClassLevelID: req.ClassLevelID,
		IsActive:     true,
	}
	if err := database.CreateStudent(db, student); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create student")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": student})
}

func UpdateStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch student")
	}
	if student.SchoolID != auth.SchoolID(c) {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Gender = models.Gender(req.Gender)
	student.ClassLevelID = req.ClassLevelID
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}
	if err := database.UpdateStudent(db, student); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update student")
	}
	return c.JSON(fiber.Map{"success": true, "data": student})
}

func DeleteStudentAPI(c *fiber.Ctx, db *sql.DB) error {
	student, err := database.GetStudentByID(db, c.Params("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch student")
	}
	if student.SchoolID != auth.SchoolID(c) {
		return fiber.NewError(fiber.StatusNotFound, "Student not found")
	}
	if err := database.DeleteStudent(db, student.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete student")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Student deleted"})
}

// BulkStudentRow is one row of an onboarding import. Opening balances become
// ledger transactions of kind "opening" so reports see them like any payment.
type BulkStudentRow struct {
	StudentNo       string `json:"student_no" validate:"required"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female other"`
	ClassLevelID    string `json:"class_level_id" validate:"required,uuid"`
	OpeningBalances []struct {
		AcademicYear string  `json:"academic_year" validate:"required"`
		Term         string  `json:"term" validate:"required"`
		Amount       float64 `json:"amount"`
	} `json:"opening_balances" validate:"dive"`
}

// BulkImportRequest is the bulk import body.
type BulkImportRequest struct {
	Students []BulkStudentRow `json:"students" validate:"required,min=1,dive"`
}

// BulkImportStudentsAPI inserts a batch of students in one COPY round trip,
// then records all their opening-balance transactions in one atomic append.
func BulkImportStudentsAPI(c *fiber.Ctx, db *sql.DB) error {
	var req BulkImportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	schoolID := auth.SchoolID(c)
	now := time.Now()

	batch := make([]*models.Student, len(req.Students))
	var openings []*models.Transaction
	for i, row := range req.Students {
		batch[i] = &models.Student{
			ID:           uuid.NewString(),
			SchoolID:     schoolID,
			StudentNo:    row.StudentNo,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Gender:       models.Gender(row.Gender),
			ClassLevelID: row.ClassLevelID,
			IsActive:     true,
		}
		for _, ob := range row.OpeningBalances {
			if _, err := finance.ParseYear(ob.AcademicYear); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if !models.ValidTerm(models.Term(ob.Term)) {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid term: "+ob.Term)
			}
			openings = append(openings, &models.Transaction{
				ID:           uuid.NewString(),
				StudentID:    batch[i].ID,
				SchoolID:     schoolID,
				AcademicYear: ob.AcademicYear,
				Term:         models.Term(ob.Term),
				Amount:       ob.Amount,
				Kind:         models.KindOpening,
				Method:       models.MethodSystem,
				Note:         "Opening balance import",
				HandledBy:    auth.UserID(c),
				CreatedAt:    now,
			})
		}
	}

	if err := database.BulkCreateStudents(db, batch); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to import students")
	}
	if len(openings) > 0 {
		store := database.NewSQLStore(db)
		if err := store.AppendOutcome(c.UserContext(), openings, nil); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to record opening balances")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"imported": len(batch),
		"openings": len(openings),
		"data":     batch,
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
