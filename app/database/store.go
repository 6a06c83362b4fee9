package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"tendo-schools/app/finance"
	"tendo-schools/app/models"
)

// SQLStore implements finance.Store over Postgres.
type SQLStore struct {
	DB *sql.DB
}

// NewSQLStore wraps db as a finance.Store.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Student(ctx context.Context, id string) (*models.Student, error) {
	student := &models.Student{}
	query := `SELECT s.id, s.school_id, s.student_no, s.first_name, s.last_name,
			  COALESCE(s.gender, ''), s.class_level_id, s.is_active, s.created_at, s.updated_at,
			  cl.name
			  FROM students s
			  JOIN class_levels cl ON s.class_level_id = cl.id
			  WHERE s.id = $1 AND s.is_active = true AND s.deleted_at IS NULL`

	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&student.ID, &student.SchoolID, &student.StudentNo, &student.FirstName,
		&student.LastName, &student.Gender, &student.ClassLevelID, &student.IsActive,
		&student.CreatedAt, &student.UpdatedAt, &student.ClassLevelName,
	)
	if err == sql.ErrNoRows {
		return nil, &finance.NotFoundError{Resource: "student", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (s *SQLStore) ClassLevels(ctx context.Context, schoolID string) ([]*models.ClassLevel, error) {
	query := `SELECT id, school_id, name, position, is_active, created_at, updated_at
			  FROM class_levels
			  WHERE school_id = $1 AND deleted_at IS NULL
			  ORDER BY position`

	rows, err := s.DB.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []*models.ClassLevel
	for rows.Next() {
		level := &models.ClassLevel{}
		if err := rows.Scan(&level.ID, &level.SchoolID, &level.Name, &level.Position,
			&level.IsActive, &level.CreatedAt, &level.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

func (s *SQLStore) FeeRules(ctx context.Context, schoolID string) ([]*models.FeeRule, error) {
	query := `SELECT id, school_id, academic_year, term, from_class, to_class, amount,
			  COALESCE(created_by::text, ''), created_at, updated_at
			  FROM fee_rules
			  WHERE school_id = $1 AND deleted_at IS NULL
			  ORDER BY created_at, id`

	rows, err := s.DB.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.FeeRule
	for rows.Next() {
		rule := &models.FeeRule{}
		if err := rows.Scan(&rule.ID, &rule.SchoolID, &rule.AcademicYear, &rule.Term,
			&rule.FromClass, &rule.ToClass, &rule.Amount, &rule.CreatedBy,
			&rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *SQLStore) PaidTotal(ctx context.Context, studentID, academicYear string, term models.Term) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
			  WHERE student_id = $1 AND academic_year = $2 AND term = $3`
	err := s.DB.QueryRowContext(ctx, query, studentID, academicYear, string(term)).Scan(&total)
	return total, err
}

// AppendOutcome writes every transaction and credit from one payment
// application inside a single database transaction: all rows or none.
func (s *SQLStore) AppendOutcome(ctx context.Context, txns []*models.Transaction, credits []*models.Credit) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txnQuery := `INSERT INTO transactions (id, student_id, school_id, academic_year, term, amount, kind, method, note, handled_by, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, '')::uuid, $11)`
	for _, t := range txns {
		if _, err := tx.ExecContext(ctx, txnQuery, t.ID, t.StudentID, t.SchoolID,
			t.AcademicYear, string(t.Term), t.Amount, string(t.Kind), string(t.Method),
			t.Note, t.HandledBy, t.CreatedAt); err != nil {
			return asConflict(err)
		}
	}

	creditQuery := `INSERT INTO credits (id, student_id, school_id, academic_year, term, amount, source, note, applied_to, created_by, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, '')::uuid, $11)`
	for _, c := range credits {
		if _, err := tx.ExecContext(ctx, creditQuery, c.ID, c.StudentID, c.SchoolID,
			c.AcademicYear, string(c.Term), c.Amount, c.Source, c.Note,
			c.AppliedTo, c.CreatedBy, c.CreatedAt); err != nil {
			return asConflict(err)
		}
	}

	return tx.Commit()
}

// asConflict converts a unique violation into a typed conflict. Ledger rows
// carry client-generated IDs, so a duplicate key means two writers raced past
// the engine's serialization.
func asConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &finance.ConflictError{Key: pqErr.Constraint}
	}
	return err
}

func (s *SQLStore) StudentsBySchool(ctx context.Context, schoolID string) ([]*models.Student, error) {
	query := `SELECT s.id, s.school_id, s.student_no, s.first_name, s.last_name,
			  COALESCE(s.gender, ''), s.class_level_id, s.is_active, s.created_at, s.updated_at,
			  cl.name
			  FROM students s
			  JOIN class_levels cl ON s.class_level_id = cl.id
			  WHERE s.school_id = $1 AND s.is_active = true AND s.deleted_at IS NULL`

	rows, err := s.DB.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student := &models.Student{}
		if err := rows.Scan(&student.ID, &student.SchoolID, &student.StudentNo,
			&student.FirstName, &student.LastName, &student.Gender, &student.ClassLevelID,
			&student.IsActive, &student.CreatedAt, &student.UpdatedAt, &student.ClassLevelName); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

func (s *SQLStore) TransactionsByPeriod(ctx context.Context, schoolID, academicYear string) ([]*models.Transaction, error) {
	query := `SELECT id, student_id, school_id, academic_year, term, amount, kind,
			  COALESCE(method, ''), COALESCE(note, ''), COALESCE(handled_by::text, ''), created_at
			  FROM transactions
			  WHERE school_id = $1 AND academic_year = $2`

	rows, err := s.DB.QueryContext(ctx, query, schoolID, academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}
