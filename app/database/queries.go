package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"tendo-schools/app/models"
)

// StudentFilters represents filtering options for students
type StudentFilters struct {
	Search  string
	ClassID string
	Status  string
	Limit   int
	Offset  int
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, COALESCE(school_id::text, ''), email, password, first_name, last_name, is_active, created_at, updated_at
			  FROM users WHERE email = $1 AND is_active = true`

	err := db.QueryRow(query, email).Scan(
		&user.ID, &user.SchoolID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, COALESCE(school_id::text, ''), email, password, first_name, last_name, is_active, created_at, updated_at
			  FROM users WHERE id = $1 AND is_active = true`

	err := db.QueryRow(query, userID).Scan(
		&user.ID, &user.SchoolID, &user.Email, &user.Password, &user.FirstName,
		&user.LastName, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserRoles(db *sql.DB, userID string) ([]*models.Role, error) {
	query := `SELECT r.id, r.name, r.is_active, r.created_at, r.updated_at
			  FROM roles r
			  JOIN user_roles ur ON r.id = ur.role_id
			  WHERE ur.user_id = $1 AND r.is_active = true`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
			continue
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func CreateUser(db *sql.DB, user *models.User, hashedPassword string, roleName string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO users (email, password, first_name, last_name, phone)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = tx.QueryRow(query, user.Email, hashedPassword, user.FirstName, user.LastName, user.Phone).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %v", err)
	}

	var roleID string
	err = tx.QueryRow("SELECT id FROM roles WHERE name = $1", roleName).Scan(&roleID)
	if err == sql.ErrNoRows {
		err = tx.QueryRow("INSERT INTO roles (name) VALUES ($1) RETURNING id", roleName).Scan(&roleID)
	}
	if err != nil {
		return fmt.Errorf("failed to resolve role %s: %v", roleName, err)
	}

	if _, err = tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)", user.ID, roleID); err != nil {
		return fmt.Errorf("failed to assign role: %v", err)
	}

	return tx.Commit()
}

func UpdateUserPassword(db *sql.DB, userID string, hashedPassword string) error {
	query := `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, userID)
	return err
}

func GetSchoolByID(db *sql.DB, schoolID string) (*models.School, error) {
	school := &models.School{}
	query := `SELECT id, name, code, is_active, created_at, updated_at
			  FROM schools WHERE id = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, schoolID).Scan(
		&school.ID, &school.Name, &school.Code, &school.IsActive,
		&school.CreatedAt, &school.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return school, nil
}

func GetClassLevels(db *sql.DB, schoolID string) ([]*models.ClassLevel, error) {
	query := `SELECT id, school_id, name, position, is_active, created_at, updated_at
			  FROM class_levels
			  WHERE school_id = $1 AND deleted_at IS NULL
			  ORDER BY position`

	rows, err := db.Query(query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []*models.ClassLevel
	for rows.Next() {
		level := &models.ClassLevel{}
		if err := rows.Scan(&level.ID, &level.SchoolID, &level.Name, &level.Position,
			&level.IsActive, &level.CreatedAt, &level.UpdatedAt); err != nil {
			continue
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func CreateClassLevel(db *sql.DB, level *models.ClassLevel) error {
	query := `INSERT INTO class_levels (school_id, name, position, is_active)
			  VALUES ($1, $2, $3, true) RETURNING id, created_at`
	return db.QueryRow(query, level.SchoolID, level.Name, level.Position).
		Scan(&level.ID, &level.CreatedAt)
}

func UpdateClassLevel(db *sql.DB, level *models.ClassLevel) error {
	query := `UPDATE class_levels SET name = $1, position = $2, is_active = $3, updated_at = NOW()
			  WHERE id = $4 AND deleted_at IS NULL`
	_, err := db.Exec(query, level.Name, level.Position, level.IsActive, level.ID)
	return err
}

func DeleteClassLevel(db *sql.DB, levelID string) error {
	query := `UPDATE class_levels SET deleted_at = NOW(), is_active = false WHERE id = $1`
	_, err := db.Exec(query, levelID)
	return err
}

func GetStudentByID(db *sql.DB, studentID string) (*models.Student, error) {
	student := &models.Student{}
	query := `SELECT s.id, s.school_id, s.student_no, s.first_name, s.last_name,
			  COALESCE(s.gender, ''), s.class_level_id, s.is_active, s.created_at, s.updated_at,
			  cl.name
			  FROM students s
			  JOIN class_levels cl ON s.class_level_id = cl.id
			  WHERE s.id = $1 AND s.deleted_at IS NULL`

	err := db.QueryRow(query, studentID).Scan(
		&student.ID, &student.SchoolID, &student.StudentNo, &student.FirstName,
		&student.LastName, &student.Gender, &student.ClassLevelID, &student.IsActive,
		&student.CreatedAt, &student.UpdatedAt, &student.ClassLevelName,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func GetStudentsBySchool(db *sql.DB, schoolID string, filters StudentFilters) ([]*models.Student, error) {
	baseQuery := `SELECT s.id, s.school_id, s.student_no, s.first_name, s.last_name,
				  COALESCE(s.gender, ''), s.class_level_id, s.is_active, s.created_at, s.updated_at,
				  cl.name
				  FROM students s
				  JOIN class_levels cl ON s.class_level_id = cl.id
				  WHERE s.school_id = $1 AND s.is_active = true AND s.deleted_at IS NULL`

	var conditions []string
	args := []interface{}{schoolID}
	argIndex := 2

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.student_no ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}
	if filters.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_level_id = $%d", argIndex))
		args = append(args, filters.ClassID)
		argIndex++
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY cl.position, s.last_name, s.first_name"
	if filters.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := db.Query(baseQuery, args...)
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
			continue
		}
		students = append(students, student)
	}
	return students, nil
}

func CreateStudent(db *sql.DB, student *models.Student) error {
	query := `INSERT INTO students (school_id, student_no, first_name, last_name, gender, class_level_id)
			  VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6) RETURNING id, created_at`
	return db.QueryRow(query, student.SchoolID, student.StudentNo, student.FirstName,
		student.LastName, string(student.Gender), student.ClassLevelID).
		Scan(&student.ID, &student.CreatedAt)
}

func UpdateStudent(db *sql.DB, student *models.Student) error {
	query := `UPDATE students SET first_name = $1, last_name = $2, gender = NULLIF($3, ''),
			  class_level_id = $4, is_active = $5, updated_at = NOW()
			  WHERE id = $6 AND deleted_at IS NULL`
	_, err := db.Exec(query, student.FirstName, student.LastName, string(student.Gender),
		student.ClassLevelID, student.IsActive, student.ID)
	return err
}

func DeleteStudent(db *sql.DB, studentID string) error {
	query := `UPDATE students SET deleted_at = NOW(), is_active = false WHERE id = $1`
	_, err := db.Exec(query, studentID)
	return err
}

// BulkCreateStudents inserts a batch of students in one round trip via COPY
// and returns the generated IDs in input order. Used by onboarding imports so
// a thousand-row file does not become a thousand sequential inserts.
func BulkCreateStudents(db *sql.DB, students []*models.Student) error {
	if len(students) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn("students",
		"id", "school_id", "student_no", "first_name", "last_name", "gender", "class_level_id", "created_at", "updated_at"))
	if err != nil {
		return err
	}
	now := time.Now()
	for _, s := range students {
		var gender interface{}
		if s.Gender != "" {
			gender = string(s.Gender)
		}
		if _, err := stmt.Exec(s.ID, s.SchoolID, s.StudentNo, s.FirstName, s.LastName, gender, s.ClassLevelID, now, now); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}
