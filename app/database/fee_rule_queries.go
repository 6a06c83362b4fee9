package database

import (
	"database/sql"
	"fmt"

	"tendo-schools/app/models"
)

// GetFeeRules returns a school's fee rules in creation order. Order matters:
// the resolver lets the last matching rule win.
func GetFeeRules(db *sql.DB, schoolID string, academicYear string) ([]*models.FeeRule, error) {
	query := `SELECT id, school_id, academic_year, term, from_class, to_class, amount,
			  COALESCE(created_by::text, ''), created_at, updated_at
			  FROM fee_rules
			  WHERE school_id = $1 AND deleted_at IS NULL`
	args := []interface{}{schoolID}
	if academicYear != "" {
		query += " AND academic_year = $2"
		args = append(args, academicYear)
	}
	query += " ORDER BY created_at, id"

	rows, err := db.Query(query, args...)
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
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func GetFeeRuleByID(db *sql.DB, ruleID string) (*models.FeeRule, error) {
	rule := &models.FeeRule{}
	query := `SELECT id, school_id, academic_year, term, from_class, to_class, amount,
			  COALESCE(created_by::text, ''), created_at, updated_at
			  FROM fee_rules WHERE id = $1 AND deleted_at IS NULL`

	err := db.QueryRow(query, ruleID).Scan(&rule.ID, &rule.SchoolID, &rule.AcademicYear,
		&rule.Term, &rule.FromClass, &rule.ToClass, &rule.Amount, &rule.CreatedBy,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func CreateFeeRule(db *sql.DB, rule *models.FeeRule) error {
	query := `INSERT INTO fee_rules (school_id, academic_year, term, from_class, to_class, amount, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)
			  RETURNING id, created_at`
	err := db.QueryRow(query, rule.SchoolID, rule.AcademicYear, string(rule.Term),
		rule.FromClass, rule.ToClass, rule.Amount, rule.CreatedBy).
		Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fee rule: %v", err)
	}
	return nil
}

// UpdateFeeRule edits a rule in place. There is no versioning: edits
// retroactively change historical balance computations.
func UpdateFeeRule(db *sql.DB, rule *models.FeeRule) error {
	query := `UPDATE fee_rules SET academic_year = $1, term = $2, from_class = $3,
			  to_class = $4, amount = $5, updated_at = NOW()
			  WHERE id = $6 AND deleted_at IS NULL`
	_, err := db.Exec(query, rule.AcademicYear, string(rule.Term), rule.FromClass,
		rule.ToClass, rule.Amount, rule.ID)
	return err
}

func DeleteFeeRule(db *sql.DB, ruleID string) error {
	query := `UPDATE fee_rules SET deleted_at = NOW() WHERE id = $1`
	_, err := db.Exec(query, ruleID)
	return err
}
