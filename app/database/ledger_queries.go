package database

import (
	"database/sql"
	"fmt"
	"strings"

	"tendo-schools/app/models"
)

// TransactionFilters narrows ledger listings.
type TransactionFilters struct {
	StudentID    string
	AcademicYear string
	Term         string
	Limit        int
	Offset       int
}

// GetTransactions lists ledger entries, newest first.
func GetTransactions(db *sql.DB, schoolID string, filters TransactionFilters) ([]*models.Transaction, error) {
	baseQuery := `SELECT id, student_id, school_id, academic_year, term, amount, kind,
				  COALESCE(method, ''), COALESCE(note, ''), COALESCE(handled_by::text, ''), created_at
				  FROM transactions WHERE school_id = $1`

	var conditions []string
	args := []interface{}{schoolID}
	argIndex := 2

	if filters.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", argIndex))
		args = append(args, filters.StudentID)
		argIndex++
	}
	if filters.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", argIndex))
		args = append(args, filters.AcademicYear)
		argIndex++
	}
	if filters.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", argIndex))
		args = append(args, filters.Term)
		argIndex++
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := db.Query(baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetCredits lists year-boundary carryover credits, newest first.
func GetCredits(db *sql.DB, schoolID string, filters TransactionFilters) ([]*models.Credit, error) {
	baseQuery := `SELECT id, student_id, school_id, academic_year, term, amount, source,
				  COALESCE(note, ''), COALESCE(applied_to, ''), COALESCE(created_by::text, ''), created_at
				  FROM credits WHERE school_id = $1`

	var conditions []string
	args := []interface{}{schoolID}
	argIndex := 2

	if filters.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", argIndex))
		args = append(args, filters.StudentID)
		argIndex++
	}
	if filters.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", argIndex))
		args = append(args, filters.AcademicYear)
		argIndex++
	}
	if filters.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", argIndex))
		args = append(args, filters.Term)
		argIndex++
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := db.Query(baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []*models.Credit
	for rows.Next() {
		credit := &models.Credit{}
		if err := rows.Scan(&credit.ID, &credit.StudentID, &credit.SchoolID,
			&credit.AcademicYear, &credit.Term, &credit.Amount, &credit.Source,
			&credit.Note, &credit.AppliedTo, &credit.CreatedBy, &credit.CreatedAt); err != nil {
			continue
		}
		credits = append(credits, credit)
	}
	return credits, nil
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{}
		if err := rows.Scan(&txn.ID, &txn.StudentID, &txn.SchoolID, &txn.AcademicYear,
			&txn.Term, &txn.Amount, &txn.Kind, &txn.Method, &txn.Note,
			&txn.HandledBy, &txn.CreatedAt); err != nil {
			continue
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}
