package finance

import (
	"context"

	"tendo-schools/app/models"
)

// Store is the persistence boundary for the fee ledger. The production
// implementation lives in app/database; MemoryStore backs tests and seeding.
type Store interface {
	// Student returns an active student by ID, or a NotFoundError.
	Student(ctx context.Context, id string) (*models.Student, error)

	// ClassLevels returns a school's class levels, any order.
	ClassLevels(ctx context.Context, schoolID string) ([]*models.ClassLevel, error)

	// FeeRules returns all of a school's fee rules, in creation order.
	// Iteration order matters: the resolver lets the last matching rule win.
	FeeRules(ctx context.Context, schoolID string) ([]*models.FeeRule, error)

	// PaidTotal returns the sum of transaction amounts for one
	// (student, academic year, term) ledger key. Missing keys sum to 0.
	PaidTotal(ctx context.Context, studentID, academicYear string, term models.Term) (float64, error)

	// AppendOutcome persists every transaction and credit produced by one
	// payment application atomically: all rows or none.
	AppendOutcome(ctx context.Context, txns []*models.Transaction, credits []*models.Credit) error

	// StudentsBySchool returns a school's active students with their class
	// level names populated.
	StudentsBySchool(ctx context.Context, schoolID string) ([]*models.Student, error)

	// TransactionsByPeriod returns every transaction for a school and
	// academic year, for bulk aggregation.
	TransactionsByPeriod(ctx context.Context, schoolID, academicYear string) ([]*models.Transaction, error)
}

// PaidTotals folds a bulk transaction load into per-student, per-term sums.
// Used by the aggregator so reporting never issues per-student queries.
func PaidTotals(txns []*models.Transaction) map[string]map[models.Term]float64 {
	totals := make(map[string]map[models.Term]float64)
	for _, t := range txns {
		byTerm := totals[t.StudentID]
		if byTerm == nil {
			byTerm = make(map[models.Term]float64, len(TermSequence))
			totals[t.StudentID] = byTerm
		}
		byTerm[t.Term] += t.Amount
	}
	return totals
}
