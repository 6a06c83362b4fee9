package finance

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"tendo-schools/app/models"
)

// maxTermAdvances bounds the carryover walk. Three terms per year, so this
// allows an overpayment to reach four academic years ahead before the
// remainder is returned as unallocated. Guards against a misconfigured rule
// set producing near-infinite tiny carryovers.
const maxTermAdvances = 12

// PaymentRequest is one incoming monetary event to apply to the ledger.
type PaymentRequest struct {
	StudentID    string
	AcademicYear string
	Term         models.Term
	Amount       float64
	Kind         models.TransactionKind
	Method       models.PaymentMethod
	Note         string
	Actor        string
}

// PaymentResult is everything one application wrote, plus any remainder that
// could not be allocated because no further fee rule resolved.
type PaymentResult struct {
	Recorded    *models.Transaction   `json:"transaction"`
	Spills      []*models.Transaction `json:"spills"`
	Credits     []*models.Credit      `json:"credits"`
	Unallocated float64               `json:"unallocated"`
}

// Engine applies payments to the ledger and carries overpayments forward
// through later terms and academic years.
//
// Applications are serialized per student: two concurrent payments for the
// same student would otherwise read the same paid total and both under-count
// it, applying more than the expected fee. The lock covers the whole student
// rather than (student, year) because a carryover walk crosses year
// boundaries and must not have to take a second lock mid-walk.
type Engine struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine returns an Engine backed by store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, locks: make(map[string]*sync.Mutex)}
}

func (e *Engine) studentLock(studentID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[studentID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[studentID] = l
	}
	return l
}

// ApplyPayment records req against the target term, spills any excess forward
// (Term 1 → 2 → 3, then Term 1 of the next academic year, with a Credit on
// each year crossing), and persists the whole outcome atomically. A failure
// writes nothing. The target-term transaction is written even when 0 of the
// amount applies, so the attempt stays on the audit trail.
func (e *Engine) ApplyPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	lock := e.studentLock(req.StudentID)
	lock.Lock()
	defer lock.Unlock()

	student, err := e.store.Student(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	levels, err := e.store.ClassLevels(ctx, student.SchoolID)
	if err != nil {
		return nil, err
	}
	rules, err := e.store.FeeRules(ctx, student.SchoolID)
	if err != nil {
		return nil, err
	}
	ruleSet := NewRuleSet(NewClassOrder(levels), rules)

	amount := normalizeAmount(req.Kind, req.Amount)
	expected := ruleSet.ExpectedFee(student.ClassLevelName, req.AcademicYear, req.Term)
	alreadyPaid, err := e.store.PaidTotal(ctx, req.StudentID, req.AcademicYear, req.Term)
	if err != nil {
		return nil, err
	}

	toApply, excess := planApplication(amount, expected, alreadyPaid)

	now := time.Now()
	result := &PaymentResult{
		Recorded: newTransaction(req, student.SchoolID, req.AcademicYear, req.Term, toApply, req.Note, now),
	}

	year, term := req.AcademicYear, req.Term
	for advances := 0; excess > 0 && advances < maxTermAdvances; advances++ {
		var crossed bool
		year, term, crossed, err = NextPeriod(year, term)
		if err != nil {
			return nil, err
		}
		if crossed {
			result.Credits = append(result.Credits, &models.Credit{
				ID:           uuid.NewString(),
				StudentID:    req.StudentID,
				SchoolID:     student.SchoolID,
				AcademicYear: year,
				Term:         term,
				Amount:       excess,
				Source:       fmt.Sprintf("Overpayment from %s %s", req.AcademicYear, req.Term),
				Note:         req.Note,
				AppliedTo:    fmt.Sprintf("%s %s", year, term),
				CreatedBy:    req.Actor,
				CreatedAt:    now,
			})
		}

		nextExpected := ruleSet.ExpectedFee(student.ClassLevelName, year, term)
		if nextExpected <= 0 {
			// No billing rule this far out; the remainder stays unallocated.
			break
		}
		nextPaid, err := e.store.PaidTotal(ctx, req.StudentID, year, term)
		if err != nil {
			return nil, err
		}
		applied, _ := planApplication(excess, nextExpected, nextPaid)
		if applied > 0 {
			note := fmt.Sprintf("Carryover from %s %s", req.AcademicYear, req.Term)
			result.Spills = append(result.Spills, newTransaction(req, student.SchoolID, year, term, applied, note, now))
			excess -= applied
		}
	}
	result.Unallocated = excess

	all := append([]*models.Transaction{result.Recorded}, result.Spills...)
	if err := e.store.AppendOutcome(ctx, all, result.Credits); err != nil {
		return nil, err
	}
	return result, nil
}

func validateRequest(req PaymentRequest) error {
	if req.StudentID == "" {
		return &ValidationError{Field: "student_id", Reason: "is required"}
	}
	if _, err := ParseYear(req.AcademicYear); err != nil {
		return err
	}
	if !models.ValidTerm(req.Term) {
		return &ValidationError{Field: "term", Reason: fmt.Sprintf("unknown term %q", req.Term)}
	}
	if !models.ValidTransactionKind(req.Kind) {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", req.Kind)}
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return &ValidationError{Field: "amount", Reason: "must be a finite number"}
	}
	return nil
}

// normalizeAmount coerces payment, opening and fine amounts to their absolute
// value; adjustments and refunds keep their sign (a negative adjustment is a
// credit note).
func normalizeAmount(kind models.TransactionKind, amount float64) float64 {
	switch kind {
	case models.KindPayment, models.KindOpening, models.KindFine:
		return math.Abs(amount)
	default:
		return amount
	}
}

// planApplication decides how much of amount lands on a term with the given
// expected fee and paid total. It is pure: two callers planning from the same
// paid snapshot will both apply the full remaining balance, which is exactly
// the lost-update race the engine's per-student lock prevents.
func planApplication(amount, expected, alreadyPaid float64) (toApply, excess float64) {
	due := expected - alreadyPaid
	if due < 0 {
		due = 0
	}
	toApply = math.Min(amount, due)
	return toApply, amount - toApply
}

func newTransaction(req PaymentRequest, schoolID, year string, term models.Term, amount float64, note string, at time.Time) *models.Transaction {
	return &models.Transaction{
		ID:           uuid.NewString(),
		StudentID:    req.StudentID,
		SchoolID:     schoolID,
		AcademicYear: year,
		Term:         term,
		Amount:       amount,
		Kind:         req.Kind,
		Method:       req.Method,
		Note:         note,
		HandledBy:    req.Actor,
		CreatedAt:    at,
	}
}
