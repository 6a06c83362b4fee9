package finance

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"tendo-schools/app/models"
)

// Aggregator batch-computes outstanding balances for reporting. It loads the
// three inputs (students, rules + class order, transactions) in a handful of
// concurrent queries and does everything else in memory; it never issues
// per-student ledger queries.
//
// Carryover is already persisted as ledger transactions by the Engine, so a
// term's paid total needs no re-simulation here: outstanding is simply
// max(0, expected − paid) per term.
type Aggregator struct {
	store Store
}

// NewAggregator returns an Aggregator backed by store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// TermBalance is one term's expected/paid/outstanding for a student.
type TermBalance struct {
	Term        models.Term `json:"term"`
	Expected    float64     `json:"expected"`
	Paid        float64     `json:"paid"`
	Outstanding float64     `json:"outstanding"`
}

// StudentBalance is a student's full-year position.
type StudentBalance struct {
	StudentID        string        `json:"student_id"`
	StudentNo        string        `json:"student_no"`
	Name             string        `json:"name"`
	ClassLevel       string        `json:"class_level"`
	Terms            []TermBalance `json:"terms"`
	TotalExpected    float64       `json:"total_expected"`
	TotalPaid        float64       `json:"total_paid"`
	TotalOutstanding float64       `json:"total_outstanding"`
}

// Summary is an expected/paid/outstanding roll-up.
type Summary struct {
	Expected    float64 `json:"expected"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
}

// ClassSummary is a per-class roll-up.
type ClassSummary struct {
	ClassLevel string `json:"class_level"`
	Students   int    `json:"students"`
	Summary
}

// DebtorsQuery filters and paginates the debtors report.
type DebtorsQuery struct {
	SchoolID       string
	AcademicYear   string
	ClassLevel     string
	Search         string
	MinOutstanding float64
	MaxOutstanding *float64
	Page           int
	Limit          int
}

// DebtorsPage is one page of the debtors report.
type DebtorsPage struct {
	TotalDebtors int              `json:"total_debtors"`
	TotalPages   int              `json:"total_pages"`
	CurrentPage  int              `json:"current_page"`
	PageSize     int              `json:"page_size"`
	Debtors      []StudentBalance `json:"debtors"`
}

type snapshot struct {
	students []*models.Student
	ruleSet  *RuleSet
	paid     map[string]map[models.Term]float64
}

// load fetches the three input sets concurrently. The sets are a
// consistent-enough snapshot for reporting; serializable isolation is not
// required.
func (a *Aggregator) load(ctx context.Context, schoolID, academicYear string) (*snapshot, error) {
	if _, err := ParseYear(academicYear); err != nil {
		return nil, err
	}

	var (
		students []*models.Student
		levels   []*models.ClassLevel
		rules    []*models.FeeRule
		txns     []*models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = a.store.StudentsBySchool(gctx, schoolID)
		return err
	})
	g.Go(func() error {
		var err error
		levels, err = a.store.ClassLevels(gctx, schoolID)
		if err != nil {
			return err
		}
		rules, err = a.store.FeeRules(gctx, schoolID)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = a.store.TransactionsByPeriod(gctx, schoolID, academicYear)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snapshot{
		students: students,
		ruleSet:  NewRuleSet(NewClassOrder(levels), rules),
		paid:     PaidTotals(txns),
	}, nil
}

func (s *snapshot) balanceFor(student *models.Student, academicYear string) StudentBalance {
	b := StudentBalance{
		StudentID:  student.ID,
		StudentNo:  student.StudentNo,
		Name:       student.FullName(),
		ClassLevel: student.ClassLevelName,
	}
	for _, term := range TermSequence {
		expected := s.ruleSet.ExpectedFee(student.ClassLevelName, academicYear, term)
		paid := s.paid[student.ID][term]
		outstanding := expected - paid
		if outstanding < 0 {
			outstanding = 0
		}
		b.Terms = append(b.Terms, TermBalance{Term: term, Expected: expected, Paid: paid, Outstanding: outstanding})
		b.TotalExpected += expected
		b.TotalPaid += paid
		b.TotalOutstanding += outstanding
	}
	return b
}

// StudentBalance computes one student's per-term position for a year.
func (a *Aggregator) StudentBalance(ctx context.Context, studentID, academicYear string) (*StudentBalance, error) {
	student, err := a.store.Student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	snap, err := a.load(ctx, student.SchoolID, academicYear)
	if err != nil {
		return nil, err
	}
	b := snap.balanceFor(student, academicYear)
	return &b, nil
}

// SchoolSummary rolls the whole school up into one expected/paid/outstanding.
func (a *Aggregator) SchoolSummary(ctx context.Context, schoolID, academicYear string) (*Summary, error) {
	snap, err := a.load(ctx, schoolID, academicYear)
	if err != nil {
		return nil, err
	}
	var sum Summary
	for _, st := range snap.students {
		b := snap.balanceFor(st, academicYear)
		sum.Expected += b.TotalExpected
		sum.Paid += b.TotalPaid
		sum.Outstanding += b.TotalOutstanding
	}
	return &sum, nil
}

// ClassSummaries rolls balances up per class level, in class order.
func (a *Aggregator) ClassSummaries(ctx context.Context, schoolID, academicYear string) ([]ClassSummary, error) {
	snap, err := a.load(ctx, schoolID, academicYear)
	if err != nil {
		return nil, err
	}
	byClass := make(map[string]*ClassSummary)
	for _, st := range snap.students {
		b := snap.balanceFor(st, academicYear)
		cs := byClass[st.ClassLevelName]
		if cs == nil {
			cs = &ClassSummary{ClassLevel: st.ClassLevelName}
			byClass[st.ClassLevelName] = cs
		}
		cs.Students++
		cs.Expected += b.TotalExpected
		cs.Paid += b.TotalPaid
		cs.Outstanding += b.TotalOutstanding
	}

	out := make([]ClassSummary, 0, len(byClass))
	for _, name := range snap.ruleSet.order.Names() {
		if cs, ok := byClass[name]; ok {
			out = append(out, *cs)
			delete(byClass, name)
		}
	}
	// Students whose class is not in the configured order still get a row.
	rest := make([]ClassSummary, 0, len(byClass))
	for _, cs := range byClass {
		rest = append(rest, *cs)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].ClassLevel < rest[j].ClassLevel })
	return append(out, rest...), nil
}

// TermComparison rolls the school up term by term.
func (a *Aggregator) TermComparison(ctx context.Context, schoolID, academicYear string) ([]TermBalance, error) {
	snap, err := a.load(ctx, schoolID, academicYear)
	if err != nil {
		return nil, err
	}
	out := make([]TermBalance, len(TermSequence))
	for i, term := range TermSequence {
		out[i].Term = term
	}
	for _, st := range snap.students {
		b := snap.balanceFor(st, academicYear)
		for i := range b.Terms {
			out[i].Expected += b.Terms[i].Expected
			out[i].Paid += b.Terms[i].Paid
			out[i].Outstanding += b.Terms[i].Outstanding
		}
	}
	return out, nil
}

// Debtors lists students whose total outstanding strictly exceeds the
// threshold, sorted by outstanding descending, paginated. A student owing
// exactly MinOutstanding (including 0) never appears.
func (a *Aggregator) Debtors(ctx context.Context, q DebtorsQuery) (*DebtorsPage, error) {
	snap, err := a.load(ctx, q.SchoolID, q.AcademicYear)
	if err != nil {
		return nil, err
	}

	var debtors []StudentBalance
	for _, st := range snap.students {
		if q.ClassLevel != "" && st.ClassLevelName != q.ClassLevel {
			continue
		}
		if q.Search != "" && !matchesSearch(st, q.Search) {
			continue
		}
		b := snap.balanceFor(st, q.AcademicYear)
		if b.TotalOutstanding <= q.MinOutstanding {
			continue
		}
		if q.MaxOutstanding != nil && b.TotalOutstanding > *q.MaxOutstanding {
			continue
		}
		debtors = append(debtors, b)
	}
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].TotalOutstanding > debtors[j].TotalOutstanding
	})

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total := len(debtors)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &DebtorsPage{
		TotalDebtors: total,
		TotalPages:   totalPages,
		CurrentPage:  page,
		PageSize:     limit,
		Debtors:      debtors[start:end],
	}, nil
}

func matchesSearch(st *models.Student, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(st.FullName()), s) ||
		strings.Contains(strings.ToLower(st.StudentNo), s)
}
