package finance

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tendo-schools/app/models"
)

const testSchool = "sch-1"

// ledgerFixture seeds a school with classes P1..P7 and a Grade-style fee
// structure: 2025/2026 terms cost 1000/800/700 for every class, 2026/2027
// Term 1 costs 900.
func ledgerFixture(t *testing.T) (*MemoryStore, *models.Student) {
	t.Helper()
	store := NewMemoryStore()

	names := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"}
	for i, n := range names {
		store.AddClassLevels(testSchool, &models.ClassLevel{
			ID: "lvl-" + n, SchoolID: testSchool, Name: n, Position: i, IsActive: true,
		})
	}
	for term, amount := range map[models.Term]float64{
		models.TermOne:   1000,
		models.TermTwo:   800,
		models.TermThree: 700,
	} {
		store.AddFeeRule(&models.FeeRule{
			SchoolID: testSchool, AcademicYear: "2025/2026", Term: term,
			FromClass: "P1", ToClass: "P7", Amount: amount,
		})
	}
	store.AddFeeRule(&models.FeeRule{
		SchoolID: testSchool, AcademicYear: "2026/2027", Term: models.TermOne,
		FromClass: "P1", ToClass: "P7", Amount: 900,
	})

	student := &models.Student{
		ID: "stu-1", SchoolID: testSchool, StudentNo: "S001",
		FirstName: "Kato", LastName: "Mugisha",
		ClassLevelID: "lvl-P4", ClassLevelName: "P4", IsActive: true,
	}
	store.AddStudent(student)
	return store, student
}

func payment(studentID string, term models.Term, amount float64) PaymentRequest {
	return PaymentRequest{
		StudentID:    studentID,
		AcademicYear: "2025/2026",
		Term:         term,
		Amount:       amount,
		Kind:         models.KindPayment,
		Method:       models.MethodCash,
		Actor:        "bursar-1",
	}
}

func conservedTotal(res *PaymentResult) float64 {
	total := res.Recorded.Amount + res.Unallocated
	for _, s := range res.Spills {
		total += s.Amount
	}
	return total
}

func TestApplyPaymentExact(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 1000))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.Recorded.Amount)
	assert.Equal(t, models.TermOne, res.Recorded.Term)
	assert.Empty(t, res.Spills)
	assert.Empty(t, res.Credits)
	assert.Zero(t, res.Unallocated)
	assert.Len(t, store.Transactions(), 1)
}

// Term 1 expects 1000; a 1500 payment fills Term 1 and spills 500 into Term 2.
func TestApplyPaymentSpillsToNextTerm(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 1500))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.Recorded.Amount)
	require.Len(t, res.Spills, 1)
	assert.Equal(t, models.TermTwo, res.Spills[0].Term)
	assert.Equal(t, "2025/2026", res.Spills[0].AcademicYear)
	assert.Equal(t, 500.0, res.Spills[0].Amount)
	assert.Contains(t, res.Spills[0].Note, "Carryover from 2025/2026 Term 1")
	assert.Empty(t, res.Credits)
	assert.Equal(t, 1500.0, conservedTotal(res))

	paid, err := store.PaidTotal(context.Background(), student.ID, "2025/2026", models.TermTwo)
	require.NoError(t, err)
	assert.Equal(t, 500.0, paid)
}

// A Term 3 payment 300 over the remaining balance crosses into 2026/2027:
// a Credit is written for the carried amount plus the matching transaction.
func TestApplyPaymentCrossesYearWithCredit(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermThree, 1000))
	require.NoError(t, err)

	assert.Equal(t, 700.0, res.Recorded.Amount)
	require.Len(t, res.Credits, 1)
	credit := res.Credits[0]
	assert.Equal(t, "2026/2027", credit.AcademicYear)
	assert.Equal(t, models.TermOne, credit.Term)
	assert.Equal(t, 300.0, credit.Amount)
	assert.Equal(t, "Overpayment from 2025/2026 Term 3", credit.Source)

	require.Len(t, res.Spills, 1)
	assert.Equal(t, "2026/2027", res.Spills[0].AcademicYear)
	assert.Equal(t, models.TermOne, res.Spills[0].Term)
	assert.Equal(t, 300.0, res.Spills[0].Amount)
	assert.Zero(t, res.Unallocated)
	assert.Equal(t, 1000.0, conservedTotal(res))
	assert.Len(t, store.Credits(), 1)
}

// Once no further rule resolves, the remainder comes back as unallocated
// instead of disappearing.
func TestApplyPaymentUnallocatedRemainder(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	// 1000 + 800 + 700 + 900 covers everything with a rule; 500 more has
	// nowhere to go (2026/2027 Term 2 has no rule).
	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 3900))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, res.Recorded.Amount)
	require.Len(t, res.Spills, 3)
	assert.Equal(t, 500.0, res.Unallocated)
	assert.Equal(t, 3900.0, conservedTotal(res))
}

func TestApplyPaymentZeroStillRecorded(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	_, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 1000))
	require.NoError(t, err)

	// Term already settled: a fresh payment applies 0 to it but the attempt
	// is still recorded, and the money moves on.
	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 200))
	require.NoError(t, err)
	assert.Zero(t, res.Recorded.Amount)
	require.Len(t, res.Spills, 1)
	assert.Equal(t, models.TermTwo, res.Spills[0].Term)
	assert.Equal(t, 200.0, res.Spills[0].Amount)
}

func TestApplyPaymentNegativeAdjustment(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	req := payment(student.ID, models.TermOne, -200)
	req.Kind = models.KindAdjustment
	res, err := engine.ApplyPayment(context.Background(), req)
	require.NoError(t, err)

	// Credit notes keep their sign and never carry over.
	assert.Equal(t, -200.0, res.Recorded.Amount)
	assert.Empty(t, res.Spills)
	assert.Zero(t, res.Unallocated)

	paid, err := store.PaidTotal(context.Background(), student.ID, "2025/2026", models.TermOne)
	require.NoError(t, err)
	assert.Equal(t, -200.0, paid)
}

func TestApplyPaymentNegativePaymentCoerced(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, -400))
	require.NoError(t, err)
	assert.Equal(t, 400.0, res.Recorded.Amount)
}

func TestApplyPaymentCarryoverCapped(t *testing.T) {
	store := NewMemoryStore()
	store.AddClassLevels(testSchool, &models.ClassLevel{
		ID: "lvl-P1", SchoolID: testSchool, Name: "P1", Position: 0, IsActive: true,
	})
	// Every term for six years costs 10: a large payment could walk nearly
	// forever without the advance cap.
	for year := 2025; year < 2031; year++ {
		for _, term := range TermSequence {
			store.AddFeeRule(&models.FeeRule{
				SchoolID: testSchool, AcademicYear: YearLabel(year), Term: term,
				FromClass: "P1", ToClass: "P1", Amount: 10,
			})
		}
	}
	student := &models.Student{
		ID: "stu-cap", SchoolID: testSchool, StudentNo: "S900",
		FirstName: "Amina", LastName: "Nansubuga",
		ClassLevelID: "lvl-P1", ClassLevelName: "P1", IsActive: true,
	}
	store.AddStudent(student)

	engine := NewEngine(store)
	res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 1000))
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.Recorded.Amount)
	assert.Len(t, res.Spills, maxTermAdvances)
	assert.Equal(t, 1000.0-13*10, res.Unallocated)
	assert.Equal(t, 1000.0, conservedTotal(res))
}

func TestApplyPaymentValidation(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)
	ctx := context.Background()

	req := payment(student.ID, models.TermOne, 100)
	req.AcademicYear = "2025"
	_, err := engine.ApplyPayment(ctx, req)
	assert.True(t, IsValidation(err))

	req = payment(student.ID, "Term 9", 100)
	_, err = engine.ApplyPayment(ctx, req)
	assert.True(t, IsValidation(err))

	req = payment(student.ID, models.TermOne, 100)
	req.Kind = "donation"
	_, err = engine.ApplyPayment(ctx, req)
	assert.True(t, IsValidation(err))

	_, err = engine.ApplyPayment(ctx, payment("missing", models.TermOne, 100))
	assert.True(t, IsNotFound(err))
	assert.Empty(t, store.Transactions(), "validation failures must write nothing")
}

// Two concurrent 600 payments against an expected fee of 1000 must apply
// exactly 1000 to Term 1 and spill the remaining 200, in either order.
func TestApplyPaymentSerialized(t *testing.T) {
	store, student := ledgerFixture(t)
	engine := NewEngine(store)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, 600))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	paidT1, err := store.PaidTotal(context.Background(), student.ID, "2025/2026", models.TermOne)
	require.NoError(t, err)
	paidT2, err := store.PaidTotal(context.Background(), student.ID, "2025/2026", models.TermTwo)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, paidT1)
	assert.Equal(t, 200.0, paidT2)
}

// Without serialization, both writers plan from the same stale paid total and
// together apply 1200 against a 1000 expectation. This documents the race the
// per-student lock exists to prevent.
func TestUnsynchronizedPlansDoubleApply(t *testing.T) {
	staleAlreadyPaid := 0.0

	first, _ := planApplication(600, 1000, staleAlreadyPaid)
	second, _ := planApplication(600, 1000, staleAlreadyPaid)

	assert.Equal(t, 1200.0, first+second, "both writers apply in full from the stale snapshot")

	// The serialized ordering instead caps the second application.
	first, excess := planApplication(600, 1000, 0)
	require.Zero(t, excess)
	second, excess = planApplication(600, 1000, first)
	assert.Equal(t, 400.0, second)
	assert.Equal(t, 200.0, excess)
}

// Conservation: recorded + spills + unallocated always equals the amount, and
// every year-crossing credit mirrors money that actually moved or stopped.
func TestApplyPaymentConservation(t *testing.T) {
	for _, amount := range []float64{0, 1, 250, 999.5, 1000, 1500, 2500, 3900, 10000} {
		store, student := ledgerFixture(t)
		engine := NewEngine(store)

		res, err := engine.ApplyPayment(context.Background(), payment(student.ID, models.TermOne, amount))
		require.NoError(t, err)
		assert.InDelta(t, amount, conservedTotal(res), 1e-9, "amount %v not conserved", amount)
	}
}
