package finance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tendo-schools/app/models"
)

// aggregatorFixture seeds three P4 students against the standard fee
// structure and pays them to different depths through the engine.
func aggregatorFixture(t *testing.T) (*MemoryStore, *Aggregator) {
	t.Helper()
	store, first := ledgerFixture(t)
	engine := NewEngine(store)
	ctx := context.Background()

	second := &models.Student{
		ID: "stu-2", SchoolID: testSchool, StudentNo: "S002",
		FirstName: "Brenda", LastName: "Atim",
		ClassLevelID: "lvl-P4", ClassLevelName: "P4", IsActive: true,
	}
	third := &models.Student{
		ID: "stu-3", SchoolID: testSchool, StudentNo: "S003",
		FirstName: "Charles", LastName: "Okello",
		ClassLevelID: "lvl-P5", ClassLevelName: "P5", IsActive: true,
	}
	store.AddStudent(second)
	store.AddStudent(third)

	// stu-1 fully settles the year plus carryover; stu-2 pays part of Term 1;
	// stu-3 pays nothing.
	_, err := engine.ApplyPayment(ctx, payment(first.ID, models.TermOne, 2500))
	require.NoError(t, err)
	_, err = engine.ApplyPayment(ctx, payment(second.ID, models.TermOne, 400))
	require.NoError(t, err)

	return store, NewAggregator(store)
}

func TestStudentBalanceAfterCarryover(t *testing.T) {
	_, agg := aggregatorFixture(t)

	// 2500 settles Term 1 (1000), Term 2 (800) and Term 3 (700) exactly.
	b, err := agg.StudentBalance(context.Background(), "stu-1", "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, b.TotalExpected)
	assert.Equal(t, 2500.0, b.TotalPaid)
	assert.Zero(t, b.TotalOutstanding)
	for _, tb := range b.Terms {
		assert.Zero(t, tb.Outstanding, "term %s", tb.Term)
	}
}

func TestStudentBalancePartial(t *testing.T) {
	_, agg := aggregatorFixture(t)

	b, err := agg.StudentBalance(context.Background(), "stu-2", "2025/2026")
	require.NoError(t, err)
	require.Len(t, b.Terms, 3)
	assert.Equal(t, 600.0, b.Terms[0].Outstanding)
	assert.Equal(t, 800.0, b.Terms[1].Outstanding)
	assert.Equal(t, 700.0, b.Terms[2].Outstanding)
	assert.Equal(t, 2100.0, b.TotalOutstanding)
}

func TestOutstandingNeverNegative(t *testing.T) {
	store, agg := aggregatorFixture(t)
	engine := NewEngine(store)

	// Overpay far beyond every rule so some money ends up unallocated; the
	// aggregated view must still never report a negative outstanding.
	_, err := engine.ApplyPayment(context.Background(), payment("stu-1", models.TermOne, 5000))
	require.NoError(t, err)

	balances := []string{"stu-1", "stu-2", "stu-3"}
	for _, id := range balances {
		b, err := agg.StudentBalance(context.Background(), id, "2025/2026")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.TotalOutstanding, 0.0)
		for _, tb := range b.Terms {
			assert.GreaterOrEqual(t, tb.Outstanding, 0.0)
		}
	}

	sum, err := agg.SchoolSummary(context.Background(), testSchool, "2025/2026")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sum.Outstanding, 0.0)
}

func TestSchoolSummary(t *testing.T) {
	_, agg := aggregatorFixture(t)

	sum, err := agg.SchoolSummary(context.Background(), testSchool, "2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 7500.0, sum.Expected, "3 students x 2500")
	assert.Equal(t, 2900.0, sum.Paid)
	assert.Equal(t, 4600.0, sum.Outstanding)
}

func TestClassSummaries(t *testing.T) {
	_, agg := aggregatorFixture(t)

	rows, err := agg.ClassSummaries(context.Background(), testSchool, "2025/2026")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Rows come back in class order: P4 before P5.
	assert.Equal(t, "P4", rows[0].ClassLevel)
	assert.Equal(t, 2, rows[0].Students)
	assert.Equal(t, 5000.0, rows[0].Expected)
	assert.Equal(t, 2900.0, rows[0].Paid)
	assert.Equal(t, 2100.0, rows[0].Outstanding)

	assert.Equal(t, "P5", rows[1].ClassLevel)
	assert.Equal(t, 2500.0, rows[1].Outstanding)
}

func TestTermComparison(t *testing.T) {
	_, agg := aggregatorFixture(t)

	rows, err := agg.TermComparison(context.Background(), testSchool, "2025/2026")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.TermOne, rows[0].Term)
	assert.Equal(t, 3000.0, rows[0].Expected)
	assert.Equal(t, 1400.0, rows[0].Paid)
	assert.Equal(t, 1600.0, rows[0].Outstanding)

	assert.Equal(t, models.TermTwo, rows[1].Term)
	assert.Equal(t, 800.0, rows[1].Paid, "stu-1 carryover landed in Term 2")
	assert.Equal(t, models.TermThree, rows[2].Term)
	assert.Equal(t, 700.0, rows[2].Paid)
}

func TestDebtorsThresholdIsStrict(t *testing.T) {
	_, agg := aggregatorFixture(t)

	page, err := agg.Debtors(context.Background(), DebtorsQuery{
		SchoolID:       testSchool,
		AcademicYear:   "2025/2026",
		MinOutstanding: 0,
	})
	require.NoError(t, err)

	// stu-1 owes exactly 0 and must not appear even with min 0.
	assert.Equal(t, 2, page.TotalDebtors)
	for _, d := range page.Debtors {
		assert.NotEqual(t, "stu-1", d.StudentID)
		assert.Greater(t, d.TotalOutstanding, 0.0)
	}
}

func TestDebtorsSortedAndPaginated(t *testing.T) {
	_, agg := aggregatorFixture(t)

	page, err := agg.Debtors(context.Background(), DebtorsQuery{
		SchoolID:       testSchool,
		AcademicYear:   "2025/2026",
		MinOutstanding: 0,
		Page:           1,
		Limit:          1,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, page.TotalDebtors)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Debtors, 1)
	assert.Equal(t, "stu-3", page.Debtors[0].StudentID, "largest outstanding first")
	assert.Equal(t, 2500.0, page.Debtors[0].TotalOutstanding)

	page2, err := agg.Debtors(context.Background(), DebtorsQuery{
		SchoolID:       testSchool,
		AcademicYear:   "2025/2026",
		MinOutstanding: 0,
		Page:           2,
		Limit:          1,
	})
	require.NoError(t, err)
	require.Len(t, page2.Debtors, 1)
	assert.Equal(t, "stu-2", page2.Debtors[0].StudentID)
}

func TestDebtorsFilters(t *testing.T) {
	_, agg := aggregatorFixture(t)
	ctx := context.Background()

	byClass, err := agg.Debtors(ctx, DebtorsQuery{
		SchoolID: testSchool, AcademicYear: "2025/2026", ClassLevel: "P5",
	})
	require.NoError(t, err)
	require.Len(t, byClass.Debtors, 1)
	assert.Equal(t, "stu-3", byClass.Debtors[0].StudentID)

	max := 2200.0
	capped, err := agg.Debtors(ctx, DebtorsQuery{
		SchoolID: testSchool, AcademicYear: "2025/2026", MaxOutstanding: &max,
	})
	require.NoError(t, err)
	require.Len(t, capped.Debtors, 1)
	assert.Equal(t, "stu-2", capped.Debtors[0].StudentID)

	search, err := agg.Debtors(ctx, DebtorsQuery{
		SchoolID: testSchool, AcademicYear: "2025/2026", Search: "atim",
	})
	require.NoError(t, err)
	require.Len(t, search.Debtors, 1)
	assert.Equal(t, "stu-2", search.Debtors[0].StudentID)
}

func TestAggregatorRejectsBadYear(t *testing.T) {
	_, agg := aggregatorFixture(t)

	_, err := agg.SchoolSummary(context.Background(), testSchool, "not-a-year")
	assert.True(t, IsValidation(err))
}
