package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tendo-schools/app/models"
)

func testOrder() *ClassOrder {
	return NewClassOrder([]*models.ClassLevel{
		{ID: "l5", SchoolID: "sch-1", Name: "Grade 5", Position: 4, IsActive: true},
		{ID: "l1", SchoolID: "sch-1", Name: "Grade 1", Position: 0, IsActive: true},
		{ID: "l2", SchoolID: "sch-1", Name: "Grade 2", Position: 1, IsActive: true},
		{ID: "l3", SchoolID: "sch-1", Name: "Grade 3", Position: 2, IsActive: true},
		{ID: "l4", SchoolID: "sch-1", Name: "Grade 4", Position: 3, IsActive: true},
		{ID: "l6", SchoolID: "sch-1", Name: "Grade 6", Position: 5, IsActive: false},
	})
}

func TestClassOrder(t *testing.T) {
	order := testOrder()

	assert.Equal(t, []string{"Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5"}, order.Names())
	assert.Equal(t, 0, order.Index("Grade 1"))
	assert.Equal(t, 4, order.Index("Grade 5"))
	assert.Equal(t, -1, order.Index("Grade 6"), "inactive levels are excluded")
	assert.Equal(t, -1, order.Index("Nursery"))
}

func rule(from, to string, term models.Term, amount float64) *models.FeeRule {
	return &models.FeeRule{
		SchoolID:     "sch-1",
		AcademicYear: "2025/2026",
		Term:         term,
		FromClass:    from,
		ToClass:      to,
		Amount:       amount,
	}
}

func TestExpectedFeeRangeInclusive(t *testing.T) {
	rs := NewRuleSet(testOrder(), []*models.FeeRule{
		rule("Grade 1", "Grade 3", models.TermOne, 1000),
	})

	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 1", "2025/2026", models.TermOne))
	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 2", "2025/2026", models.TermOne))
	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 3", "2025/2026", models.TermOne))
	assert.Equal(t, 0.0, rs.ExpectedFee("Grade 4", "2025/2026", models.TermOne))
}

func TestExpectedFeeSwappedBounds(t *testing.T) {
	rs := NewRuleSet(testOrder(), []*models.FeeRule{
		rule("Grade 3", "Grade 1", models.TermOne, 1000),
	})

	// Authors may enter the range in either direction.
	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 1", "2025/2026", models.TermOne))
	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 2", "2025/2026", models.TermOne))
	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 3", "2025/2026", models.TermOne))
}

func TestExpectedFeeLastMatchWins(t *testing.T) {
	rs := NewRuleSet(testOrder(), []*models.FeeRule{
		rule("Grade 1", "Grade 5", models.TermOne, 1000),
		rule("Grade 2", "Grade 2", models.TermOne, 1500),
	})

	assert.Equal(t, 1500.0, rs.ExpectedFee("Grade 2", "2025/2026", models.TermOne))
	assert.Equal(t, 1000.0, rs.ExpectedFee("Grade 3", "2025/2026", models.TermOne))
}

func TestExpectedFeeNoMatch(t *testing.T) {
	rs := NewRuleSet(testOrder(), []*models.FeeRule{
		rule("Grade 1", "Grade 3", models.TermOne, 1000),
	})

	// Wrong term, wrong year and unknown class all resolve to 0, not errors.
	assert.Equal(t, 0.0, rs.ExpectedFee("Grade 1", "2025/2026", models.TermTwo))
	assert.Equal(t, 0.0, rs.ExpectedFee("Grade 1", "2026/2027", models.TermOne))
	assert.Equal(t, 0.0, rs.ExpectedFee("Nursery", "2025/2026", models.TermOne))
}

func TestExpectedFeePure(t *testing.T) {
	rs := NewRuleSet(testOrder(), []*models.FeeRule{
		rule("Grade 1", "Grade 5", models.TermOne, 1000),
		rule("Grade 4", "Grade 5", models.TermOne, 1200),
	})

	first := rs.ExpectedFee("Grade 4", "2025/2026", models.TermOne)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, rs.ExpectedFee("Grade 4", "2025/2026", models.TermOne))
	}
}
