package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tendo-schools/app/models"
)

func TestParseYear(t *testing.T) {
	start, err := ParseYear("2025/2026")
	require.NoError(t, err)
	assert.Equal(t, 2025, start)

	for _, bad := range []string{"", "2025", "2025-2026", "2025/2027", "abcd/efgh"} {
		_, err := ParseYear(bad)
		assert.Error(t, err, "label %q should be rejected", bad)
		assert.True(t, IsValidation(err))
	}
}

func TestNextYear(t *testing.T) {
	next, err := NextYear("2025/2026")
	require.NoError(t, err)
	assert.Equal(t, "2026/2027", next)
}

func TestNextPeriod(t *testing.T) {
	year, term, crossed, err := NextPeriod("2025/2026", models.TermOne)
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", year)
	assert.Equal(t, models.TermTwo, term)
	assert.False(t, crossed)

	year, term, crossed, err = NextPeriod("2025/2026", models.TermThree)
	require.NoError(t, err)
	assert.Equal(t, "2026/2027", year)
	assert.Equal(t, models.TermOne, term)
	assert.True(t, crossed)

	_, _, _, err = NextPeriod("2025/2026", models.Term("Term 4"))
	assert.Error(t, err)
}
