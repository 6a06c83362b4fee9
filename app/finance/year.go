package finance

import (
	"fmt"
	"strconv"
	"strings"

	"tendo-schools/app/models"
)

// Academic years are labels like "2025/2026", ordered by start year. There is
// no ambient "current year" anywhere; callers pass the year explicitly.

// TermSequence is the fixed order terms are billed and settled in.
var TermSequence = []models.Term{models.TermOne, models.TermTwo, models.TermThree}

// ParseYear validates an academic year label and returns its start year.
func ParseYear(label string) (int, error) {
	parts := strings.Split(label, "/")
	if len(parts) != 2 {
		return 0, &ValidationError{Field: "academic_year", Reason: fmt.Sprintf("%q is not a valid academic year, expected e.g. 2025/2026", label)}
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &ValidationError{Field: "academic_year", Reason: fmt.Sprintf("%q is not a valid academic year", label)}
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil || end != start+1 {
		return 0, &ValidationError{Field: "academic_year", Reason: fmt.Sprintf("%q is not a valid academic year", label)}
	}
	return start, nil
}

// YearLabel builds the label for an academic year starting in start.
func YearLabel(start int) string {
	return fmt.Sprintf("%d/%d", start, start+1)
}

// NextYear returns the academic year that follows label.
func NextYear(label string) (string, error) {
	start, err := ParseYear(label)
	if err != nil {
		return "", err
	}
	return YearLabel(start + 1), nil
}

// TermIndex returns the position of t in TermSequence, or -1.
func TermIndex(t models.Term) int {
	for i, s := range TermSequence {
		if s == t {
			return i
		}
	}
	return -1
}

// NextPeriod advances one term, rolling into Term 1 of the following academic
// year after Term 3. crossedYear reports whether the year boundary was crossed.
func NextPeriod(year string, term models.Term) (nextYear string, nextTerm models.Term, crossedYear bool, err error) {
	idx := TermIndex(term)
	if idx < 0 {
		return "", "", false, &ValidationError{Field: "term", Reason: fmt.Sprintf("unknown term %q", term)}
	}
	if idx < len(TermSequence)-1 {
		return year, TermSequence[idx+1], false, nil
	}
	ny, err := NextYear(year)
	if err != nil {
		return "", "", false, err
	}
	return ny, TermSequence[0], true, nil
}
