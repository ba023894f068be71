package grading

import (
	"errors"
	"math"

	"github.com/noah-isme/board-result-api/internal/models"
)

// ErrInvalidTotal is returned when total marks are zero or negative.
var ErrInvalidTotal = errors.New("total marks must be greater than zero")

const (
	// DefaultPassingThreshold is the overall pass percentage used when
	// an examination does not configure its own.
	DefaultPassingThreshold = 35.0
	// SubjectPassRatio is the fixed per-subject passing fraction.
	SubjectPassRatio = 0.33
)

// band maps a minimum percentage onto a letter grade. Evaluated
// highest-first; a boundary value belongs to the higher band.
type band struct {
	min   float64
	grade string
}

var letterBands = []band{
	{90, "A+"},
	{80, "A"},
	{70, "B+"},
	{60, "B"},
	{50, "C+"},
	{40, "C"},
}

// Percentage computes obtained/total as a percentage rounded to two
// decimals using banker's rounding.
func Percentage(obtained, total float64) (float64, error) {
	if total <= 0 {
		return 0, ErrInvalidTotal
	}
	return round2(obtained / total * 100), nil
}

// LetterGrade maps a percentage onto the A+..F band table.
func LetterGrade(percentage float64) string {
	for _, b := range letterBands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return "F"
}

// GradeFor derives the grade under the given policy. The legacy
// PASS_FAIL policy carries no letter grade.
func GradeFor(policy models.GradingPolicy, percentage float64) string {
	if policy == models.PolicyPassFail {
		return ""
	}
	return LetterGrade(percentage)
}

// Status resolves PASS or FAIL against an explicit threshold.
func Status(percentage, threshold float64) models.ResultStatus {
	if percentage >= threshold {
		return models.ResultStatusPass
	}
	return models.ResultStatusFail
}

// SubjectPass reports whether subject marks clear the 33% threshold.
func SubjectPass(obtained, maxMarks float64) bool {
	return obtained >= maxMarks*SubjectPassRatio
}

// Outcome bundles the derived fields for a result.
type Outcome struct {
	Percentage float64
	Grade      string
	Status     models.ResultStatus
}

// Derive runs the full chain: percentage, grade under the policy, and
// pass/fail status against the threshold.
func Derive(policy models.GradingPolicy, obtained, total, threshold float64) (Outcome, error) {
	pct, err := Percentage(obtained, total)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Percentage: pct,
		Grade:      GradeFor(policy, pct),
		Status:     Status(pct, threshold),
	}, nil
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
