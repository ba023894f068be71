package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/board-result-api/internal/models"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		obtained float64
		total    float64
		expected float64
	}{
		{"Full Marks", 500, 500, 100},
		{"Zero Obtained", 0, 500, 0},
		{"Simple Fraction", 450, 500, 90},
		{"Two Decimals", 333, 500, 66.6},
		{"Rounds Repeating", 251, 600, 41.83},
		{"Half Rounds To Even Down", 1, 800, 0.12},
		{"Half Rounds To Even Up", 3, 800, 0.38},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentage(tt.obtained, tt.total)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestPercentageInvalidTotal(t *testing.T) {
	_, err := Percentage(10, 0)
	assert.ErrorIs(t, err, ErrInvalidTotal)

	_, err = Percentage(10, -5)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestLetterGradeBands(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.99, "A"},
		{80, "A"},
		{79.99, "B+"},
		{70, "B+"},
		{60, "B"},
		{50, "C+"},
		{40, "C"},
		{39.99, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LetterGrade(tt.percentage), "percentage %v", tt.percentage)
	}
}

func TestGradeForPassFailPolicy(t *testing.T) {
	assert.Equal(t, "", GradeFor(models.PolicyPassFail, 92))
	assert.Equal(t, "A+", GradeFor(models.PolicyLettered, 92))
}

func TestStatusThresholds(t *testing.T) {
	assert.Equal(t, models.ResultStatusPass, Status(35, 35))
	assert.Equal(t, models.ResultStatusFail, Status(34.99, 35))
	assert.Equal(t, models.ResultStatusPass, Status(40, 40))
	assert.Equal(t, models.ResultStatusFail, Status(39.5, 40))
}

func TestSubjectPassBoundary(t *testing.T) {
	assert.True(t, SubjectPass(40, 100))
	assert.True(t, SubjectPass(33, 100))
	assert.False(t, SubjectPass(32, 100))
	assert.True(t, SubjectPass(16.5, 50))
	assert.False(t, SubjectPass(16, 50))
}

func TestDerive(t *testing.T) {
	out, err := Derive(models.PolicyLettered, 450, 500, DefaultPassingThreshold)
	require.NoError(t, err)
	assert.Equal(t, 90.0, out.Percentage)
	assert.Equal(t, "A+", out.Grade)
	assert.Equal(t, models.ResultStatusPass, out.Status)

	out, err = Derive(models.PolicyPassFail, 150, 500, DefaultPassingThreshold)
	require.NoError(t, err)
	assert.Equal(t, 30.0, out.Percentage)
	assert.Equal(t, "", out.Grade)
	assert.Equal(t, models.ResultStatusFail, out.Status)

	_, err = Derive(models.PolicyLettered, 10, 0, DefaultPassingThreshold)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}
