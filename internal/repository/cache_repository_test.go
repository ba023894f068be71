package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatisticsKeyScopes(t *testing.T) {
	assert.Equal(t, "stats:all", StatisticsKey("", ""))
	assert.Equal(t, "stats:exam:exam-1", StatisticsKey("exam-1", ""))
	assert.Equal(t, "stats:year:year-1", StatisticsKey("", "year-1"))
	assert.Equal(t, "stats:exam:exam-1:year:year-1", StatisticsKey("exam-1", "year-1"))
}

func TestStatisticsPatternCoversAllScopes(t *testing.T) {
	keys := []string{
		StatisticsKey("", ""),
		StatisticsKey("exam-1", ""),
		StatisticsKey("exam-1", "year-1"),
	}
	for _, key := range keys {
		assert.Regexp(t, "^stats:", key)
	}
}
