package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameDayIgnoresReaderOffset(t *testing.T) {
	stored := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	eastern := time.FixedZone("UTC-5", -5*3600)

	assert.True(t, SameDay(stored.In(eastern), stored))
	assert.True(t, SameDay(stored.Add(23*time.Hour), stored))
	assert.False(t, SameDay(stored.Add(-time.Minute), stored))
}

func TestCourseNamesContains(t *testing.T) {
	names := CourseNames{" Hair Styling", "Makeup"}

	assert.True(t, names.Contains("hair styling "))
	assert.True(t, names.Contains("MAKEUP"))
	assert.False(t, names.Contains("Nails"))
	assert.False(t, names.Contains("  "))
}
