package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoursePercentage(t *testing.T) {
	assert.Equal(t, 0, CoursePercentage(0, 0))
	assert.Equal(t, 0, CoursePercentage(3, 0))
	assert.Equal(t, 50, CoursePercentage(2, 4))
	assert.Equal(t, 75, CoursePercentage(3, 4))
	assert.Equal(t, 100, CoursePercentage(3, 3))
	assert.Equal(t, 33, CoursePercentage(1, 3))
	assert.Equal(t, 67, CoursePercentage(2, 3))
	assert.Equal(t, 17, CoursePercentage(1, 6))
	assert.Equal(t, 100, CoursePercentage(9, 4), "completed is clamped to total")
	assert.Equal(t, 0, CoursePercentage(-1, 4))
}

func TestCoursePercentage_RoundsHalfUp(t *testing.T) {
	// 1/8 = 12.5
	assert.Equal(t, 13, CoursePercentage(1, 8))
}

func TestValidPercentage(t *testing.T) {
	assert.True(t, ValidPercentage(0))
	assert.True(t, ValidPercentage(100))
	assert.False(t, ValidPercentage(-1))
	assert.False(t, ValidPercentage(101))
}
