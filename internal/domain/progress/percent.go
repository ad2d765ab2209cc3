package progress

import "math"

// CoursePercentage is round(100*completed/total), 0 for an empty course.
// completed is clamped to total so a stale count can never report more than 100.
func CoursePercentage(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	if completed < 0 {
		completed = 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// ValidPercentage reports whether p is a lesson percentage the API accepts.
func ValidPercentage(p int) bool {
	return p >= 0 && p <= 100
}
