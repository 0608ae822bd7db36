// Package progress holds the pure roadmap completion and streak math shared
// by every read path.
package progress

import (
	"math"

	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
)

// Percent returns round(100*done/total), or 0 for a roadmap without steps.
func Percent(weeks []models.Week) int {
	var done, total int
	for _, w := range weeks {
		for _, s := range w.Steps {
			total++
			if s.Completed {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// Average is the rounded mean of the given percentages, 0 when empty.
func Average(percents []int) int {
	if len(percents) == 0 {
		return 0
	}
	sum := 0
	for _, p := range percents {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(percents))))
}
