package dedupe

import (
	"math"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// Confidence is the mean combined similarity between the original and each
// duplicate, as a rounded percentage.
func Confidence(original model.Task, duplicates []model.Task) int {
	if len(duplicates) == 0 {
		return 0
	}
	var total float64
	for _, d := range duplicates {
		total += ScorePair(original, d).Combined()
	}
	pct := int(math.Round(100 * total / float64(len(duplicates))))
	return max(0, min(100, pct))
}
