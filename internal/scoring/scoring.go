package scoring

import (
	"errors"
	"math"

	"github.com/edukit/classroom-sync/internal/ledger"
)

// ErrInvalidInput covers malformed quantities: non-positive totals,
// negative correct counts, or correct > total.
var ErrInvalidInput = errors.New("invalid input")

// Percentage computes correct/total as a percentage, rounded to 2 decimals.
func Percentage(correct, total int) (float64, error) {
	if total <= 0 || correct < 0 || correct > total {
		return 0, ErrInvalidInput
	}
	pct := float64(correct) / float64(total) * 100
	return math.Round(pct*100) / 100, nil
}

// Points awards raw count of correct answers; no partial credit.
func Points(correct int) int { return correct }

// BestOf selects the attempt with the highest percentage. Ties keep the
// earliest attempt in the supplied order, so the selection is stable.
func BestOf(attempts []ledger.Attempt) (ledger.Attempt, error) {
	if len(attempts) == 0 {
		return ledger.Attempt{}, errors.New("no attempts")
	}
	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Percentage > best.Percentage {
			best = a
		}
	}
	return best, nil
}

// ToExternalScale converts a raw points count to the grading platform's
// scale. totalQuestions must be positive; callers substitute totalQuestions
// for maxExternalPoints when the platform's max is unknown (1:1 scale).
func ToExternalScale(bestPoints, totalQuestions int, maxExternalPoints float64) (float64, error) {
	if totalQuestions <= 0 {
		return 0, ErrInvalidInput
	}
	return float64(bestPoints) / float64(totalQuestions) * maxExternalPoints, nil
}
