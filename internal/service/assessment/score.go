package assessment

import (
	"math"

	"github.com/splax/learnhub/internal/domain"
)

// Result is the outcome of scoring one submission.
type Result struct {
	Score      int
	MaxScore   int
	Percentage float64
}

// Score awards each question its points when the chosen option is the correct
// one. Unanswered and unknown questions score nothing. Percentage is rounded to
// two decimals.
func Score(questions []domain.Question, answers map[int64]int) Result {
	var r Result
	for _, q := range questions {
		points := max(q.Points, 1)
		r.MaxScore += points
		if chosen, ok := answers[q.ID]; ok && chosen == q.CorrectOption {
			r.Score += points
		}
	}
	if r.MaxScore > 0 {
		r.Percentage = math.Round(float64(r.Score)*10000/float64(r.MaxScore)) / 100
	}
	return r
}

// Passed reports whether percentage meets the passing score.
func Passed(percentage float64, passingScore int) bool {
	return percentage >= float64(passingScore)
}
