package analytics

import (
	"strconv"

	"github.com/formpulse/formpulse/models"
)

// QuestionSummary is the per-question breakdown shown on a survey's results
// page. Exactly one of Options, Average, or Answers is populated depending on
// the question type.
type QuestionSummary struct {
	QuestionID uint          `json:"questionId"`
	Title      string        `json:"title"`
	Type       string        `json:"type"`
	Answered   int           `json:"answered"`
	Options    []OptionCount `json:"options,omitempty"`
	Average    *float64      `json:"average,omitempty"`
	Answers    []string      `json:"answers,omitempty"`
}

// SummarizeQuestions builds a summary for every question of the survey.
// Choice questions get option tallies, scale questions an average score, and
// everything else the collected raw answers.
func SummarizeQuestions(survey models.Survey, responses []models.Response) []QuestionSummary {
	summaries := make([]QuestionSummary, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		qs := QuestionSummary{
			QuestionID: q.ID,
			Title:      q.Title,
			Type:       q.Type.String(),
		}

		switch {
		case q.Type.IsChoice():
			qs.Options = OptionTally(survey, responses, q.ID)
			for _, r := range responses {
				if answeredQuestion(r, q.ID) {
					qs.Answered++
				}
			}
		case q.Type.IsScale():
			var sum, count int
			for _, r := range responses {
				for _, a := range Normalize(r.Answers) {
					if a.QuestionID != q.ID || !a.Answered() {
						continue
					}
					value, err := strconv.Atoi(a.Value)
					if err != nil {
						continue
					}
					sum += value
					count++
				}
			}
			qs.Answered = count
			if count > 0 {
				avg := float64(sum) / float64(count)
				qs.Average = &avg
			}
		default:
			for _, r := range responses {
				for _, a := range Normalize(r.Answers) {
					if a.QuestionID == q.ID && a.Answered() {
						qs.Answers = append(qs.Answers, a.Value)
					}
				}
			}
			qs.Answered = len(qs.Answers)
		}

		summaries = append(summaries, qs)
	}
	return summaries
}

func answeredQuestion(r models.Response, questionID uint) bool {
	for _, a := range Normalize(r.Answers) {
		if a.QuestionID == questionID && a.Answered() {
			return true
		}
	}
	return false
}
