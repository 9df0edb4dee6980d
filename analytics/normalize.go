package analytics

import (
	"strings"

	"github.com/formpulse/formpulse/models"
)

type AnswerKind string

const (
	AnswerSingle AnswerKind = "single"
	AnswerMulti  AnswerKind = "multi"
)

// Answer is the normalized form of a stored answer. Stored rows carry both a
// Value column and a SelectedOptions list; everything downstream of the fetch
// boundary works on this tagged shape instead of probing optional fields.
type Answer struct {
	QuestionID uint
	Kind       AnswerKind
	Value      string
	Values     []string
}

// Normalize converts stored answers into tagged single/multi answers. An
// answer with selected options is multi; anything else is single, even when
// its value is empty.
func Normalize(answers []models.Answer) []Answer {
	out := make([]Answer, 0, len(answers))
	for _, a := range answers {
		if len(a.SelectedOptions) > 0 {
			out = append(out, Answer{
				QuestionID: a.QuestionID,
				Kind:       AnswerMulti,
				Values:     a.SelectedOptions,
			})
			continue
		}
		out = append(out, Answer{
			QuestionID: a.QuestionID,
			Kind:       AnswerSingle,
			Value:      strings.TrimSpace(a.Value),
		})
	}
	return out
}

// Answered reports whether the answer carries any value at all.
func (a Answer) Answered() bool {
	if a.Kind == AnswerMulti {
		return len(a.Values) > 0
	}
	return a.Value != ""
}

// Selections returns the selected values regardless of kind, for tallying.
func (a Answer) Selections() []string {
	if a.Kind == AnswerMulti {
		return a.Values
	}
	if a.Value == "" {
		return nil
	}
	return []string{a.Value}
}
