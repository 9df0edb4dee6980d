// Package analytics turns raw survey and response snapshots into the
// chart-ready summaries served to the dashboard. Every function is a pure,
// total transformation: inputs are never mutated, orphaned references and
// missing fields count as "no data" rather than errors, and identical inputs
// always produce identical outputs.
package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/formpulse/formpulse/models"
)

// TimeRange restricts aggregation to responses submitted within a lookback
// window ending at the reference time.
type TimeRange string

const (
	RangeDay     TimeRange = "day"
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
)

// ParseTimeRange maps a query parameter onto a TimeRange. Unrecognized input
// falls back to RangeMonth.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case RangeDay, RangeWeek, RangeMonth, RangeQuarter:
		return TimeRange(s)
	}
	return RangeMonth
}

// Window is the lookback duration covered by the range.
func (r TimeRange) Window() time.Duration {
	switch r {
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeQuarter:
		return 90 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// estimatedSecondsPerAnswer is the fixed per-answer cost used wherever a
// completion duration is reported. The backend does not measure real
// durations yet, so every derived duration is an estimate.
const estimatedSecondsPerAnswer = 30

// FilterByTimeRange keeps responses submitted within now-window(rng), in
// their original order. Responses without a usable timestamp are dropped,
// never errored.
func FilterByTimeRange(responses []models.Response, rng TimeRange, now time.Time) []models.Response {
	cutoff := now.Add(-rng.Window())
	out := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		if r.SubmittedAt.IsZero() || r.SubmittedAt.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterBySurvey scopes responses to one survey. A zero surveyID means "all"
// and returns the input unchanged.
func FilterBySurvey(responses []models.Response, surveyID uint) []models.Response {
	if surveyID == 0 {
		return responses
	}
	out := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		if r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out
}

// DashboardStats is the headline summary rendered at the top of the admin
// dashboard.
type DashboardStats struct {
	TotalResponses int     `json:"totalResponses"`
	TotalSurveys   int     `json:"totalSurveys"`
	ActiveSurveys  int     `json:"activeSurveys"`
	TotalUsers     int     `json:"totalUsers"`
	CompletionRate float64 `json:"completionRate"`
	// EstimatedAvgCompletionSeconds derives from answer counts, not measured
	// durations.
	EstimatedAvgCompletionSeconds float64 `json:"estimatedAvgCompletionSeconds"`
	EngagementScore               float64 `json:"engagementScore"`
}

// ComputeStats summarizes the response set. Completion rate is the share of
// responses whose answer count equals the owning survey's question count, in
// [0,100]; the engagement score is bounded to [0,10].
func ComputeStats(responses []models.Response, surveys []models.Survey, users []models.User) DashboardStats {
	stats := DashboardStats{
		TotalResponses: len(responses),
		TotalSurveys:   len(surveys),
		TotalUsers:     len(users),
	}
	for _, s := range surveys {
		if s.IsPublished {
			stats.ActiveSurveys++
		}
	}

	counts := questionCounts(surveys)
	completed := 0
	totalAnswers := 0
	for _, r := range responses {
		totalAnswers += len(r.Answers)
		if isComplete(r, counts) {
			completed++
		}
	}

	if len(responses) > 0 {
		stats.CompletionRate = float64(completed) / float64(len(responses)) * 100
		stats.EstimatedAvgCompletionSeconds = float64(totalAnswers*estimatedSecondsPerAnswer) / float64(len(responses))
	}
	stats.EngagementScore = math.Min(10, stats.CompletionRate/10+float64(stats.TotalResponses)/100)
	return stats
}

// TrendBucket is one weekday's worth of response activity.
type TrendBucket struct {
	Day            string  `json:"day"`
	Count          int     `json:"count"`
	CompletionRate float64 `json:"completionRate"`
}

// TrendsByDayOfWeek buckets responses by submission weekday, Sunday through
// Saturday. The result always has seven buckets; an empty input yields seven
// zero counts.
func TrendsByDayOfWeek(responses []models.Response, surveys []models.Survey) [7]TrendBucket {
	var buckets [7]TrendBucket
	for i := range buckets {
		buckets[i].Day = time.Weekday(i).String()[:3]
	}

	counts := questionCounts(surveys)
	var completed [7]int
	for _, r := range responses {
		if r.SubmittedAt.IsZero() {
			continue
		}
		day := int(r.SubmittedAt.Weekday())
		buckets[day].Count++
		if isComplete(r, counts) {
			completed[day]++
		}
	}
	for i := range buckets {
		if buckets[i].Count > 0 {
			buckets[i].CompletionRate = float64(completed[i]) / float64(buckets[i].Count) * 100
		}
	}
	return buckets
}

// SatisfactionSummary buckets responses by satisfaction score: >=8 very
// satisfied, >=6 satisfied, >=4 neutral, below that dissatisfied. Responses
// with no rating answer and no submission score land in Unscored; they are
// reported as unknown, never guessed.
type SatisfactionSummary struct {
	VerySatisfied int `json:"verySatisfied"`
	Satisfied     int `json:"satisfied"`
	Neutral       int `json:"neutral"`
	Dissatisfied  int `json:"dissatisfied"`
	Unscored      int `json:"unscored"`
}

// SatisfactionHistogram scores each response from its first rating or linear
// scale answer, falling back to the submission-level score when none parses.
func SatisfactionHistogram(responses []models.Response, surveys []models.Survey) SatisfactionSummary {
	types := questionTypes(surveys)
	var sum SatisfactionSummary
	for _, r := range responses {
		score, ok := satisfactionScore(r, types)
		if !ok {
			sum.Unscored++
			continue
		}
		switch {
		case score >= 8:
			sum.VerySatisfied++
		case score >= 6:
			sum.Satisfied++
		case score >= 4:
			sum.Neutral++
		default:
			sum.Dissatisfied++
		}
	}
	return sum
}

func satisfactionScore(r models.Response, types map[uint]models.QuestionType) (int, bool) {
	for _, a := range Normalize(r.Answers) {
		// missing map entries must not collide with the zero QuestionType
		qt, known := types[a.QuestionID]
		if !known || !qt.IsScale() || a.Kind != AnswerSingle {
			continue
		}
		if score, err := strconv.Atoi(a.Value); err == nil {
			return score, true
		}
	}
	if r.Score != nil {
		return *r.Score, true
	}
	return 0, false
}

// OptionCount is one choice option's tally for a question.
type OptionCount struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// OptionTally counts selected-option occurrences for a choice question across
// responses. Every option of the question appears in the result, zero counts
// included, in the survey's option order. Percentages are relative to the
// respondents who answered the question, so a multi-select option chosen by
// everyone reads 100 even when other options were also chosen. Non-choice or
// unknown questions yield nil.
func OptionTally(survey models.Survey, responses []models.Response, questionID uint) []OptionCount {
	question, ok := findQuestion(survey, questionID)
	if !ok || !question.Type.IsChoice() {
		return nil
	}

	counts := make(map[uint]int, len(question.Options))
	answered := 0
	for _, r := range responses {
		seen := false
		for _, a := range Normalize(r.Answers) {
			if a.QuestionID != questionID || !a.Answered() {
				continue
			}
			seen = true
			for _, sel := range a.Selections() {
				for _, opt := range question.Options {
					if matchesOption(opt, sel) {
						counts[opt.ID]++
						break
					}
				}
			}
		}
		if seen {
			answered++
		}
	}

	tally := make([]OptionCount, 0, len(question.Options))
	for _, opt := range question.Options {
		oc := OptionCount{Label: optionLabel(opt), Count: counts[opt.ID]}
		if answered > 0 {
			oc.Percentage = math.Round(float64(oc.Count)/float64(answered)*1000) / 10
		}
		tally = append(tally, oc)
	}
	return tally
}

// DurationBucket is one slot of the estimated completion time histogram.
type DurationBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ResponseTimeHistogram buckets responses by estimated completion time, using
// the same per-answer cost as ComputeStats.
func ResponseTimeHistogram(responses []models.Response) [4]DurationBucket {
	buckets := [4]DurationBucket{
		{Label: "< 2 min"},
		{Label: "2-5 min"},
		{Label: "5-10 min"},
		{Label: "> 10 min"},
	}
	for _, r := range responses {
		seconds := len(r.Answers) * estimatedSecondsPerAnswer
		switch {
		case seconds < 2*60:
			buckets[0].Count++
		case seconds < 5*60:
			buckets[1].Count++
		case seconds < 10*60:
			buckets[2].Count++
		default:
			buckets[3].Count++
		}
	}
	return buckets
}

func questionCounts(surveys []models.Survey) map[uint]int {
	counts := make(map[uint]int, len(surveys))
	for _, s := range surveys {
		counts[s.ID] = len(s.Questions)
	}
	return counts
}

func questionTypes(surveys []models.Survey) map[uint]models.QuestionType {
	types := make(map[uint]models.QuestionType)
	for _, s := range surveys {
		for _, q := range s.Questions {
			types[q.ID] = q.Type
		}
	}
	return types
}

func isComplete(r models.Response, questionCounts map[uint]int) bool {
	total, ok := questionCounts[r.SurveyID]
	return ok && total > 0 && len(r.Answers) == total
}

func findQuestion(survey models.Survey, questionID uint) (models.Question, bool) {
	for _, q := range survey.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return models.Question{}, false
}

func matchesOption(opt models.Option, value string) bool {
	return (opt.Value != "" && opt.Value == value) || opt.Text == value
}

func optionLabel(opt models.Option) string {
	if opt.Text != "" {
		return opt.Text
	}
	return opt.Value
}
