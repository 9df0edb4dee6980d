package analytics

import (
	"testing"
	"time"

	"github.com/formpulse/formpulse/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// 2024-01-08 was a Monday.
var monday = time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

func ratingSurvey() models.Survey {
	return models.Survey{
		Model:       gorm.Model{ID: 1},
		Title:       "Customer Satisfaction",
		IsPublished: true,
		Questions: []models.Question{
			{Model: gorm.Model{ID: 10}, SurveyID: 1, Title: "How satisfied are you?", Type: models.QuestionRating},
		},
	}
}

func checkboxSurvey() models.Survey {
	return models.Survey{
		Model:       gorm.Model{ID: 2},
		Title:       "Feature Poll",
		IsPublished: true,
		Questions: []models.Question{
			{
				Model:    gorm.Model{ID: 20},
				SurveyID: 2,
				Title:    "Pick all that apply",
				Type:     models.QuestionCheckbox,
				Options: []models.Option{
					{Model: gorm.Model{ID: 201}, QuestionID: 20, Text: "A", Value: "A"},
					{Model: gorm.Model{ID: 202}, QuestionID: 20, Text: "B", Value: "B"},
					{Model: gorm.Model{ID: 203}, QuestionID: 20, Text: "C", Value: "C"},
				},
			},
		},
	}
}

func ratingResponse(surveyID uint, submittedAt time.Time, value string) models.Response {
	return models.Response{
		SurveyID:    surveyID,
		SubmittedAt: submittedAt,
		Answers: []models.Answer{
			{QuestionID: 10, Value: value},
		},
	}
}

func TestParseTimeRange(t *testing.T) {
	assert.Equal(t, RangeDay, ParseTimeRange("day"))
	assert.Equal(t, RangeWeek, ParseTimeRange("week"))
	assert.Equal(t, RangeMonth, ParseTimeRange("month"))
	assert.Equal(t, RangeQuarter, ParseTimeRange("quarter"))
	assert.Equal(t, RangeMonth, ParseTimeRange("fortnight"))
	assert.Equal(t, RangeMonth, ParseTimeRange(""))
}

func TestTimeRangeWindows(t *testing.T) {
	assert.Equal(t, 24*time.Hour, RangeDay.Window())
	assert.Equal(t, 7*24*time.Hour, RangeWeek.Window())
	assert.Equal(t, 30*24*time.Hour, RangeMonth.Window())
	assert.Equal(t, 90*24*time.Hour, RangeQuarter.Window())
}

func TestFilterByTimeRange(t *testing.T) {
	now := monday
	responses := []models.Response{
		ratingResponse(1, now.Add(-2*time.Hour), "9"),
		ratingResponse(1, now.Add(-3*24*time.Hour), "5"),
		ratingResponse(1, now.Add(-40*24*time.Hour), "2"),
		ratingResponse(1, time.Time{}, "7"), // missing timestamp
	}

	day := FilterByTimeRange(responses, RangeDay, now)
	assert.Len(t, day, 1)

	week := FilterByTimeRange(responses, RangeWeek, now)
	assert.Len(t, week, 2)
	// original order preserved
	assert.Equal(t, responses[0].SubmittedAt, week[0].SubmittedAt)
	assert.Equal(t, responses[1].SubmittedAt, week[1].SubmittedAt)

	quarter := FilterByTimeRange(responses, RangeQuarter, now)
	assert.Len(t, quarter, 3, "missing timestamps are excluded, not errored")

	assert.Empty(t, FilterByTimeRange(nil, RangeWeek, now))
}

func TestFilterBySurvey(t *testing.T) {
	responses := []models.Response{
		{SurveyID: 1, SubmittedAt: monday},
		{SurveyID: 2, SubmittedAt: monday},
		{SurveyID: 1, SubmittedAt: monday},
	}

	scoped := FilterBySurvey(responses, 1)
	assert.Len(t, scoped, 2)

	all := FilterBySurvey(responses, 0)
	assert.Len(t, all, 3)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, nil, nil)
	assert.Zero(t, stats.TotalResponses)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.EstimatedAvgCompletionSeconds)
	assert.Zero(t, stats.EngagementScore)
}

func TestComputeStats(t *testing.T) {
	surveys := []models.Survey{ratingSurvey(), {Model: gorm.Model{ID: 3}, IsPublished: false}}
	users := []models.User{{Name: "Ada"}, {Name: "Grace"}}
	responses := []models.Response{
		ratingResponse(1, monday, "9"), // complete: 1 answer, 1 question
		{SurveyID: 1, SubmittedAt: monday},
		{SurveyID: 99, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 5, Value: "x"}}}, // orphan survey ref
	}

	stats := ComputeStats(responses, surveys, users)
	assert.Equal(t, 3, stats.TotalResponses)
	assert.Equal(t, 2, stats.TotalSurveys)
	assert.Equal(t, 1, stats.ActiveSurveys)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.InDelta(t, 100.0/3, stats.CompletionRate, 0.01)
	assert.InDelta(t, 20.0, stats.EstimatedAvgCompletionSeconds, 0.01) // 2 answers * 30s / 3
	assert.GreaterOrEqual(t, stats.CompletionRate, 0.0)
	assert.LessOrEqual(t, stats.CompletionRate, 100.0)
	assert.GreaterOrEqual(t, stats.EngagementScore, 0.0)
	assert.LessOrEqual(t, stats.EngagementScore, 10.0)
}

func TestEngagementScoreIsBounded(t *testing.T) {
	surveys := []models.Survey{ratingSurvey()}
	responses := make([]models.Response, 0, 500)
	for i := 0; i < 500; i++ {
		responses = append(responses, ratingResponse(1, monday, "8"))
	}

	stats := ComputeStats(responses, surveys, nil)
	assert.Equal(t, 100.0, stats.CompletionRate)
	assert.Equal(t, 10.0, stats.EngagementScore)
}

func TestTrendsByDayOfWeekEmpty(t *testing.T) {
	buckets := TrendsByDayOfWeek(nil, nil)
	assert.Len(t, buckets, 7)
	assert.Equal(t, "Sun", buckets[0].Day)
	assert.Equal(t, "Sat", buckets[6].Day)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.CompletionRate)
	}
}

func TestTrendsByDayOfWeek(t *testing.T) {
	surveys := []models.Survey{ratingSurvey()}
	responses := []models.Response{
		ratingResponse(1, monday, "9"),
		ratingResponse(1, monday.Add(2*time.Hour), "5"),
		{SurveyID: 1, SubmittedAt: monday.AddDate(0, 0, -1)}, // Sunday, incomplete
	}

	buckets := TrendsByDayOfWeek(responses, surveys)
	assert.Equal(t, 2, buckets[time.Monday].Count)
	assert.Equal(t, 100.0, buckets[time.Monday].CompletionRate)
	assert.Equal(t, 1, buckets[time.Sunday].Count)
	assert.Zero(t, buckets[time.Sunday].CompletionRate)
	assert.Zero(t, buckets[time.Tuesday].Count)
}

func TestSatisfactionHistogram(t *testing.T) {
	surveys := []models.Survey{ratingSurvey()}
	responses := []models.Response{
		ratingResponse(1, monday, "9"),
		ratingResponse(1, monday, "5"),
		ratingResponse(1, monday, "2"),
	}

	sum := SatisfactionHistogram(responses, surveys)
	assert.Equal(t, 1, sum.VerySatisfied)
	assert.Equal(t, 0, sum.Satisfied)
	assert.Equal(t, 1, sum.Neutral)
	assert.Equal(t, 1, sum.Dissatisfied)
	assert.Zero(t, sum.Unscored)
}

func TestSatisfactionHistogramFallbacks(t *testing.T) {
	surveys := []models.Survey{ratingSurvey()}
	six := 6
	responses := []models.Response{
		// no rating answer, submission-level score used instead
		{SurveyID: 1, SubmittedAt: monday, Score: &six},
		// unparseable rating value and no score: reported unscored, not guessed
		ratingResponse(1, monday, "great"),
		// orphaned question reference counts as no data
		{SurveyID: 1, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 999, Value: "9"}}},
	}

	sum := SatisfactionHistogram(responses, surveys)
	assert.Equal(t, 1, sum.Satisfied)
	assert.Equal(t, 2, sum.Unscored)
}

func TestSatisfactionHistogramEmpty(t *testing.T) {
	assert.Zero(t, SatisfactionHistogram(nil, nil))
}

func TestOptionTally(t *testing.T) {
	survey := checkboxSurvey()
	responses := []models.Response{
		{SurveyID: 2, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 20, SelectedOptions: []string{"A", "B"}}}},
		{SurveyID: 2, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 20, SelectedOptions: []string{"A"}}}},
	}

	tally := OptionTally(survey, responses, 20)
	assert.Len(t, tally, 3)
	assert.Equal(t, OptionCount{Label: "A", Count: 2, Percentage: 100}, tally[0])
	assert.Equal(t, OptionCount{Label: "B", Count: 1, Percentage: 50}, tally[1])
	assert.Equal(t, OptionCount{Label: "C", Count: 0, Percentage: 0}, tally[2])
}

func TestOptionTallySingleChoicePercentagesSumTo100(t *testing.T) {
	survey := checkboxSurvey()
	survey.Questions[0].Type = models.QuestionMultipleChoice
	responses := []models.Response{
		{SurveyID: 2, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 20, Value: "A"}}},
		{SurveyID: 2, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 20, Value: "B"}}},
		{SurveyID: 2, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 20, Value: "A"}}},
	}

	tally := OptionTally(survey, responses, 20)
	total := 0.0
	for _, oc := range tally {
		total += oc.Percentage
	}
	assert.InDelta(t, 100, total, 0.2)
}

func TestOptionTallyNoData(t *testing.T) {
	survey := checkboxSurvey()

	tally := OptionTally(survey, nil, 20)
	assert.Len(t, tally, 3)
	for _, oc := range tally {
		assert.Zero(t, oc.Count)
		assert.Zero(t, oc.Percentage)
	}

	assert.Nil(t, OptionTally(survey, nil, 999), "unknown question yields no data")

	text := ratingSurvey()
	assert.Nil(t, OptionTally(text, nil, 10), "non-choice question yields no data")
}

func TestResponseTimeHistogram(t *testing.T) {
	makeAnswers := func(n int) []models.Answer {
		answers := make([]models.Answer, n)
		for i := range answers {
			answers[i] = models.Answer{QuestionID: uint(i + 1), Value: "x"}
		}
		return answers
	}

	responses := []models.Response{
		{SubmittedAt: monday, Answers: makeAnswers(3)},  // 90s
		{SubmittedAt: monday, Answers: makeAnswers(5)},  // 150s
		{SubmittedAt: monday, Answers: makeAnswers(12)}, // 360s
		{SubmittedAt: monday, Answers: makeAnswers(25)}, // 750s
	}

	buckets := ResponseTimeHistogram(responses)
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 1, buckets[2].Count)
	assert.Equal(t, 1, buckets[3].Count)

	empty := ResponseTimeHistogram(nil)
	for _, b := range empty {
		assert.Zero(t, b.Count)
	}
}

func TestAggregationIsIdempotent(t *testing.T) {
	surveys := []models.Survey{ratingSurvey(), checkboxSurvey()}
	responses := []models.Response{
		ratingResponse(1, monday, "7"),
		{SurveyID: 2, SubmittedAt: monday, Answers: []models.Answer{{QuestionID: 20, SelectedOptions: []string{"B", "C"}}}},
	}

	assert.Equal(t, ComputeStats(responses, surveys, nil), ComputeStats(responses, surveys, nil))
	assert.Equal(t, TrendsByDayOfWeek(responses, surveys), TrendsByDayOfWeek(responses, surveys))
	assert.Equal(t, SatisfactionHistogram(responses, surveys), SatisfactionHistogram(responses, surveys))
	assert.Equal(t, OptionTally(surveys[1], responses, 20), OptionTally(surveys[1], responses, 20))
	assert.Equal(t, ResponseTimeHistogram(responses), ResponseTimeHistogram(responses))
}

func TestNormalize(t *testing.T) {
	answers := []models.Answer{
		{QuestionID: 1, Value: " yes "},
		{QuestionID: 2, SelectedOptions: []string{"A", "B"}},
		{QuestionID: 3},
	}

	normalized := Normalize(answers)
	assert.Len(t, normalized, 3)

	assert.Equal(t, AnswerSingle, normalized[0].Kind)
	assert.Equal(t, "yes", normalized[0].Value)
	assert.True(t, normalized[0].Answered())

	assert.Equal(t, AnswerMulti, normalized[1].Kind)
	assert.Equal(t, []string{"A", "B"}, normalized[1].Selections())
	assert.True(t, normalized[1].Answered())

	assert.False(t, normalized[2].Answered())
	assert.Nil(t, normalized[2].Selections())
}

func TestSummarizeQuestions(t *testing.T) {
	survey := models.Survey{
		Model: gorm.Model{ID: 5},
		Questions: []models.Question{
			{Model: gorm.Model{ID: 50}, Type: models.QuestionRating, Title: "Rate us"},
			{Model: gorm.Model{ID: 51}, Type: models.QuestionText, Title: "Any comments?"},
			{
				Model: gorm.Model{ID: 52}, Type: models.QuestionMultipleChoice, Title: "Pick one",
				Options: []models.Option{
					{Model: gorm.Model{ID: 520}, Text: "Yes", Value: "yes"},
					{Model: gorm.Model{ID: 521}, Text: "No", Value: "no"},
				},
			},
		},
	}
	responses := []models.Response{
		{SurveyID: 5, SubmittedAt: monday, Answers: []models.Answer{
			{QuestionID: 50, Value: "8"},
			{QuestionID: 51, Value: "Loved it"},
			{QuestionID: 52, Value: "yes"},
		}},
		{SurveyID: 5, SubmittedAt: monday, Answers: []models.Answer{
			{QuestionID: 50, Value: "4"},
			{QuestionID: 52, Value: "no"},
		}},
	}

	summaries := SummarizeQuestions(survey, responses)
	assert.Len(t, summaries, 3)

	assert.Equal(t, "rating", summaries[0].Type)
	assert.NotNil(t, summaries[0].Average)
	assert.InDelta(t, 6.0, *summaries[0].Average, 0.01)
	assert.Equal(t, 2, summaries[0].Answered)

	assert.Equal(t, []string{"Loved it"}, summaries[1].Answers)
	assert.Equal(t, 1, summaries[1].Answered)

	assert.Equal(t, 2, summaries[2].Answered)
	assert.Equal(t, 1, summaries[2].Options[0].Count)
	assert.Equal(t, 1, summaries[2].Options[1].Count)
}
