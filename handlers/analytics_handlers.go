package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/formpulse/formpulse/analytics"
	"github.com/formpulse/formpulse/db"
	"github.com/formpulse/formpulse/models"
)

// DashboardData bundles every aggregate the dashboard charts consume for one
// scope and time range.
type DashboardData struct {
	Range         analytics.TimeRange           `json:"range"`
	SurveyID      uint                          `json:"surveyId,omitempty"`
	Stats         analytics.DashboardStats      `json:"stats"`
	Trends        [7]analytics.TrendBucket      `json:"trends"`
	Satisfaction  analytics.SatisfactionSummary `json:"satisfaction"`
	ResponseTimes [4]analytics.DurationBucket   `json:"responseTimes"`
}

// GetDashboard aggregates the caller's surveys into chart-ready datasets.
// Query parameters: survey=all|<id> and range=day|week|month|quarter.
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(uint)

	var surveyID uint
	if scope := r.URL.Query().Get("survey"); scope != "" && scope != "all" {
		id, err := strconv.ParseUint(scope, 10, 32)
		if err != nil {
			http.Error(w, "Invalid survey scope", http.StatusBadRequest)
			return
		}
		surveyID = uint(id)
	}
	rng := analytics.ParseTimeRange(r.URL.Query().Get("range"))

	var surveys []models.Survey
	if err := db.DB.Where("user_id = ?", userID).Preload("Questions").Find(&surveys).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	surveyIDs := make([]uint, 0, len(surveys))
	for _, s := range surveys {
		surveyIDs = append(surveyIDs, s.ID)
	}

	var responses []models.Response
	if len(surveyIDs) > 0 {
		if err := db.DB.Where("survey_id IN ?", surveyIDs).Preload("Answers").Find(&responses).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	var users []models.User
	if err := db.DB.Find(&users).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses = analytics.FilterBySurvey(responses, surveyID)
	responses = analytics.FilterByTimeRange(responses, rng, time.Now())

	data := DashboardData{
		Range:         rng,
		SurveyID:      surveyID,
		Stats:         analytics.ComputeStats(responses, surveys, users),
		Trends:        analytics.TrendsByDayOfWeek(responses, surveys),
		Satisfaction:  analytics.SatisfactionHistogram(responses, surveys),
		ResponseTimes: analytics.ResponseTimeHistogram(responses),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// GetSurveyAnalytics returns the per-question breakdown for one survey.
func GetSurveyAnalytics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	surveyID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid survey ID", http.StatusBadRequest)
		return
	}

	var survey models.Survey
	if err := db.DB.Preload("Questions.Options").Preload("Responses.Answers").First(&survey, surveyID).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"totalResponses": len(survey.Responses),
		"questions":      analytics.SummarizeQuestions(survey, survey.Responses),
	})
}

// ExportSurveyData streams a survey's responses as CSV, one row per response
// and one column per question.
func ExportSurveyData(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	surveyID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid survey ID", http.StatusBadRequest)
		return
	}

	var survey models.Survey
	if err := db.DB.Preload("Questions").Preload("Responses.Answers").First(&survey, surveyID).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename=survey_data.csv")

	csvWriter := csv.NewWriter(w)

	header := []string{"ResponseID", "SubmittedAt"}
	for _, question := range survey.Questions {
		header = append(header, question.Title)
	}
	csvWriter.Write(header)

	for _, response := range survey.Responses {
		row := []string{strconv.Itoa(int(response.ID)), response.SubmittedAt.Format(time.RFC3339)}
		cells := make(map[uint]string)
		for _, a := range analytics.Normalize(response.Answers) {
			if a.Kind == analytics.AnswerMulti {
				cells[a.QuestionID] = strings.Join(a.Values, "; ")
			} else {
				cells[a.QuestionID] = a.Value
			}
		}
		for _, question := range survey.Questions {
			row = append(row, cells[question.ID])
		}
		csvWriter.Write(row)
	}

	csvWriter.Flush()
}
