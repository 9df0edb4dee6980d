package handlers

import (
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

// ResponseView is a response joined with its respondent's display name, for
// the admin response list.
type ResponseView struct {
	models.Response
	RespondentName string `json:"respondentName,omitempty"`
}

func SubmitResponse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	surveyID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid survey ID", http.StatusBadRequest)
		return
	}

	var survey models.Survey
	if err := db.DB.Preload("Questions").First(&survey, surveyID).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}
	if !survey.IsPublished {
		http.Error(w, "Survey is not accepting responses", http.StatusForbidden)
		return
	}
	now := time.Now()
	if survey.ReleaseDate != nil && now.Before(*survey.ReleaseDate) {
		http.Error(w, "Survey is not open yet", http.StatusForbidden)
		return
	}
	if survey.CloseDate != nil && now.After(*survey.CloseDate) {
		http.Error(w, "Survey closed", http.StatusGone)
		return
	}
	if limitReached(survey) {
		http.Error(w, "Survey response limit reached", http.StatusGone)
		return
	}

	var response models.Response
	err = json.NewDecoder(r.Body).Decode(&response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if unknown := unknownAnswers(survey, response); len(unknown) > 0 {
		ids := make([]string, len(unknown))
		for i, id := range unknown {
			ids[i] = strconv.FormatUint(uint64(id), 10)
		}
		http.Error(w, "Answers reference unknown questions: "+strings.Join(ids, ", "), http.StatusBadRequest)
		return
	}
	if missing := missingRequired(survey, response); len(missing) > 0 {
		http.Error(w, "Missing required questions: "+strings.Join(missing, ", "), http.StatusBadRequest)
		return
	}

	response.SurveyID = survey.ID
	response.SubmittedAt = now
	response.IP = r.RemoteAddr
	response.UserAgent = r.UserAgent()

	if err := db.DB.Create(&response).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	go TriggerWebhooks(survey.ID, response.ID)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// limitReached reports whether the survey's response cap, when set, is
// already met.
func limitReached(survey models.Survey) bool {
	if survey.ResponseLimit == nil {
		return false
	}
	var count int64
	db.DB.Model(&models.Response{}).Where("survey_id = ?", survey.ID).Count(&count)
	return count >= int64(*survey.ResponseLimit)
}

// unknownAnswers lists the answer question references that match no question
// of the survey, in submission order. Submissions carrying any are rejected
// instead of persisted with dangling rows.
func unknownAnswers(survey models.Survey, response models.Response) []uint {
	known := make(map[uint]bool, len(survey.Questions))
	for _, q := range survey.Questions {
		known[q.ID] = true
	}

	var unknown []uint
	for _, a := range response.Answers {
		if !known[a.QuestionID] {
			unknown = append(unknown, a.QuestionID)
		}
	}
	return unknown
}

// missingRequired lists required question titles the submission left
// unanswered.
func missingRequired(survey models.Survey, response models.Response) []string {
	answered := make(map[uint]bool)
	for _, a := range analytics.Normalize(response.Answers) {
		if a.Answered() {
			answered[a.QuestionID] = true
		}
	}

	var missing []string
	for _, q := range survey.Questions {
		if q.IsRequired && !answered[q.ID] {
			missing = append(missing, q.Title)
		}
	}
	return missing
}

func ListResponses(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	var responses []models.Response
	if err := db.DB.Where("survey_id = ?", id).Preload("Answers").Find(&responses).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(withRespondentNames(responses))
}

func GetResponse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var response models.Response
	if err := db.DB.Where("survey_id = ?", vars["id"]).Preload("Answers").First(&response, vars["responseID"]).Error; err != nil {
		http.Error(w, "Response not found", http.StatusNotFound)
		return
	}

	views := withRespondentNames([]models.Response{response})
	json.NewEncoder(w).Encode(views[0])
}

// withRespondentNames resolves respondent display names in one user query.
// Anonymous and dangling respondent IDs are left blank.
func withRespondentNames(responses []models.Response) []ResponseView {
	ids := make([]uint, 0, len(responses))
	for _, resp := range responses {
		if resp.RespondentID != nil {
			ids = append(ids, *resp.RespondentID)
		}
	}

	names := make(map[uint]string, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := db.DB.Where("id IN ?", ids).Find(&users).Error; err == nil {
			for _, u := range users {
				names[u.ID] = u.Name
			}
		}
	}

	views := make([]ResponseView, 0, len(responses))
	for _, resp := range responses {
		view := ResponseView{Response: resp}
		if resp.RespondentID != nil {
			view.RespondentName = names[*resp.RespondentID]
		}
		views = append(views, view)
	}
	return views
}
