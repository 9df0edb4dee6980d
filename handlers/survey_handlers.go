package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/formpulse/formpulse/db"
	"github.com/formpulse/formpulse/models"
)

func CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var survey models.Survey
	err := json.NewDecoder(r.Body).Decode(&survey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := r.Context().Value("userID").(uint)
	survey.UserID = userID
	survey.IsPublished = false

	if err := db.DB.Create(&survey).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	link := models.SurveyLink{
		SurveyID: survey.ID,
		Link:     uuid.NewString(),
		IsActive: true,
	}

	if err := db.DB.Create(&link).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	survey.Link = link.Link
	db.DB.Model(&survey).Update("link", link.Link)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(survey)
}

func ListSurveys(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(uint)
	var surveys []models.Survey
	if err := db.DB.Where("user_id = ?", userID).Preload("Questions.Options").Find(&surveys).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(surveys)
}

func GetSurvey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	var survey models.Survey
	if err := db.DB.Preload("Questions.Options").First(&survey, id).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(survey)
}

func UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var updated models.Survey
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var survey models.Survey
	if err := db.DB.Preload("Questions").First(&survey, id).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	// optimistic lock against concurrent editors
	if updated.Version != survey.Version {
		http.Error(w, "Survey was modified by someone else", http.StatusConflict)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, q := range survey.Questions {
			if err := tx.Where("question_id = ?", q.ID).Delete(&models.Option{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("survey_id = ?", survey.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		survey.Title = updated.Title
		survey.Description = updated.Description
		survey.ResponseLimit = updated.ResponseLimit
		survey.ReleaseDate = updated.ReleaseDate
		survey.CloseDate = updated.CloseDate
		survey.Questions = updated.Questions
		survey.Version++
		return tx.Save(&survey).Error
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(survey)
}

func DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var survey models.Survey
	if err := db.DB.First(&survey, id).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	if err := db.DB.Delete(&survey).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func DuplicateSurvey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var survey models.Survey
	if err := db.DB.Preload("Questions.Options").First(&survey, id).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	copySurvey := models.Survey{
		UserID:        survey.UserID,
		Title:         "Copy of " + survey.Title,
		Description:   survey.Description,
		ResponseLimit: survey.ResponseLimit,
		IsPublished:   false,
	}
	for _, q := range survey.Questions {
		question := models.Question{
			Title:      q.Title,
			Type:       q.Type,
			IsRequired: q.IsRequired,
			Order:      q.Order,
			MinValue:   q.MinValue,
			MaxValue:   q.MaxValue,
		}
		for _, o := range q.Options {
			question.Options = append(question.Options, models.Option{Text: o.Text, Value: o.Value})
		}
		copySurvey.Questions = append(copySurvey.Questions, question)
	}

	if err := db.DB.Create(&copySurvey).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	link := models.SurveyLink{SurveyID: copySurvey.ID, Link: uuid.NewString(), IsActive: true}
	if err := db.DB.Create(&link).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	copySurvey.Link = link.Link
	db.DB.Model(&copySurvey).Update("link", link.Link)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(copySurvey)
}

func PublishSurvey(w http.ResponseWriter, r *http.Request) {
	setPublished(w, r, true)
}

func UnpublishSurvey(w http.ResponseWriter, r *http.Request) {
	setPublished(w, r, false)
}

func setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	vars := mux.Vars(r)
	id := vars["id"]

	var survey models.Survey
	if err := db.DB.First(&survey, id).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	survey.IsPublished = published
	if err := db.DB.Save(&survey).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	db.DB.Model(&models.SurveyLink{}).Where("survey_id = ?", survey.ID).Update("is_active", published)

	json.NewEncoder(w).Encode(survey)
}

func AccessSurveyByLink(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	linkID := vars["linkID"]
	var surveyLink models.SurveyLink
	if err := db.DB.Where("link = ? AND is_active = ?", linkID, true).First(&surveyLink).Error; err != nil {
		http.Error(w, "Survey not found or inactive", http.StatusNotFound)
		return
	}

	var survey models.Survey
	if err := db.DB.Preload("Questions.Options").First(&survey, surveyLink.SurveyID).Error; err != nil {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return
	}

	if !survey.IsPublished {
		http.Error(w, "Survey not found or inactive", http.StatusNotFound)
		return
	}
	now := time.Now()
	if survey.ReleaseDate != nil && now.Before(*survey.ReleaseDate) {
		http.Error(w, "Survey not open yet", http.StatusNotFound)
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

	json.NewEncoder(w).Encode(survey)
}
