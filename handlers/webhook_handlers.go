package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/formpulse/formpulse/db"
	"github.com/formpulse/formpulse/log"
	"github.com/formpulse/formpulse/models"
)

// webhookRequest is the writable subset of a webhook. The secret is accepted
// on writes but never echoed back in responses.
type webhookRequest struct {
	SurveyID uint
	URL      string
	Events   string
	Secret   string
}

func CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		http.Error(w, "Invalid webhook URL", http.StatusBadRequest)
		return
	}

	webhook := models.Webhook{
		UserID:   r.Context().Value("userID").(uint),
		SurveyID: req.SurveyID,
		URL:      req.URL,
		Events:   req.Events,
		Secret:   req.Secret,
	}

	if err := db.DB.Create(&webhook).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(webhook)
}

func ListWebhooks(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(uint)
	var webhooks []models.Webhook

	if err := db.DB.Where("user_id = ?", userID).Find(&webhooks).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(webhooks)
}

func UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		http.Error(w, "Invalid webhook URL", http.StatusBadRequest)
		return
	}

	webhook, err := ownedWebhook(r)
	if err != nil {
		http.Error(w, "Webhook not found", http.StatusNotFound)
		return
	}

	webhook.URL = req.URL
	webhook.Events = req.Events
	if req.Secret != "" {
		webhook.Secret = req.Secret
	}

	if err := db.DB.Save(&webhook).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(webhook)
}

func DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	webhook, err := ownedWebhook(r)
	if err != nil {
		http.Error(w, "Webhook not found", http.StatusNotFound)
		return
	}

	if err := db.DB.Delete(&webhook).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedWebhook loads the webhook named in the route only when it belongs to
// the requesting user; other users' webhooks stay invisible.
func ownedWebhook(r *http.Request) (models.Webhook, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return models.Webhook{}, err
	}

	userID := r.Context().Value("userID").(uint)
	var webhook models.Webhook
	err = db.DB.Where("user_id = ?", userID).First(&webhook, id).Error
	return webhook, err
}

// TriggerWebhooks notifies every webhook registered for the survey that a
// response was submitted. Runs off the request path; delivery failures are
// logged, never surfaced to the respondent.
func TriggerWebhooks(surveyID uint, responseID uint) {
	var webhooks []models.Webhook
	db.DB.Where("survey_id = ?", surveyID).Find(&webhooks)

	for _, webhook := range webhooks {
		go func(hook models.Webhook) {
			payload := map[string]any{
				"event":       "response_submitted",
				"survey_id":   surveyID,
				"response_id": responseID,
			}
			jsonPayload, _ := json.Marshal(payload)

			req, err := http.NewRequest(http.MethodPost, hook.URL, bytes.NewBuffer(jsonPayload))
			if err != nil {
				log.WithError(err).Errorf("building webhook request for %s", hook.URL)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Webhook-Secret", hook.Secret)

			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				log.WithError(err).Errorf("triggering webhook %s", hook.URL)
				return
			}
			defer resp.Body.Close()
			log.WithField("status", resp.Status).Debugf("webhook %s triggered", hook.URL)
		}(webhook)
	}
}
