package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/formpulse/formpulse/auth"
	"github.com/formpulse/formpulse/config"
	"github.com/formpulse/formpulse/db"
	"github.com/formpulse/formpulse/handlers"
	"github.com/formpulse/formpulse/log"
	"github.com/formpulse/formpulse/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	log.SetDebug(cfg.Debug)

	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		log.Fatal("database:", err)
	}
	if err := auth.InitStore(cfg.DatabaseURL, cfg.SessionKey); err != nil {
		log.Fatal("session store:", err)
	}

	r := mux.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(r)

	// Auth routes
	r.HandleFunc("/login", handlers.LoginHandler)
	r.HandleFunc("/auth/google/callback", handlers.GoogleCallbackHandler)
	r.HandleFunc("/logout", handlers.LogoutHandler)
	r.HandleFunc("/api/register", handlers.RegisterHandler).Methods("POST")
	r.HandleFunc("/api/login", handlers.LoginHandlerEmail).Methods("POST")
	r.HandleFunc("/api/me", auth.AuthMiddleware(handlers.GetCurrentUser)).Methods("GET")

	// Survey authoring
	r.HandleFunc("/api/surveys", auth.AuthMiddleware(handlers.CreateSurvey)).Methods("POST")
	r.HandleFunc("/api/surveys", auth.AuthMiddleware(handlers.ListSurveys)).Methods("GET")
	r.HandleFunc("/api/surveys/{id}", auth.AuthMiddleware(handlers.GetSurvey)).Methods("GET")
	r.HandleFunc("/api/surveys/{id}", auth.AuthMiddleware(handlers.UpdateSurvey)).Methods("PUT")
	r.HandleFunc("/api/surveys/{id}", auth.AuthMiddleware(handlers.DeleteSurvey)).Methods("DELETE")
	r.HandleFunc("/api/surveys/{id}/duplicate", auth.AuthMiddleware(handlers.DuplicateSurvey)).Methods("POST")
	r.HandleFunc("/api/surveys/{id}/publish", auth.AuthMiddleware(handlers.PublishSurvey)).Methods("POST")
	r.HandleFunc("/api/surveys/{id}/unpublish", auth.AuthMiddleware(handlers.UnpublishSurvey)).Methods("POST")

	// Responses
	r.HandleFunc("/api/surveys/{id}/responses", auth.AuthMiddleware(handlers.ListResponses)).Methods("GET")
	r.HandleFunc("/api/surveys/{id}/responses/{responseID}", auth.AuthMiddleware(handlers.GetResponse)).Methods("GET")
	r.HandleFunc("/api/surveys/{id}/submit", middleware.RateLimit(handlers.SubmitResponse)).Methods("POST")
	r.HandleFunc("/s/{linkID}", handlers.AccessSurveyByLink).Methods("GET")

	// Analytics
	r.HandleFunc("/api/dashboard", auth.AuthMiddleware(handlers.GetDashboard)).Methods("GET")
	r.HandleFunc("/api/surveys/{id}/analytics", auth.AuthMiddleware(handlers.GetSurveyAnalytics)).Methods("GET")
	r.HandleFunc("/api/surveys/{id}/export", auth.AuthMiddleware(handlers.ExportSurveyData)).Methods("GET")

	// Users
	r.HandleFunc("/api/users", auth.AuthMiddleware(handlers.ListUsers)).Methods("GET")
	r.HandleFunc("/api/users/{userId}", auth.AuthMiddleware(handlers.GetUser)).Methods("GET")
	r.HandleFunc("/api/users/{userId}/role", auth.AdminMiddleware(handlers.UpdateUserRole)).Methods("PUT")

	// Webhooks
	r.HandleFunc("/api/webhooks", auth.AuthMiddleware(handlers.CreateWebhook)).Methods("POST")
	r.HandleFunc("/api/webhooks", auth.AuthMiddleware(handlers.ListWebhooks)).Methods("GET")
	r.HandleFunc("/api/webhooks/{id}", auth.AuthMiddleware(handlers.UpdateWebhook)).Methods("PUT")
	r.HandleFunc("/api/webhooks/{id}", auth.AuthMiddleware(handlers.DeleteWebhook)).Methods("DELETE")

	log.Infof("server starting on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, handler))
}
