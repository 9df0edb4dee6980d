// Package config loads server configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/formpulse/formpulse/log"
)

type Config struct {
	Addr        string
	DatabaseURL string
	SessionKey  string
	CORSOrigin  string
	FrontendURL string
	Debug       bool

	GoogleOAuth *oauth2.Config
}

// C is the loaded configuration, set by Load.
var C *Config

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load reads configuration from the environment, picking up a .env file when
// one exists. DATABASE_URL and SESSION_KEY are required.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("could not load .env file: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is not set")
	}
	sessionKey := os.Getenv("SESSION_KEY")
	if sessionKey == "" {
		return nil, errors.New("SESSION_KEY environment variable is not set")
	}

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	cfg := &Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: databaseURL,
		SessionKey:  sessionKey,
		CORSOrigin:  getEnv("CORS_ORIGIN", frontendURL),
		FrontendURL: frontendURL,
		Debug:       os.Getenv("DEBUG") == "true",
		GoogleOAuth: &oauth2.Config{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}

	C = cfg
	return cfg, nil
}

func GenerateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	cookie := &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(30 * time.Minute),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
	return state
}

func VerifyStateOauthCookie(r *http.Request) error {
	state := r.FormValue("state")
	cookie, err := r.Cookie("oauthstate")
	if err != nil {
		return err
	}
	if cookie.Value != state {
		return fmt.Errorf("invalid oauth state")
	}
	return nil
}
