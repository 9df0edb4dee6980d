package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/formpulse/formpulse/auth"
	"github.com/formpulse/formpulse/config"
	"github.com/formpulse/formpulse/db"
	"github.com/formpulse/formpulse/log"
	"github.com/formpulse/formpulse/models"
)

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	oauthCfg := config.C.GoogleOAuth
	if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
		log.Error("google oauth client id or secret is not configured")
		http.Error(w, "OAuth configuration error", http.StatusInternalServerError)
		return
	}

	state := config.GenerateStateOauthCookie(w)
	http.Redirect(w, r, oauthCfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := config.VerifyStateOauthCookie(r); err != nil {
		http.Error(w, "Invalid OAuth state: "+err.Error(), http.StatusBadRequest)
		return
	}

	code := r.FormValue("code")
	token, err := config.C.GoogleOAuth.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token: "+err.Error(), http.StatusInternalServerError)
		return
	}

	user, err := auth.GetGoogleUserInfo(token.AccessToken)
	if err != nil {
		http.Error(w, "Failed to get user info: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := auth.CreateOrUpdateUser(user); err != nil {
		http.Error(w, "Failed to create/update user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := auth.NewSession(w, r, user.ID); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	log.WithField("user", user.Email).Info("user logged in via google")
	http.Redirect(w, r, config.C.FrontendURL+"/dashboard", http.StatusSeeOther)
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var user struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	newUser, err := auth.CreateUser(user.Email, user.Name, user.Password)
	if err != nil {
		http.Error(w, "Error creating user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newUser)
}

func LoginHandlerEmail(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := auth.GetUserByEmail(credentials.Email)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := auth.NewSession(w, r, user.ID); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	log.WithField("user", user.Email).Info("user logged in")
	json.NewEncoder(w).Encode(map[string]string{"message": "Login successful"})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r); err != nil {
		http.Error(w, "Failed to clear session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, config.C.FrontendURL+"/login", http.StatusSeeOther)
}

func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(uint)
	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
