package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shaharyar2310/silkif.y/internal/domain"
)

var passwordCost = bcrypt.DefaultCost

type credentialsReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type userSummary struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PlanType     domain.UserPlan `json:"planType"`
	ProfileImage string          `json:"profileImage,omitempty"`
}

func summarize(u *domain.User) userSummary {
	return userSummary{ID: u.ID, Username: u.Username, Email: u.Email, PlanType: u.PlanType, ProfileImage: u.ProfileImage}
}

func (a *App) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Email and password are required")
		return
	}

	ctx := r.Context()
	if _, err := a.Store.GetUserByEmail(ctx, email); err == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "User already exists")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		a.log(r).Error().Err(err).Msg("lookup user by email")
		a.error(w, http.StatusInternalServerError, "internal", "Error registering user")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		a.log(r).Error().Err(err).Msg("hash password")
		a.error(w, http.StatusInternalServerError, "internal", "Error registering user")
		return
	}

	username := domain.UsernameFromEmail(email)
	user, err := a.Store.CreateUser(ctx, &domain.User{Username: username, Email: email, PasswordHash: string(hash)})
	if errors.Is(err, domain.ErrConflict) {
		// another account already owns the local part; email races land here too
		if _, lookupErr := a.Store.GetUserByEmail(ctx, email); lookupErr == nil {
			a.error(w, http.StatusBadRequest, "bad_request", "User already exists")
			return
		}
		username = username + "-" + uuid.NewString()[:6]
		user, err = a.Store.CreateUser(ctx, &domain.User{Username: username, Email: email, PasswordHash: string(hash)})
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			a.error(w, http.StatusBadRequest, "bad_request", "User already exists")
			return
		}
		a.log(r).Error().Err(err).Msg("create user")
		a.error(w, http.StatusInternalServerError, "internal", "Error registering user")
		return
	}

	a.log(r).Info().Int64("user_id", user.ID).Msg("user registered")
	a.json(w, http.StatusOK, map[string]any{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// AuthLogin accepts an email, or a username in its place.
func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if (email == "" && username == "") || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Email and password are required")
		return
	}

	var (
		user *domain.User
		err  error
	)
	if email != "" {
		user, err = a.Store.GetUserByEmail(r.Context(), email)
	} else {
		user, err = a.Store.GetUserByUsername(r.Context(), username)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.log(r).Error().Err(err).Msg("lookup user")
		a.error(w, http.StatusInternalServerError, "internal", "Error logging in")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	token, exp, err := a.Sessions.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		a.log(r).Error().Err(err).Msg("sign session")
		a.error(w, http.StatusInternalServerError, "internal", "Error logging in")
		return
	}
	a.Sessions.SetCookie(w, token, exp)
	a.json(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    summarize(user),
		"token":   token,
	})
}

func (a *App) AuthLogout(w http.ResponseWriter, r *http.Request) {
	a.Sessions.ClearCookie(w)
	a.json(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the signed-in user.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(r)
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	user, err := a.Store.GetUser(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		a.Sessions.ClearCookie(w)
		a.error(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	if err != nil {
		a.log(r).Error().Err(err).Int64("user_id", userID).Msg("load user")
		a.error(w, http.StatusInternalServerError, "internal", "Error loading user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user": summarize(user)})
}
