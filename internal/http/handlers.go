package http

import (
	"encoding/json"
	"net/http"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/auth"

	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type entityResponse struct {
	ID string `json:"id"`
}

type setMetricRequest struct {
	Enabled *bool    `json:"enabled"`
	Target  *float64 `json:"target"`
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
	}
	return userID, ok
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, err := a.Service.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeServiceError(w, err, "register")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: userID})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	accessToken, refreshToken, err := a.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "log in")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := a.Service.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "load user")
		return
	}
	goals, err := a.Service.GoalConfig(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "load goals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "goals": goals})
}

func (a *API) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	cfg, err := a.Service.GoalConfig(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "load goals")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleSaveGoals accepts any goal layout the app has ever sent and answers
// with the canonical form that was stored.
func (a *API) handleSaveGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}
	cfg, err := a.Service.SaveGoalConfig(r.Context(), userID, raw)
	if err != nil {
		writeServiceError(w, err, "save goals")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *API) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := a.Service.Presets()
	if err != nil {
		writeServiceError(w, err, "load presets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

func (a *API) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	cfg, err := a.Service.ApplyPreset(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "apply preset")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *API) handleClearCategoryMetrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	cfg, err := a.Service.ClearCategoryMetrics(r.Context(), userID, chi.URLParam(r, "category"))
	if err != nil {
		writeServiceError(w, err, "clear metrics")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *API) handleSetCategoryMetric(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req setMetricRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	enabled := req.Enabled == nil || *req.Enabled
	cfg, err := a.Service.SetCategoryMetric(r.Context(), userID, chi.URLParam(r, "category"), chi.URLParam(r, "metric"), enabled, req.Target)
	if err != nil {
		writeServiceError(w, err, "update metric")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
