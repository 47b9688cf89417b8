package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/service"

	"github.com/go-chi/chi/v5"
)

const partialScoreWarning = "Weekly totals are unavailable; this score counts the day alone and was not saved"

type scoreResponse struct {
	Score   scoring.DayScore `json:"score"`
	Partial bool             `json:"partial,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

type drinkRequest struct {
	Date   string  `json:"date"`
	Tier   int     `json:"tier"`
	Drinks int     `json:"drinks"`
	Note   *string `json:"note"`
}

type drinkResponse struct {
	ID string `json:"id"`
	scoreResponse
}

// scoreResult turns a recompute outcome into a response body. A missing
// week history still yields a usable, flagged score; other errors are
// written and reported as not ok.
func scoreResult(w http.ResponseWriter, score scoring.DayScore, err error, action string) (scoreResponse, bool) {
	if errors.Is(err, service.ErrWeeklyHistoryUnavailable) {
		log.Printf("%s: %v", action, err)
		return scoreResponse{Score: score, Partial: true, Warning: partialScoreWarning}, true
	}
	if err != nil {
		writeServiceError(w, err, action)
		return scoreResponse{}, false
	}
	return scoreResponse{Score: score}, true
}

func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Start and end required")
		return
	}
	logs, err := a.Service.DailyLogs(r.Context(), userID, start, end)
	if err != nil {
		writeServiceError(w, err, "list logs")
		return
	}
	if logs == nil {
		logs = []models.DailyLog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (a *API) handleGetLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entry, err := a.Service.DailyLog(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		writeServiceError(w, err, "load log")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *API) handleSaveLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var raw json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}
	score, err := a.Service.SaveDailyLog(r.Context(), userID, chi.URLParam(r, "date"), raw)
	resp, ok := scoreResult(w, score, err, "save log")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetScore always recomputes, so goal edits show up without a new log.
func (a *API) handleGetScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	score, err := a.Service.RecomputeDayScore(r.Context(), userID, chi.URLParam(r, "date"))
	resp, ok := scoreResult(w, score, err, "compute score")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListDrinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Date required")
		return
	}
	events, err := a.Service.DrinkingEvents(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err, "list drinking events")
		return
	}
	if events == nil {
		events = []models.DrinkingEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (a *API) handleAddDrink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req drinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, score, err := a.Service.AddDrinkingEvent(r.Context(), userID, models.DrinkingEvent{
		Date:   req.Date,
		Tier:   req.Tier,
		Drinks: req.Drinks,
		Note:   req.Note,
	})
	if id == "" && err != nil {
		writeServiceError(w, err, "add drinking event")
		return
	}
	resp, ok := scoreResult(w, score, err, "add drinking event")
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, drinkResponse{ID: id, scoreResponse: resp})
}

func (a *API) handleDeleteDrink(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	score, err := a.Service.DeleteDrinkingEvent(r.Context(), userID, chi.URLParam(r, "id"))
	resp, ok := scoreResult(w, score, err, "delete drinking event")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
