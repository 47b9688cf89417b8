package http

import (
	"net/http"
	"strconv"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/models"

	"github.com/go-chi/chi/v5"
)

type commentRequest struct {
	Body string `json:"body"`
}

func (a *API) handleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := a.Service.Follow(r.Context(), userID, chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, err, "follow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := a.Service.Unfollow(r.Context(), userID, chi.URLParam(r, "userID")); err != nil {
		writeServiceError(w, err, "unfollow")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid limit")
			return
		}
		limit = n
	}
	items, err := a.Service.Feed(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err, "load feed")
		return
	}
	if items == nil {
		items = []models.FeedItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := a.Service.Like(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "like")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := a.Service.Unlike(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "unlike")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	comments, err := a.Service.Comments(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "list comments")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (a *API) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := a.Service.Comment(r.Context(), userID, chi.URLParam(r, "id"), req.Body)
	if err != nil {
		writeServiceError(w, err, "add comment")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleListBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	badges, err := a.Service.Badges(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "list badges")
		return
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": badges})
}
