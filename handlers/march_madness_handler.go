package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"survive-sports/middleware"
	"survive-sports/models"
	"survive-sports/services"
)

type MarchMadnessHandler struct {
	bracketService *services.BracketService
	feedService    *services.FeedService
}

func NewMarchMadnessHandler(bracketService *services.BracketService, feedService *services.FeedService) *MarchMadnessHandler {
	return &MarchMadnessHandler{
		bracketService: bracketService,
		feedService:    feedService,
	}
}

// ResultsHandler serves GET /api/march-madness/results. Public; picks from
// unrevealed rounds are already withheld by the service.
func (h *MarchMadnessHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	results, err := h.bracketService.GetResults(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, results, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UserChoicesHandler serves GET /api/march-madness/choices?entry=N: the
// teams still draftable for the addressed entry.
func (h *MarchMadnessHandler) UserChoicesHandler(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	entryIndex := 0
	if entryStr := r.URL.Query().Get("entry"); entryStr != "" {
		entryIndex, err = strconv.Atoi(entryStr)
		if err != nil || entryIndex < 0 {
			badRequestResponse(w, r, errors.New("invalid entry query parameter"))
			return
		}
	}

	choices, err := h.bracketService.GetUserChoices(r.Context(), user, entryIndex)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, choices, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPicksHandler serves GET /api/march-madness/picks, creating the first
// empty entry for a new user.
func (h *MarchMadnessHandler) GetPicksHandler(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	entries, err := h.bracketService.GetPicksForUser(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetPickHandler serves PUT /api/march-madness/picks/{entryIndex}: submits
// one round's choices and returns the updated entry array.
func (h *MarchMadnessHandler) SetPickHandler(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	entryIndex, err := entryIndexFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var choices models.RoundChoices
	if err := readJSON(w, r, &choices); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.bracketService.SetPickForUser(r.Context(), user, entryIndex, choices)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateEntryHandler serves POST /api/march-madness/picks.
func (h *MarchMadnessHandler) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	entries, err := h.bracketService.CreatePickEntry(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"picks": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteEntryHandler serves DELETE /api/march-madness/picks/{entryIndex}.
func (h *MarchMadnessHandler) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	entryIndex, err := entryIndexFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.bracketService.DeletePickEntry(r.Context(), user, entryIndex)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RefreshChoicesHandler serves POST /api/march-madness/choices/refresh
// (admin only). With a body, the body is taken as the full choice list;
// otherwise the configured object-storage feed is pulled.
func (h *MarchMadnessHandler) RefreshChoicesHandler(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > 0 {
		var list models.ChoiceList
		if err := readJSON(w, r, &list); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if err := h.feedService.ReplaceChoiceList(r.Context(), &list); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, &list, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	list, err := h.feedService.RefreshFromFeed(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func entryIndexFromURL(r *http.Request) (int, error) {
	indexStr := chi.URLParam(r, "entryIndex")
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		return 0, errors.New("invalid entry index in URL")
	}
	return index, nil
}
