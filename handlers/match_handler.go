package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/brawl-tournament-system/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// GetPlayerMatchHandler обрабатывает GET /tournaments/{tournamentID}/players/{discordID}/match
func (h *MatchHandler) GetPlayerMatchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, discordID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetPlayerMatch(r.Context(), tournamentID, discordID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReadyHandler обрабатывает POST /tournaments/{tournamentID}/players/{discordID}/ready
func (h *MatchHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, discordID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Ready(r.Context(), tournamentID, discordID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitHandler обрабатывает POST /tournaments/{tournamentID}/players/{discordID}/submit
func (h *MatchHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, discordID, err := matchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.Submit(r.Context(), tournamentID, discordID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func matchParams(r *http.Request) (int, string, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return 0, "", err
	}
	discordID := chi.URLParam(r, "discordID")
	if discordID == "" {
		return 0, "", errors.New("missing discordID in URL path")
	}
	return tournamentID, discordID, nil
}
