package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/brawl-tournament-system/services"
	"github.com/go-chi/chi/v5"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// RegisterHandler обрабатывает POST /players
func (h *PlayerHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		DiscordID string `json:"discord_id"`
		PlayerTag string `json:"player_tag"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.DiscordID == "" {
		badRequestResponse(w, r, errors.New("discord_id is required"))
		return
	}

	player, err := h.playerService.Register(r.Context(), input.DiscordID, input.PlayerTag)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeregisterHandler обрабатывает DELETE /players/{discordID}
func (h *PlayerHandler) DeregisterHandler(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")
	if discordID == "" {
		badRequestResponse(w, r, errors.New("missing discordID in URL path"))
		return
	}

	if err := h.playerService.Deregister(r.Context(), discordID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProfileHandler обрабатывает GET /players/{discordID}
func (h *PlayerHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordID")
	if discordID == "" {
		badRequestResponse(w, r, errors.New("missing discordID in URL path"))
		return
	}

	view, err := h.playerService.Profile(r.Context(), discordID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EnrollHandler обрабатывает POST /tournaments/{tournamentID}/enroll
func (h *PlayerHandler) EnrollHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DiscordID string `json:"discord_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.DiscordID == "" {
		badRequestResponse(w, r, errors.New("discord_id is required"))
		return
	}

	if err := h.playerService.Enroll(r.Context(), tournamentID, input.DiscordID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"enrolled": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveHandler обрабатывает POST /tournaments/{tournamentID}/leave
func (h *PlayerHandler) LeaveHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DiscordID string `json:"discord_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.DiscordID == "" {
		badRequestResponse(w, r, errors.New("discord_id is required"))
		return
	}

	if err := h.playerService.Leave(r.Context(), tournamentID, input.DiscordID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"left": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
