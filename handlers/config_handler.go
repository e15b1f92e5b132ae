package handlers

import (
	"net/http"

	"github.com/Dosada05/brawl-tournament-system/middleware"
	"github.com/Dosada05/brawl-tournament-system/services"
)

type GuildConfigHandler struct {
	configService services.GuildConfigService
}

func NewGuildConfigHandler(cs services.GuildConfigService) *GuildConfigHandler {
	return &GuildConfigHandler{configService: cs}
}

// SetHandler обрабатывает PUT /guild/config. Guild берётся из токена.
func (h *GuildConfigHandler) SetHandler(w http.ResponseWriter, r *http.Request) {
	guildID, err := middleware.GetGuildIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to configure guild")
		return
	}

	var input services.GuildConfigInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	cfg, err := h.configService.Set(r.Context(), guildID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"config": cfg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /guild/config
func (h *GuildConfigHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	guildID, err := middleware.GetGuildIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	cfg, err := h.configService.Get(r.Context(), guildID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"config": cfg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
