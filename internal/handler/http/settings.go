package http

import (
	"net/http"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

func (h *Handler) getDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Msg("no account in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, h.services.SyncService.Domains(ctx, account), http.StatusOK)
}

func (h *Handler) updateDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Msg("no account in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.DomainsRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	view, err := h.services.SyncService.UpdateDomains(ctx, account, req)
	if err != nil {
		log.Err(err).Msg("domains update failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, view, http.StatusOK)
}
