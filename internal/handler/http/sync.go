package http

import (
	"net/http"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/utils"
)

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Msg("no account in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	resp, err := h.services.SyncService.Sync(ctx, account)
	if err != nil {
		log.Err(err).Msg("sync composition failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	log.Debug().
		Int("folders", len(resp.Folders)).
		Int("ciphers", len(resp.Ciphers)).
		Msg("sync payload composed")

	utils.WriteJSON(w, resp, http.StatusOK)
}
