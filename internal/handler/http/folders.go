package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.FolderRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	folder, err := h.services.VaultService.CreateFolder(ctx, accountID, req)
	if err != nil {
		log.Err(err).Msg("folder creation failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewFolderView(folder), http.StatusOK)
}

func (h *Handler) getFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	folder, err := h.services.VaultService.GetFolder(ctx, accountID, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Msg("folder lookup failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewFolderView(folder), http.StatusOK)
}

func (h *Handler) updateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.FolderRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	folder, err := h.services.VaultService.UpdateFolder(ctx, accountID, chi.URLParam(r, "id"), req)
	if err != nil {
		log.Err(err).Msg("folder update failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewFolderView(folder), http.StatusOK)
}

func (h *Handler) deleteFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.services.VaultService.DeleteFolder(ctx, accountID, chi.URLParam(r, "id")); err != nil {
		log.Err(err).Msg("folder delete failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
