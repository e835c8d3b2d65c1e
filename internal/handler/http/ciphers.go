package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

func (h *Handler) createCipher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CipherRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	cipher, err := h.services.VaultService.CreateCipher(ctx, accountID, req)
	if err != nil {
		log.Err(err).Msg("cipher creation failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewCipherView(cipher), http.StatusOK)
}

func (h *Handler) getCipher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cipher, err := h.services.VaultService.GetCipher(ctx, accountID, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Msg("cipher lookup failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewCipherView(cipher), http.StatusOK)
}

func (h *Handler) updateCipher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CipherRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	cipher, err := h.services.VaultService.UpdateCipher(ctx, accountID, chi.URLParam(r, "id"), req)
	if err != nil {
		log.Err(err).Msg("cipher update failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewCipherView(cipher), http.StatusOK)
}

func (h *Handler) deleteCipher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.services.VaultService.DeleteCipher(ctx, accountID, chi.URLParam(r, "id")); err != nil {
		log.Err(err).Msg("cipher delete failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) softDeleteCipher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cipher, err := h.services.VaultService.SoftDeleteCipher(ctx, accountID, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Msg("cipher soft delete failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewCipherView(cipher), http.StatusOK)
}

func (h *Handler) restoreCipher(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	cipher, err := h.services.VaultService.RestoreCipher(ctx, accountID, chi.URLParam(r, "id"))
	if err != nil {
		log.Err(err).Msg("cipher restore failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewCipherView(cipher), http.StatusOK)
}

func (h *Handler) importCiphers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ImportRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.VaultService.Import(ctx, accountID, req)
	if err != nil {
		log.Err(err).Msg("import failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Int("folders", len(result.Folders)).
		Int("ciphers", len(result.Ciphers)).
		Msg("import settled")
	w.WriteHeader(http.StatusOK)
}
