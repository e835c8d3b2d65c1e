package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	devices, err := h.services.DeviceService.List(ctx, accountID)
	if err != nil {
		log.Err(err).Msg("device listing failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, devices, http.StatusOK)
}

func (h *Handler) registerDeviceToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.DeviceTokenRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	identifier := chi.URLParam(r, "identifier")
	if err := h.services.DeviceService.RegisterPushToken(ctx, accountID, identifier, req.PushToken); err != nil {
		log.Err(err).Str("identifier", identifier).Msg("push token registration failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearDeviceToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	identifier := chi.URLParam(r, "identifier")
	if err := h.services.DeviceService.ClearPushToken(ctx, accountID, identifier); err != nil {
		log.Err(err).Str("identifier", identifier).Msg("push token clearing failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	deviceID := chi.URLParam(r, "id")
	if err := h.services.DeviceService.Delete(ctx, accountID, deviceID); err != nil {
		log.Err(err).Str("id", deviceID).Msg("device delete failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
