package http

import (
	"errors"
	"net/http"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

func (h *Handler) prelogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.PreloginRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	kdf, err := h.services.AccountService.Prelogin(ctx, req.Email)
	if err != nil {
		log.Err(err).Msg("prelogin failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.PreloginResponse{
		KDF:            kdf.Type,
		KDFIterations:  kdf.Iterations,
		KDFMemory:      kdf.Memory,
		KDFParallelism: kdf.Parallelism,
	}, http.StatusOK)
}

func (h *Handler) sendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.SendVerificationEmailRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	err := h.services.AccountService.SendVerificationEmail(ctx, req.Email, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			log.Err(err).Msg("email already registered")
			writeError(w, "Email is already taken.", http.StatusBadRequest)
			return
		}
		log.Err(err).Msg("sending verification email failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) finishRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.FinishRegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	account, err := h.services.AccountService.FinishRegistration(ctx, req)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			log.Err(err).Msg("email already registered")
			writeError(w, "Email is already taken.", http.StatusBadRequest)
			return
		}
		log.Err(err).Msg("registration failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().Str("id", account.ID).Msg("account registered")
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.SessionService.ChangePassword(ctx, accountID, req); err != nil {
		log.Err(err).Msg("password change failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) emailToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.EmailTokenRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.SessionService.IssueEmailToken(ctx, accountID, req); err != nil {
		log.Err(err).Msg("email token issuance failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) changeEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		log.Error().Msg("no account id in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ChangeEmailRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.SessionService.ChangeEmail(ctx, accountID, req); err != nil {
		log.Err(err).Msg("email change failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Msg("no account in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, h.services.AccountService.Profile(ctx, account), http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Msg("no account in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.ProfileUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeError(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	updated, err := h.services.AccountService.UpdateProfile(ctx, account, req)
	if err != nil {
		log.Err(err).Msg("profile update failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, h.services.AccountService.Profile(ctx, updated), http.StatusOK)
}

func (h *Handler) revisionDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Msg("no account in context")
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	revision, err := h.services.AccountService.RevisionDate(ctx, account)
	if err != nil {
		log.Err(err).Msg("revision date computation failed")
		writeError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.RevisionDateResponse(revision), http.StatusOK)
}
