package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/keyhaven/keyhaven/internal/obs"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(obs.Instrument)

	router.Get("/alive", h.alive)
	router.Method(http.MethodGet, "/metrics", obs.Handler())

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/accounts/prelogin", h.prelogin)
		r.Post("/api/accounts/send-verification-email", h.sendVerificationEmail)
		r.Post("/api/accounts/register/finish", h.finishRegistration)
		r.Method(http.MethodPost, "/identity/connect/token",
			rateLimit(http.HandlerFunc(h.connectToken), 10, 3))
	})

	// routes behind access-token authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/accounts/password", h.changePassword)
		r.Post("/api/accounts/email-token", h.emailToken)
		r.Post("/api/accounts/email", h.changeEmail)
		r.Get("/api/accounts/profile", h.getProfile)
		r.Put("/api/accounts/profile", h.updateProfile)
		r.Get("/api/accounts/revision-date", h.revisionDate)

		r.Get("/api/sync", h.sync)

		r.Post("/api/ciphers", h.createCipher)
		r.Post("/api/ciphers/import", h.importCiphers)
		r.Get("/api/ciphers/{id}", h.getCipher)
		r.Put("/api/ciphers/{id}", h.updateCipher)
		r.Delete("/api/ciphers/{id}", h.deleteCipher)
		r.Put("/api/ciphers/{id}/delete", h.softDeleteCipher)
		r.Put("/api/ciphers/{id}/restore", h.restoreCipher)

		r.Post("/api/folders", h.createFolder)
		r.Get("/api/folders/{id}", h.getFolder)
		r.Put("/api/folders/{id}", h.updateFolder)
		r.Delete("/api/folders/{id}", h.deleteFolder)

		r.Get("/api/settings/domains", h.getDomains)
		r.Put("/api/settings/domains", h.updateDomains)

		r.Get("/api/devices", h.listDevices)
		r.Put("/api/devices/identifier/{identifier}/token", h.registerDeviceToken)
		r.Put("/api/devices/identifier/{identifier}/clear-token", h.clearDeviceToken)
		r.Delete("/api/devices/{id}", h.deleteDevice)
	})

	return router
}
