package service

import (
	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/mail"
	"github.com/keyhaven/keyhaven/internal/push"
	"github.com/keyhaven/keyhaven/internal/store"
)

// Services bundles the service-layer implementations handed to the HTTP
// layer.
type Services struct {
	SessionService SessionService
	AccountService AccountService
	VaultService   VaultService
	SyncService    SyncService
	DeviceService  DeviceService
}

// NewServices wires the service layer on top of the stores and the external
// collaborators.
func NewServices(storages *store.Storages, relay push.Relay, mailer mail.Mailer, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	accountService := NewAccountService(storages.AccountStore, storages.VaultStore, mailer, cfg.App, logger)

	return &Services{
		SessionService: NewSessionService(storages.AccountStore, mailer, cfg.App, logger),
		AccountService: accountService,
		VaultService:   NewVaultService(storages.VaultStore, relay, logger),
		SyncService:    NewSyncService(storages.AccountStore, storages.VaultStore, accountService, logger),
		DeviceService:  NewDeviceService(storages.AccountStore, relay, logger),
	}
}
