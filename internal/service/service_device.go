package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/push"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

// deviceService is the concrete implementation of [DeviceService].
//
// Relay calls are best-effort throughout: a device record mutation commits
// locally even when the external relay is unreachable, and the relay state
// converges on the next token registration.
type deviceService struct {
	accounts store.AccountStore
	relay    push.Relay
	logger   *logger.Logger
}

// NewDeviceService constructs a [DeviceService].
func NewDeviceService(accounts store.AccountStore, relay push.Relay, logger *logger.Logger) DeviceService {
	return &deviceService{accounts: accounts, relay: relay, logger: logger}
}

// List returns the account's registered devices.
func (s *deviceService) List(ctx context.Context, accountID string) ([]models.Device, error) {
	return s.accounts.Devices(ctx, accountID)
}

// EnsureDevice upserts the device described by a token grant, keyed by the
// client-chosen identifier. Known identifiers refresh name and type; new
// ones get a server-side id.
func (s *deviceService) EnsureDevice(ctx context.Context, accountID string, reg models.DeviceRegistration) error {
	if reg.Identifier == "" {
		return nil
	}

	devices, err := s.accounts.Devices(ctx, accountID)
	if err != nil {
		return fmt.Errorf("device upsert: listing failed: %w", err)
	}

	for n, device := range devices {
		if device.Identifier == reg.Identifier {
			devices[n].Name = reg.Name
			devices[n].Type = reg.Type
			return s.accounts.PutDevices(ctx, accountID, devices)
		}
	}

	devices = append(devices, models.Device{
		ID:         utils.NewID(),
		Identifier: reg.Identifier,
		Name:       reg.Name,
		Type:       reg.Type,
		CreatedAt:  time.Now().UTC(),
	})
	return s.accounts.PutDevices(ctx, accountID, devices)
}

// RegisterPushToken stores the push token on the device and announces it to
// the relay. The local record is the commit; relay registration failing is
// logged and retried implicitly on the next call.
func (s *deviceService) RegisterPushToken(ctx context.Context, accountID, identifier, pushToken string) error {
	log := logger.FromContext(ctx)

	devices, err := s.accounts.Devices(ctx, accountID)
	if err != nil {
		return fmt.Errorf("push token: listing devices failed: %w", err)
	}

	n := findDevice(devices, identifier)
	if n < 0 {
		return ErrDeviceNotFound
	}

	devices[n].PushToken = pushToken

	pushID, err := s.relay.Register(ctx, accountID, devices[n])
	if err != nil {
		log.Err(err).Str("identifier", identifier).Msg("push relay registration failed")
	} else {
		devices[n].PushID = pushID
	}

	return s.accounts.PutDevices(ctx, accountID, devices)
}

// ClearPushToken drops the device's push token and unregisters it from the
// relay.
func (s *deviceService) ClearPushToken(ctx context.Context, accountID, identifier string) error {
	log := logger.FromContext(ctx)

	devices, err := s.accounts.Devices(ctx, accountID)
	if err != nil {
		return fmt.Errorf("push token: listing devices failed: %w", err)
	}

	n := findDevice(devices, identifier)
	if n < 0 {
		return ErrDeviceNotFound
	}

	if devices[n].PushID != "" {
		if err = s.relay.Unregister(ctx, devices[n].PushID); err != nil {
			log.Err(err).Str("identifier", identifier).Msg("push relay unregistration failed")
		}
	}

	devices[n].PushToken = ""
	devices[n].PushID = ""
	return s.accounts.PutDevices(ctx, accountID, devices)
}

// Delete removes a device record by its server-side id.
func (s *deviceService) Delete(ctx context.Context, accountID, deviceID string) error {
	log := logger.FromContext(ctx)

	devices, err := s.accounts.Devices(ctx, accountID)
	if err != nil {
		return fmt.Errorf("device delete: listing failed: %w", err)
	}

	for n, device := range devices {
		if device.ID == deviceID {
			if device.PushID != "" {
				if err = s.relay.Unregister(ctx, device.PushID); err != nil {
					log.Err(err).Str("id", deviceID).Msg("push relay unregistration failed")
				}
			}
			devices = append(devices[:n], devices[n+1:]...)
			return s.accounts.PutDevices(ctx, accountID, devices)
		}
	}

	return ErrDeviceNotFound
}

// findDevice locates a device by client identifier, -1 when absent.
func findDevice(devices []models.Device, identifier string) int {
	for n, device := range devices {
		if device.Identifier == identifier {
			return n
		}
	}
	return -1
}
