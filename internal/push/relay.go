// Package push talks to the external push relay. Every call is
// best-effort: the relay being down must never fail or roll back the vault
// mutation that triggered a notification.
package push

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/models"
)

// Event types forwarded to client devices. The numeric values are part of
// the client protocol.
const (
	EventCipherCreated = 1
	EventCipherUpdated = 0
	EventCipherDeleted = 2
	EventFolderCreated = 7
	EventFolderUpdated = 8
	EventFolderDeleted = 6
	EventSyncVault     = 5
)

// Relay is the push-relay collaborator contract.
type Relay interface {
	// Register announces a device to the relay and returns the relay's
	// push id for it. An empty id with nil error means push is disabled.
	Register(ctx context.Context, accountID string, device models.Device) (string, error)

	// Unregister removes a previously registered push id.
	Unregister(ctx context.Context, pushID string) error

	// Notify fans an event out to the account's registered devices.
	Notify(ctx context.Context, accountID string, eventType int, payload any) error
}

// NewRelay selects an implementation from configuration: the HTTP relay
// client when a relay URI is configured, otherwise a no-op.
func NewRelay(cfg config.Push, log *logger.Logger) Relay {
	if cfg.RelayURI == "" {
		log.Info().Msg("no push relay configured, notifications disabled")
		return &nopRelay{}
	}

	return &httpRelay{
		cfg:      cfg,
		client:   resty.New().SetBaseURL(cfg.RelayURI).SetTimeout(10 * time.Second),
		identity: resty.New().SetBaseURL(cfg.IdentityURI).SetTimeout(10 * time.Second),
		logger:   log,
	}
}

// httpRelay is the resty-backed implementation of [Relay].
//
// The relay requires a bearer token obtained from its identity endpoint via
// client credentials. The token is cached in process memory with a TTL
// shaved by a renewal margin. The cache is an optimization, never a
// correctness dependency: a fresh replica starts cold and transparently
// re-fetches.
type httpRelay struct {
	cfg      config.Push
	client   *resty.Client
	identity *resty.Client
	logger   *logger.Logger

	mu          sync.Mutex
	bearerToken string
	tokenExpiry time.Time
}

// tokenRenewalMargin is subtracted from the advertised token lifetime so a
// token is never presented within a hair of its expiry.
const tokenRenewalMargin = time.Minute

func (r *httpRelay) Register(ctx context.Context, accountID string, device models.Device) (string, error) {
	token, err := r.bearer(ctx)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"userId":     accountID,
			"deviceId":   device.Identifier,
			"type":       device.Type,
			"pushToken":  device.PushToken,
			"identifier": device.Identifier,
		}).
		SetResult(&result).
		Post("/push/register")
	if err != nil {
		return "", fmt.Errorf("push register request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("push register: relay returned %s", resp.Status())
	}

	return result.ID, nil
}

func (r *httpRelay) Unregister(ctx context.Context, pushID string) error {
	token, err := r.bearer(ctx)
	if err != nil {
		return err
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Delete("/push/" + pushID)
	if err != nil {
		return fmt.Errorf("push unregister request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push unregister: relay returned %s", resp.Status())
	}

	return nil
}

func (r *httpRelay) Notify(ctx context.Context, accountID string, eventType int, payload any) error {
	token, err := r.bearer(ctx)
	if err != nil {
		return err
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]any{
			"userId":  accountID,
			"type":    eventType,
			"payload": payload,
		}).
		Post("/push/send")
	if err != nil {
		return fmt.Errorf("push notify request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push notify: relay returned %s", resp.Status())
	}

	return nil
}

// bearer returns the cached relay token, fetching a fresh one from the
// identity endpoint when the cache is cold or within the renewal margin.
func (r *httpRelay) bearer(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bearerToken != "" && time.Now().Before(r.tokenExpiry) {
		return r.bearerToken, nil
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := r.identity.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     r.cfg.InstallationID,
			"client_secret": r.cfg.InstallationKey,
			"scope":         "api.push",
		}).
		SetResult(&result).
		Post("/connect/token")
	if err != nil {
		return "", fmt.Errorf("push identity request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("push identity: relay returned %s", resp.Status())
	}

	ttl := time.Duration(result.ExpiresIn)*time.Second - tokenRenewalMargin
	if ttl < 0 {
		ttl = 0
	}

	r.bearerToken = result.AccessToken
	r.tokenExpiry = time.Now().Add(ttl)
	r.logger.Debug().Time("expiry", r.tokenExpiry).Msg("push relay bearer token renewed")

	return r.bearerToken, nil
}

// nopRelay is the disabled-push implementation.
type nopRelay struct{}

func (n *nopRelay) Register(context.Context, string, models.Device) (string, error) { return "", nil }
func (n *nopRelay) Unregister(context.Context, string) error                        { return nil }
func (n *nopRelay) Notify(context.Context, string, int, any) error                  { return nil }
