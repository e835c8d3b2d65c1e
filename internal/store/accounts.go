package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/models"
)

// Key layout of the credential record store inside the key-value store:
//
//	account:email:<normalized-email> -> Account JSON (the record itself)
//	account:id:<uuid>                -> normalized email (alias for id lookups)
//	account:devices:<uuid>           -> []Device JSON
const (
	accountEmailKeyPrefix   = "account:email:"
	accountIDKeyPrefix      = "account:id:"
	accountDevicesKeyPrefix = "account:devices:"
)

// accountRecord is the storage shape of an account. [models.Account] hides
// the credential fields from JSON so they never leak into a response body;
// the store persists this fully-tagged mirror instead and converts at the
// boundary, which keeps the hash and stamp intact across a round trip.
type accountRecord struct {
	ID                  string           `json:"id"`
	Email               string           `json:"email"`
	Name                string           `json:"name,omitempty"`
	MasterPasswordHash  string           `json:"masterPasswordHash"`
	MasterPasswordHint  string           `json:"masterPasswordHint,omitempty"`
	Key                 string           `json:"key"`
	KDF                 models.KDFParams `json:"kdf"`
	PublicKey           string           `json:"publicKey,omitempty"`
	EncryptedPrivateKey string           `json:"encryptedPrivateKey,omitempty"`
	SecurityStamp       string           `json:"securityStamp"`
	EquivalentDomains   [][]string       `json:"equivalentDomains,omitempty"`
	ExcludedGlobals     []int            `json:"excludedGlobals,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

func newAccountRecord(a models.Account) accountRecord {
	return accountRecord{
		ID:                  a.ID,
		Email:               a.Email,
		Name:                a.Name,
		MasterPasswordHash:  a.MasterPasswordHash,
		MasterPasswordHint:  a.MasterPasswordHint,
		Key:                 a.Key,
		KDF:                 a.KDF,
		PublicKey:           a.PublicKey,
		EncryptedPrivateKey: a.EncryptedPrivateKey,
		SecurityStamp:       a.SecurityStamp,
		EquivalentDomains:   a.EquivalentDomains,
		ExcludedGlobals:     a.ExcludedGlobals,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func (r accountRecord) account() models.Account {
	return models.Account{
		ID:                  r.ID,
		Email:               r.Email,
		Name:                r.Name,
		MasterPasswordHash:  r.MasterPasswordHash,
		MasterPasswordHint:  r.MasterPasswordHint,
		Key:                 r.Key,
		KDF:                 r.KDF,
		PublicKey:           r.PublicKey,
		EncryptedPrivateKey: r.EncryptedPrivateKey,
		SecurityStamp:       r.SecurityStamp,
		EquivalentDomains:   r.EquivalentDomains,
		ExcludedGlobals:     r.ExcludedGlobals,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// deviceRecord is the storage shape of a device. PushToken and PushID are
// hidden from JSON on [models.Device] but must survive persistence.
type deviceRecord struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	Type       int       `json:"type"`
	PushToken  string    `json:"pushToken,omitempty"`
	PushID     string    `json:"pushId,omitempty"`
	CreatedAt  time.Time `json:"creationDate"`
}

func newDeviceRecords(devices []models.Device) []deviceRecord {
	records := make([]deviceRecord, 0, len(devices))
	for _, d := range devices {
		records = append(records, deviceRecord{
			ID:         d.ID,
			Identifier: d.Identifier,
			Name:       d.Name,
			Type:       d.Type,
			PushToken:  d.PushToken,
			PushID:     d.PushID,
			CreatedAt:  d.CreatedAt,
		})
	}
	return records
}

func deviceList(records []deviceRecord) []models.Device {
	devices := make([]models.Device, 0, len(records))
	for _, r := range records {
		devices = append(devices, models.Device{
			ID:         r.ID,
			Identifier: r.Identifier,
			Name:       r.Name,
			Type:       r.Type,
			PushToken:  r.PushToken,
			PushID:     r.PushID,
			CreatedAt:  r.CreatedAt,
		})
	}
	return devices
}

// accountStore is the key-value-backed implementation of [AccountStore].
type accountStore struct {
	kv     KeyValueStore
	logger *logger.Logger
}

// NewAccountStore constructs an [AccountStore] over the given key-value
// store.
func NewAccountStore(kv KeyValueStore, logger *logger.Logger) AccountStore {
	logger.Debug().Msg("creating account store")
	return &accountStore{kv: kv, logger: logger}
}

// CreateAccount persists a new account record.
//
// The email key is written with PutIfAbsent so that two concurrent creates
// for the same email resolve to exactly one winner; the loser sees
// ErrEmailTaken. The id alias is written second: if the process dies
// between the two writes, the record is reachable by email and the alias is
// recreated by the next successful login-driven update.
func (s *accountStore) CreateAccount(ctx context.Context, account models.Account) error {
	log := logger.FromContext(ctx)

	email := models.NormalizeEmail(account.Email)
	data, err := json.Marshal(newAccountRecord(account))
	if err != nil {
		return fmt.Errorf("marshaling account record: %w", err)
	}

	if err = s.kv.PutIfAbsent(ctx, accountEmailKeyPrefix+email, string(data)); err != nil {
		if errors.Is(err, ErrKeyExists) {
			return ErrEmailTaken
		}
		log.Err(err).Str("func", "*accountStore.CreateAccount").Msg("error writing account record")
		return err
	}

	if err = s.kv.Put(ctx, accountIDKeyPrefix+account.ID, email); err != nil {
		log.Err(err).Str("func", "*accountStore.CreateAccount").Msg("error writing account id alias")
		return err
	}

	return nil
}

// GetByEmail retrieves the account record stored under the normalized
// email. Returns ErrAccountNotFound when no record exists.
func (s *accountStore) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	value, ok, err := s.kv.Get(ctx, accountEmailKeyPrefix+models.NormalizeEmail(email))
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}

	var record accountRecord
	if err = json.Unmarshal([]byte(value), &record); err != nil {
		return models.Account{}, fmt.Errorf("unmarshaling account record: %w", err)
	}

	return record.account(), nil
}

// GetByID resolves the id alias to an email and loads the record.
func (s *accountStore) GetByID(ctx context.Context, id string) (models.Account, error) {
	email, ok, err := s.kv.Get(ctx, accountIDKeyPrefix+id)
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		return models.Account{}, ErrAccountNotFound
	}

	return s.GetByEmail(ctx, email)
}

// UpdateAccount rewrites the record under its current email key. Last write
// wins; concurrent updates of the same account are not serialized here.
func (s *accountStore) UpdateAccount(ctx context.Context, account models.Account) error {
	data, err := json.Marshal(newAccountRecord(account))
	if err != nil {
		return fmt.Errorf("marshaling account record: %w", err)
	}

	return s.kv.Put(ctx, accountEmailKeyPrefix+models.NormalizeEmail(account.Email), string(data))
}

// ChangeEmail moves the record to the new email key.
//
// Order matters: the new email key is claimed first with PutIfAbsent so
// uniqueness is preserved even against a concurrent registration of the
// same address. The id alias is repointed next and the old record removed
// last. A crash mid-way leaves an orphan record under the old email, which
// is unreachable once the alias points at the new key.
func (s *accountStore) ChangeEmail(ctx context.Context, account models.Account, oldEmail string) error {
	log := logger.FromContext(ctx)

	newEmail := models.NormalizeEmail(account.Email)
	data, err := json.Marshal(newAccountRecord(account))
	if err != nil {
		return fmt.Errorf("marshaling account record: %w", err)
	}

	if err = s.kv.PutIfAbsent(ctx, accountEmailKeyPrefix+newEmail, string(data)); err != nil {
		if errors.Is(err, ErrKeyExists) {
			return ErrEmailTaken
		}
		return err
	}

	if err = s.kv.Put(ctx, accountIDKeyPrefix+account.ID, newEmail); err != nil {
		log.Err(err).Str("func", "*accountStore.ChangeEmail").Msg("error repointing account id alias")
		return err
	}

	if err = s.kv.Delete(ctx, accountEmailKeyPrefix+models.NormalizeEmail(oldEmail)); err != nil {
		// The old record is unreachable already; log and move on.
		log.Err(err).Str("func", "*accountStore.ChangeEmail").Msg("error deleting old account record")
	}

	return nil
}

// Devices returns the device list of an account. A missing key reads as an
// empty list.
func (s *accountStore) Devices(ctx context.Context, accountID string) ([]models.Device, error) {
	value, ok, err := s.kv.Get(ctx, accountDevicesKeyPrefix+accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Device{}, nil
	}

	var records []deviceRecord
	if err = json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("unmarshaling device list: %w", err)
	}

	return deviceList(records), nil
}

// PutDevices replaces the device list of an account.
func (s *accountStore) PutDevices(ctx context.Context, accountID string, devices []models.Device) error {
	data, err := json.Marshal(newDeviceRecords(devices))
	if err != nil {
		return fmt.Errorf("marshaling device list: %w", err)
	}

	return s.kv.Put(ctx, accountDevicesKeyPrefix+accountID, string(data))
}
