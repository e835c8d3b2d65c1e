package service

import (
	"context"
	"fmt"
	"time"

	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logger"
	"github.com/keyhaven/keyhaven/internal/mail"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

// accountService is the concrete implementation of [AccountService].
type accountService struct {
	accounts store.AccountStore
	vault    store.VaultStore
	mailer   mail.Mailer

	tokenSignKey              string
	tokenIssuer               string
	verificationTokenDuration time.Duration

	logger *logger.Logger
}

// NewAccountService constructs an [AccountService].
func NewAccountService(accounts store.AccountStore, vault store.VaultStore, mailer mail.Mailer, cfg config.App, logger *logger.Logger) AccountService {
	return &accountService{
		accounts:                  accounts,
		vault:                     vault,
		mailer:                    mailer,
		tokenSignKey:              cfg.TokenSignKey,
		tokenIssuer:               cfg.TokenIssuer,
		verificationTokenDuration: cfg.VerificationTokenDuration,
		logger:                    logger,
	}
}

// Prelogin returns the KDF parameters of an email. Unknown emails receive
// the default parameters: the response is identical in shape either way,
// so prelogin gives no account-enumeration signal.
func (s *accountService) Prelogin(ctx context.Context, email string) (models.KDFParams, error) {
	if email == "" {
		return models.KDFParams{}, ErrInvalidDataProvided
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return models.KDFParams{Type: models.KDFTypePBKDF2, Iterations: models.DefaultKDFIterations}, nil
	}

	return account.KDF, nil
}

// SendVerificationEmail issues a registration assertion bound to
// {email, name, purpose=registration} and delivers it out of band. The
// assertion is never persisted server-side; possession of a valid one is
// the whole proof at finish time.
func (s *accountService) SendVerificationEmail(ctx context.Context, email, name string) error {
	log := logger.FromContext(ctx)

	if email == "" {
		return ErrInvalidDataProvided
	}

	normalized := models.NormalizeEmail(email)
	if _, err := s.accounts.GetByEmail(ctx, normalized); err == nil {
		return store.ErrEmailTaken
	}

	token, err := utils.GenerateVerificationToken(s.tokenIssuer, normalized, name,
		models.PurposeRegistration, s.verificationTokenDuration, s.tokenSignKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	subject := "Complete your registration"
	body := fmt.Sprintf("<p>Enter this verification token in your client to finish registration:</p><p><b>%s</b></p>", token)
	if err = s.mailer.Send(email, subject, body); err != nil {
		// Delivery is best-effort; the operator log carries the token.
		log.Err(err).Str("to", normalized).Str("token", token).Msg("verification email delivery failed, operator-log fallback")
	}

	return nil
}

// FinishRegistration consumes a registration assertion and creates the
// account with a fresh security stamp.
//
// The assertion's purpose and email binding are re-validated here because
// send and finish can be separated by anything up to the assertion TTL.
// The existence check is left entirely to the store's atomic create: two
// concurrent finishes for the same email race on one PutIfAbsent, so
// exactly one caller wins and the other gets store.ErrEmailTaken.
func (s *accountService) FinishRegistration(ctx context.Context, req models.FinishRegistrationRequest) (models.Account, error) {
	log := logger.FromContext(ctx)

	if req.Email == "" || req.MasterPasswordHash == "" || req.Key == "" || req.EmailVerifyToken == "" {
		return models.Account{}, ErrInvalidDataProvided
	}

	claims, err := utils.ParseVerificationToken(req.EmailVerifyToken, s.tokenSignKey, s.tokenIssuer)
	if err != nil {
		log.Err(err).Msg("finish registration: assertion rejected")
		return models.Account{}, ErrInvalidToken
	}
	if claims.Purpose != models.PurposeRegistration || claims.Email != models.NormalizeEmail(req.Email) {
		log.Error().Str("purpose", claims.Purpose).Msg("finish registration: assertion binding mismatch")
		return models.Account{}, ErrInvalidToken
	}

	kdf := models.KDFParams{
		Type:        req.KDF,
		Iterations:  req.KDFIterations,
		Memory:      req.KDFMemory,
		Parallelism: req.KDFParallelism,
	}
	if kdf.Iterations == 0 {
		kdf.Type = models.KDFTypePBKDF2
		kdf.Iterations = models.DefaultKDFIterations
	}

	now := time.Now().UTC()
	account := models.Account{
		ID:                 utils.NewID(),
		Email:              models.NormalizeEmail(req.Email),
		Name:               req.Name,
		MasterPasswordHint: req.MasterPasswordHint,
		Key:                req.Key,
		KDF:                kdf,
		SecurityStamp:      utils.NewID(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if account.Name == "" {
		account.Name = claims.Name
	}
	account.MasterPasswordHash = utils.ServerPasswordHash(req.MasterPasswordHash, account.SecurityStamp)
	if req.Keys != nil {
		account.PublicKey = req.Keys.PublicKey
		account.EncryptedPrivateKey = req.Keys.EncryptedPrivateKey
	}

	if err = s.accounts.CreateAccount(ctx, account); err != nil {
		log.Err(err).Str("email", account.Email).Msg("finish registration: account creation failed")
		return models.Account{}, fmt.Errorf("account creation ended with error: %w", err)
	}

	log.Info().Str("id", account.ID).Str("email", account.Email).Msg("account registered")
	return account, nil
}

// Profile builds the profile projection. EmailVerified, Premium and
// TwoFactorEnabled are server-fixed values, not stored state.
func (s *accountService) Profile(_ context.Context, account models.Account) models.Profile {
	return models.Profile{
		ID:                 account.ID,
		Name:               account.Name,
		Email:              account.Email,
		EmailVerified:      true,
		Premium:            true,
		MasterPasswordHint: account.MasterPasswordHint,
		Culture:            "en-US",
		TwoFactorEnabled:   false,
		Key:                account.Key,
		PrivateKey:         account.EncryptedPrivateKey,
		SecurityStamp:      account.SecurityStamp,
		Organizations:      []any{},
		Object:             "profile",
	}
}

// UpdateProfile mutates the display name and password hint. Neither field
// affects credentials, so the security stamp is untouched.
func (s *accountService) UpdateProfile(ctx context.Context, account models.Account, req models.ProfileUpdateRequest) (models.Account, error) {
	account.Name = req.Name
	account.MasterPasswordHint = req.MasterPasswordHint
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return models.Account{}, fmt.Errorf("profile update failed: %w", err)
	}

	return account, nil
}

// RevisionDate computes the newest revision across the account's vault
// objects, falling back to the account record's own update time for empty
// vaults. Listing comes straight from the blob store.
func (s *accountService) RevisionDate(ctx context.Context, account models.Account) (int64, error) {
	latest := account.UpdatedAt

	ciphers, err := s.vault.ListCiphers(ctx, account.ID)
	if err != nil {
		return 0, err
	}
	for _, cipher := range ciphers {
		if cipher.RevisionDate.After(latest) {
			latest = cipher.RevisionDate
		}
	}

	folders, err := s.vault.ListFolders(ctx, account.ID)
	if err != nil {
		return 0, err
	}
	for _, folder := range folders {
		if folder.RevisionDate.After(latest) {
			latest = folder.RevisionDate
		}
	}

	return latest.UnixMilli(), nil
}
