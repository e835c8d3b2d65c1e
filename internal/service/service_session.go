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

// sessionService is the concrete implementation of [SessionService].
//
// Tokens are self-contained signed assertions; nothing about a session is
// persisted. Revocation works entirely through the security stamp embedded
// at issuance: ValidateAccess and Refresh reload the account and compare
// stamps, so rotating the stamp in ChangePassword/ChangeEmail invalidates
// every outstanding token of both classes at once. There is no denylist.
type sessionService struct {
	accounts store.AccountStore
	mailer   mail.Mailer

	// tokenSignKey is the HMAC secret used to sign and verify every JWT.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	accessTokenDuration       time.Duration
	refreshTokenDuration      time.Duration
	verificationTokenDuration time.Duration

	logger *logger.Logger
}

// NewSessionService constructs a [SessionService] wired to the given
// account store and populated with token parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewSessionService(accounts store.AccountStore, mailer mail.Mailer, cfg config.App, logger *logger.Logger) SessionService {
	return &sessionService{
		accounts:                  accounts,
		mailer:                    mailer,
		tokenSignKey:              cfg.TokenSignKey,
		tokenIssuer:               cfg.TokenIssuer,
		accessTokenDuration:       cfg.AccessTokenDuration,
		refreshTokenDuration:      cfg.RefreshTokenDuration,
		verificationTokenDuration: cfg.VerificationTokenDuration,
		logger:                    logger,
	}
}

// PasswordGrant authenticates an email/client-hash pair.
//
// The presented client hash is re-hashed under the account's current
// security stamp and compared against the stored server hash. Both the
// unknown-email and wrong-password cases collapse into
// ErrInvalidCredentials so the grant endpoint cannot be used to enumerate
// accounts; the distinction stays in the logs.
func (s *sessionService) PasswordGrant(ctx context.Context, email, clientHash string) (models.Account, error) {
	log := logger.FromContext(ctx)

	if email == "" || clientHash == "" {
		log.Error().Msg("empty email or password hash in password grant")
		return models.Account{}, ErrInvalidDataProvided
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		log.Err(err).Str("email", models.NormalizeEmail(email)).Msg("password grant: account lookup failed")
		return models.Account{}, ErrInvalidCredentials
	}

	if !utils.VerifyPasswordHash(clientHash, account.SecurityStamp, account.MasterPasswordHash) {
		log.Error().Str("id", account.ID).Msg("password grant: hash mismatch")
		return models.Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// IssuePair signs an access/refresh pair for the account. Both tokens embed
// the current security stamp; issuing a pair does not rotate it.
func (s *sessionService) IssuePair(ctx context.Context, account models.Account) (models.TokenPair, error) {
	access, err := utils.GenerateSessionToken(s.tokenIssuer, account.ID, account.Email, account.SecurityStamp,
		models.TokenClassAccess, s.accessTokenDuration, s.tokenSignKey)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	refresh, err := utils.GenerateSessionToken(s.tokenIssuer, account.ID, account.Email, account.SecurityStamp,
		models.TokenClassRefresh, s.refreshTokenDuration, s.tokenSignKey)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTokenDuration.Seconds()),
	}, nil
}

// ValidateAccess validates an access token and returns the live account.
func (s *sessionService) ValidateAccess(ctx context.Context, tokenString string) (models.Account, error) {
	return s.validate(ctx, tokenString, models.TokenClassAccess)
}

// Refresh validates a refresh token and issues a new pair.
func (s *sessionService) Refresh(ctx context.Context, tokenString string) (models.TokenPair, models.Account, error) {
	account, err := s.validate(ctx, tokenString, models.TokenClassRefresh)
	if err != nil {
		return models.TokenPair{}, models.Account{}, err
	}

	pair, err := s.IssuePair(ctx, account)
	if err != nil {
		return models.TokenPair{}, models.Account{}, err
	}

	return pair, account, nil
}

// validate runs the full per-request token check: signature and expiry via
// the JWT library, then token class, account existence, and stamp equality
// against the live record. Validity is recomputed here on every call and
// never stored.
//
// Every failure collapses into ErrInvalidToken; the specific cause is
// logged only.
func (s *sessionService) validate(ctx context.Context, tokenString, wantClass string) (models.Account, error) {
	log := logger.FromContext(ctx)

	claims, err := utils.ParseSessionToken(tokenString, s.tokenSignKey, s.tokenIssuer)
	if err != nil {
		log.Err(err).Msg("token rejected: signature or expiry")
		return models.Account{}, ErrInvalidToken
	}

	if claims.Class != wantClass {
		log.Error().Str("class", claims.Class).Str("want", wantClass).Msg("token rejected: wrong class")
		return models.Account{}, ErrInvalidToken
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		log.Err(err).Str("id", claims.Subject).Msg("token rejected: account lookup failed")
		return models.Account{}, ErrInvalidToken
	}

	if claims.SecurityStamp != account.SecurityStamp {
		log.Error().Str("id", account.ID).Msg("token rejected: security stamp mismatch")
		return models.Account{}, ErrInvalidToken
	}

	return account, nil
}

// ChangePassword rotates the account credential.
//
// The presented current hash is verified under the stored stamp; on
// success a fresh stamp is generated, the new client hash is re-hashed
// under that new stamp, and the record is persisted in one update. Every
// token issued before this call carries the old stamp and fails its next
// validation.
func (s *sessionService) ChangePassword(ctx context.Context, accountID string, req models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	if req.MasterPasswordHash == "" || req.NewMasterPasswordHash == "" || req.Key == "" {
		return ErrInvalidDataProvided
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("password change: account lookup failed: %w", err)
	}

	if !utils.VerifyPasswordHash(req.MasterPasswordHash, account.SecurityStamp, account.MasterPasswordHash) {
		log.Error().Str("id", account.ID).Msg("password change: current hash mismatch")
		return ErrInvalidCredentials
	}

	account.SecurityStamp = utils.NewID()
	account.MasterPasswordHash = utils.ServerPasswordHash(req.NewMasterPasswordHash, account.SecurityStamp)
	account.MasterPasswordHint = req.MasterPasswordHint
	account.Key = req.Key
	account.UpdatedAt = time.Now().UTC()

	if err = s.accounts.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("password change: persisting account failed: %w", err)
	}

	log.Info().Str("id", account.ID).Msg("password changed, security stamp rotated")
	return nil
}

// IssueEmailToken verifies the current credential and mails an email-change
// assertion to the requested new address. Nothing is persisted; delivery
// failure falls back to the operator log.
func (s *sessionService) IssueEmailToken(ctx context.Context, accountID string, req models.EmailTokenRequest) error {
	log := logger.FromContext(ctx)

	if req.NewEmail == "" || req.MasterPasswordHash == "" {
		return ErrInvalidDataProvided
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("email token: account lookup failed: %w", err)
	}

	if !utils.VerifyPasswordHash(req.MasterPasswordHash, account.SecurityStamp, account.MasterPasswordHash) {
		log.Error().Str("id", account.ID).Msg("email token: hash mismatch")
		return ErrInvalidCredentials
	}

	token, err := utils.GenerateVerificationToken(s.tokenIssuer, models.NormalizeEmail(req.NewEmail), account.Name,
		models.PurposeEmailChange, s.verificationTokenDuration, s.tokenSignKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	subject := "Your email change verification token"
	body := fmt.Sprintf("<p>To confirm your new address, enter this token in your client:</p><p><b>%s</b></p>", token)
	if err = s.mailer.Send(req.NewEmail, subject, body); err != nil {
		// Delivery is best-effort; the operator log carries the token.
		log.Err(err).Str("to", models.NormalizeEmail(req.NewEmail)).Str("token", token).Msg("email token delivery failed, operator-log fallback")
	}

	return nil
}

// ChangeEmail consumes an email-change assertion and moves the account to
// the new address, rotating the security stamp exactly like a password
// change.
func (s *sessionService) ChangeEmail(ctx context.Context, accountID string, req models.ChangeEmailRequest) error {
	log := logger.FromContext(ctx)

	if req.NewEmail == "" || req.Token == "" || req.MasterPasswordHash == "" || req.NewMasterPasswordHash == "" {
		return ErrInvalidDataProvided
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("email change: account lookup failed: %w", err)
	}

	if !utils.VerifyPasswordHash(req.MasterPasswordHash, account.SecurityStamp, account.MasterPasswordHash) {
		log.Error().Str("id", account.ID).Msg("email change: hash mismatch")
		return ErrInvalidCredentials
	}

	claims, err := utils.ParseVerificationToken(req.Token, s.tokenSignKey, s.tokenIssuer)
	if err != nil {
		log.Err(err).Msg("email change: assertion rejected")
		return ErrInvalidToken
	}
	if claims.Purpose != models.PurposeEmailChange || claims.Email != models.NormalizeEmail(req.NewEmail) {
		log.Error().Str("purpose", claims.Purpose).Msg("email change: assertion binding mismatch")
		return ErrInvalidToken
	}

	oldEmail := account.Email
	account.Email = models.NormalizeEmail(req.NewEmail)
	account.SecurityStamp = utils.NewID()
	account.MasterPasswordHash = utils.ServerPasswordHash(req.NewMasterPasswordHash, account.SecurityStamp)
	if req.Key != "" {
		account.Key = req.Key
	}
	account.UpdatedAt = time.Now().UTC()

	if err = s.accounts.ChangeEmail(ctx, account, oldEmail); err != nil {
		return fmt.Errorf("email change: persisting account failed: %w", err)
	}

	log.Info().Str("id", account.ID).Msg("email changed, security stamp rotated")
	return nil
}
