package config

import (
	"errors"
	"time"
)

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing token sign key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)

// Defaults applied by [StructuredConfig.applyDefaults].
const (
	defaultAccessTokenDuration       = time.Hour
	defaultRefreshTokenDuration      = 7 * 24 * time.Hour
	defaultVerificationTokenDuration = 24 * time.Hour
	defaultTokenIssuer               = "keyhaven"
	defaultHTTPAddress               = "localhost:8080"
)
