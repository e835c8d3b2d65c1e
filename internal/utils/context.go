// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, password
// verification hashing, HTTP response writing, JWT token generation
// and validation, and other common operations.
package utils

import (
	"context"

	"github.com/keyhaven/keyhaven/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// AccountIDCtxKey is the key used to store the authenticated account id in
// the request context. Set by the auth middleware after a successful access
// token validation; read by every protected handler.
var AccountIDCtxKey = contextKey("accountID")

// GetAccountIDFromContext retrieves the account identifier from the context.
//
// Returns the account id and an ok flag:
//   - ok == true  — value is found and has the correct string type
//   - ok == false — value is missing or has an unexpected type
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(AccountIDCtxKey).(string)
	return accountID, ok
}

// AccountCtxKey is the key under which the auth middleware stores the full
// validated account record, saving a second store lookup in handlers that
// need more than the id.
var AccountCtxKey = contextKey("account")

// GetAccountFromContext retrieves the authenticated account from the
// context. The ok flag is false when the value is missing or mistyped.
func GetAccountFromContext(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(AccountCtxKey).(models.Account)
	return account, ok
}
