package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// serverHashIterations is the PBKDF2 round count applied server-side on top
// of the client-computed master password hash. The client already ran its
// own expensive KDF, so one cheap round of stretching with a per-account
// salt is enough to make stored hashes useless across accounts.
const serverHashIterations = 100_000

// ServerPasswordHash re-hashes the opaque client-computed master password
// hash with the account's security stamp as salt. Because the stamp rotates
// on every credential-affecting mutation, the stored hash is only
// comparable against hashes computed under the current stamp.
func ServerPasswordHash(clientHash, securityStamp string) string {
	key := pbkdf2.Key([]byte(clientHash), []byte(securityStamp), serverHashIterations, sha256.Size, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// VerifyPasswordHash compares the presented client hash, re-hashed under
// the given stamp, against the stored server hash in constant time.
func VerifyPasswordHash(clientHash, securityStamp, storedHash string) bool {
	computed := ServerPasswordHash(clientHash, securityStamp)
	return hmac.Equal([]byte(computed), []byte(storedHash))
}
