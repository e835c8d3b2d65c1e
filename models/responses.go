package models

// ErrorResponse is the fixed client-facing error envelope. The shape is
// part of the external contract and must not change: clients key off
// Message, ValidationErrors and the "error" object marker.
type ErrorResponse struct {
	Message          string              `json:"message"`
	ValidationErrors map[string][]string `json:"validationErrors"`
	ErrorModel       ErrorModel          `json:"errorModel"`
	Object           string              `json:"object"`
}

// ErrorModel duplicates the message for older client generations.
type ErrorModel struct {
	Message string `json:"message"`
	Object  string `json:"object"`
}

// NewErrorResponse builds the envelope around a single message.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{
		Message:          message,
		ValidationErrors: map[string][]string{"": {message}},
		ErrorModel:       ErrorModel{Message: message, Object: "error"},
		Object:           "error",
	}
}

// TokenGrantResponse is the OAuth2-shaped body of a successful password or
// refresh_token grant. Key and the Kdf fields ride along so the client can
// unlock the vault without a second round trip.
type TokenGrantResponse struct {
	AccessToken         string `json:"access_token"`
	ExpiresIn           int    `json:"expires_in"`
	TokenType           string `json:"token_type"`
	RefreshToken        string `json:"refresh_token"`
	Key                 string `json:"Key"`
	PrivateKey          string `json:"PrivateKey,omitempty"`
	KDF                 int    `json:"Kdf"`
	KDFIterations       int    `json:"KdfIterations"`
	KDFMemory           *int   `json:"KdfMemory,omitempty"`
	KDFParallelism      *int   `json:"KdfParallelism,omitempty"`
	ResetMasterPassword bool   `json:"ResetMasterPassword"`
}

// TokenGrantError is the fixed failure body of the token endpoint.
type TokenGrantError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// PreloginResponse returns the KDF parameters for an email.
type PreloginResponse struct {
	KDF            int  `json:"kdf"`
	KDFIterations  int  `json:"kdfIterations"`
	KDFMemory      *int `json:"kdfMemory,omitempty"`
	KDFParallelism *int `json:"kdfParallelism,omitempty"`
}

// RevisionDateResponse is the body of GET /api/accounts/revision-date,
// milliseconds since the Unix epoch.
type RevisionDateResponse int64

// ImportResult enumerates what a bulk import actually committed. Items that
// failed their individual settlement are simply absent.
type ImportResult struct {
	Folders []Folder `json:"folders"`
	Ciphers []Cipher `json:"ciphers"`
}
