package http

import (
	"errors"
	"net/http"

	"github.com/keyhaven/keyhaven/internal/service"
	"github.com/keyhaven/keyhaven/internal/store"
	"github.com/keyhaven/keyhaven/internal/utils"
	"github.com/keyhaven/keyhaven/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrInvalidCredentials:  http.StatusUnauthorized,
	service.ErrInvalidToken:        http.StatusBadRequest,
	service.ErrTokenCreationFailed: http.StatusInternalServerError,
	service.ErrDeviceNotFound:      http.StatusNotFound,

	store.ErrEmailTaken:       http.StatusBadRequest,
	store.ErrAccountNotFound:  http.StatusNotFound,
	store.ErrCipherNotFound:   http.StatusNotFound,
	store.ErrFolderNotFound:   http.StatusNotFound,
	store.ErrStoreUnavailable: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders the fixed client-facing error envelope. The shape is
// part of the external contract; clients parse message, validationErrors
// and the "error" object marker.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	utils.WriteJSON(w, models.NewErrorResponse(message), statusCode)
}
