package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/specgraph/fgp-backend/internal/domain/storeerr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondStoreError maps the store error taxonomy onto HTTP statuses. An
// unavailable store is 503, distinct from 404, so clients never mistake a
// transient infrastructure failure for "does not exist".
func RespondStoreError(c *gin.Context, err error) {
	switch storeerr.CodeOf(err) {
	case storeerr.CodeNotFound:
		RespondError(c, http.StatusNotFound, "not_found", err)
	case storeerr.CodeValidation:
		RespondError(c, http.StatusBadRequest, "validation", err)
	case storeerr.CodeConflict:
		RespondError(c, http.StatusConflict, "conflict", err)
	case storeerr.CodeUnavailable:
		RespondError(c, http.StatusServiceUnavailable, "storage_unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
