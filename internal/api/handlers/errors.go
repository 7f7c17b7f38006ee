package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondError maps a domain error onto the HTTP status for its category
// and writes the error body.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case domainerrors.IsInvalidInput(err):
		status = http.StatusBadRequest
	case domainerrors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, domainerrors.ErrWalletAmountNotEnough),
		errors.Is(err, domainerrors.ErrRolloverNotAchieved),
		errors.Is(err, domainerrors.ErrRollbackAmountMismatch):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err, "path", c.FullPath())
	} else {
		log.Warn("request rejected", "error", err, "path", c.FullPath())
	}

	body := ErrorResponse{
		Code:    domainerrors.GetErrorCode(err),
		Message: err.Error(),
	}
	var domainErr *domainerrors.DomainError
	if errors.As(err, &domainErr) {
		body.Details = domainErr.Details
		if status == http.StatusInternalServerError {
			// Do not leak internal causes to the caller.
			body.Message = "internal error"
			body.Details = nil
		}
	}

	c.JSON(status, body)
}

// SendBadRequest writes a 400 with the given message.
func SendBadRequest(c *gin.Context, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "INVALID_ARGUMENT",
		Message: message,
		Details: det,
	})
}

// SendSuccess writes a 200 with data as the body.
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
