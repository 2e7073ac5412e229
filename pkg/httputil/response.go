package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medicitas/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response, mapping application error
// codes onto HTTP statuses.
func RespondWithError(c *gin.Context, err error) {
	RespondWithErrorDetails(c, err, nil)
}

// RespondWithErrorDetails sends an error response with an additional
// payload, used for conflicts where the caller needs the colliding
// record.
func RespondWithErrorDetails(c *gin.Context, err error, details interface{}) {
	status := statusFor(err)
	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: messageFor(err, status),
			Details: details,
		},
	})
}

func statusFor(err error) int {
	switch errors.Code(err) {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest, errors.ErrInvalidDateTime:
		return http.StatusBadRequest
	case errors.ErrInvalidState, errors.ErrDuplicateIdentity:
		return http.StatusConflict
	case errors.ErrPersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
