package apperrors

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the failure half of the API envelope:
// {"success":false,"error":CODE,"message":...,"errors":[...]}.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorCode   `json:"error"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// HandleError writes err as the standard failure envelope. Non-AppError values
// are wrapped as INTERNAL_ERROR so raw causes never leak to clients.
func HandleError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{
		Success: false,
		Error:   appErr.Code,
		Message: appErr.Message,
		Errors:  appErr.Details,
	})
}

// AsAppError unwraps err into *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
