package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// If it's not an AppError, it defaults to 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.KindStorage {
			log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), appErr.Err)
		}
		c.JSON(appErr.Code, ErrorResponse{
			Error:   appErr.Message,
			Reason:  appErr.Reason,
			Details: appErr.Detail,
		})
		return
	}

	log.Printf("[http] %s %s: unexpected error: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest sends a 400 for binding failures.
func BadRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message, Reason: "invalid_input"}
	if err != nil {
		resp.Details = map[string]any{"cause": err.Error()}
	}
	c.JSON(http.StatusBadRequest, resp)
}
