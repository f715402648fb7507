package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vivaha/backend/internal/models"
)

// OK sends a success envelope with optional payload.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, models.Envelope{Success: true, Data: data})
}

// ErrorResponse sends a failure envelope.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, models.Envelope{Success: false, Message: message})
}

// CodedErrorResponse sends a failure envelope with a machine-readable code.
func CodedErrorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.Envelope{Success: false, Code: code, Message: message})
}
