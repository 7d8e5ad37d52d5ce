package utils

import (
	"github.com/business-admin-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RespondOK writes a success envelope with the given payload
func RespondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError writes a failure envelope
func RespondError(c *gin.Context, status int, message, detail string) {
	c.JSON(status, models.Envelope{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
