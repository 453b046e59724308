// Package response writes the JSON error bodies shared by all handlers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const notFoundDetail = "Not found."

// Detail writes {"detail": message}.
func Detail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": message})
}

func NotFound(c *gin.Context) {
	Detail(c, http.StatusNotFound, notFoundDetail)
}

// Validation writes field-scoped messages, one list per field.
func Validation(c *gin.Context, fields map[string][]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, fields)
}

// Conflict reports a membership clash as {"errors": message}.
func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": message})
}

func Internal(c *gin.Context) {
	Detail(c, http.StatusInternalServerError, "A server error occurred.")
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
