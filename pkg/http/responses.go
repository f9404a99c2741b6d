package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/maintenance-service/pkg/common"
)

// respondError maps typed service errors to status codes. Anything untyped
// is logged and answered with a generic message.
func respondError(c *gin.Context, category string, err error) {
	var validation common.ValidationError
	switch {
	case errors.As(err, &validation):
		body := gin.H{"message": validation.Message}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case common.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case common.IsConflictError(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case common.IsUnauthorizedError(err):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case common.IsForbiddenError(err):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		serverLogger(category).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// respondBadRequest answers a body that failed schema or binding validation.
func respondBadRequest(c *gin.Context, err any) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "errors": err})
}

func respondEntity(c *gin.Context, status int, message string, entity any) {
	c.JSON(status, gin.H{"message": message, "entity": entity})
}

// paramID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// bindPatch decodes an update body. Empty bodies are treated as an empty
// patch.
func bindPatch(c *gin.Context, patch any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(patch); err != nil {
		respondBadRequest(c, strings.Split(err.Error(), "\n"))
		return false
	}
	return true
}

func optionalUint(v int) *uint {
	if v <= 0 {
		return nil
	}
	id := uint(v)
	return &id
}

func parseOptionalBool(value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
