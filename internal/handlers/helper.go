package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseUintParam parses a numeric path parameter, writing a 400 response and
// returning 0 when it is missing or malformed.
func ParseUintParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

// ParseStringIDParam returns a trimmed path parameter, writing a 400 response
// and returning "" when it is empty.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
	}
	return idStr
}

// QueryInt parses an optional integer query parameter.
func QueryInt(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// Pagination extracts limit/offset with sane defaults.
func Pagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if v := QueryInt(c, "limit"); v != nil && *v > 0 && *v <= 200 {
		limit = *v
	}
	if v := QueryInt(c, "offset"); v != nil && *v >= 0 {
		offset = *v
	}
	return limit, offset
}
