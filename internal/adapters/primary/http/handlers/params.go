package handlers

import (
	"net/http"
	"strconv"

	"vessel-registry/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// parseModelID reads the :id path parameter, answering 400 itself on failure.
func parseModelID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		mapDomainError(c, domain.ErrInvalidModelID)
		return 0, false
	}
	return id, true
}

type listParams struct {
	includeArchived bool
	limit           int
	offset          int
}

func parseListParams(c *gin.Context) (listParams, bool) {
	var p listParams
	var err error

	if p.includeArchived, err = strconv.ParseBool(c.DefaultQuery("include_archived", "false")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "include_archived must be a boolean"})
		return p, false
	}
	if p.limit, err = strconv.Atoi(c.DefaultQuery("limit", "0")); err != nil || p.limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return p, false
	}
	if p.offset, err = strconv.Atoi(c.DefaultQuery("offset", "0")); err != nil || p.offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return p, false
	}
	return p, true
}
