package handlers

import (
	"errors"
	"net/http"

	"vessel-registry/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrModelNotFound),
		errors.Is(err, domain.ErrVersionNotFound),
		errors.Is(err, domain.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrDuplicateModelName),
		errors.Is(err, domain.ErrDuplicateVersion):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Content store errors
	case errors.Is(err, domain.ErrContentCollision):
		log.WithError(err).Error("content hash collision")
		c.JSON(http.StatusInsufficientStorage, gin.H{"error": domain.ErrContentCollision.Error()})
	case errors.Is(err, domain.ErrStorage):
		log.WithError(err).Error("content store failure")
		c.JSON(http.StatusInsufficientStorage, gin.H{"error": domain.ErrStorage.Error()})

	case errors.Is(err, domain.ErrIngest):
		log.WithError(err).Error("ingest failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrIngest.Error()})

	default:
		log.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
