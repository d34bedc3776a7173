package handlers

import (
	"fmt"
	"net/http"

	"vessel-registry/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListFiles(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}

	artifacts, err := h.versionSvc.ListFiles(c.Request.Context(), modelID, c.Param("tag"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListArtifactsResponse{
		Items: dto.ToArtifactResponses(artifacts),
		Total: len(artifacts),
	})
}

func (h *Handler) DownloadFile(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}

	name := c.Param("name")
	rc, size, err := h.versionSvc.OpenFile(c.Request.Context(), modelID, c.Param("tag"), name)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.WithError(err).WithField("file", name).Warn("close published file")
		}
	}()

	c.DataFromReader(http.StatusOK, size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}
