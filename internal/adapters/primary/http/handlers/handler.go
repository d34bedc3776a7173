package handlers

import (
	"vessel-registry/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	modelSvc   *services.ModelService
	versionSvc *services.VersionService
}

func New(modelSvc *services.ModelService, versionSvc *services.VersionService) *Handler {
	return &Handler{
		modelSvc:   modelSvc,
		versionSvc: versionSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Models
	r.GET("/models", h.ListModels)
	r.POST("/models", h.CreateModel)
	r.GET("/models/:id", h.GetModel)
	r.DELETE("/models/:id", h.ArchiveModel)

	// Versions (nested under model, addressed by tag)
	r.GET("/models/:id/versions", h.ListVersions)
	r.POST("/models/:id/versions", h.RegisterVersion)
	r.GET("/models/:id/versions/:tag", h.GetVersion)
	r.PUT("/models/:id/versions/:tag", h.UpdateVersion)
	r.DELETE("/models/:id/versions/:tag", h.ArchiveVersion)

	// Published content
	r.GET("/models/:id/versions/:tag/files", h.ListFiles)
	r.GET("/models/:id/versions/:tag/files/:name", h.DownloadFile)
}
