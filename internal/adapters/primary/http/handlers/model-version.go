package handlers

import (
	"net/http"

	"vessel-registry/internal/adapters/primary/http/dto"
	"vessel-registry/internal/core/ports/output"
	"vessel-registry/internal/core/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListVersions(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	filter := ports.VersionListFilter{
		ModelID:         modelID,
		IncludeArchived: params.includeArchived,
		Limit:           params.limit,
		Offset:          params.offset,
	}

	versions, total, err := h.versionSvc.List(c.Request.Context(), filter)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := dto.ToVersionResponses(versions)
	c.JSON(http.StatusOK, dto.ListVersionsResponse{
		Items:      items,
		Total:      total,
		PageSize:   services.PageLimit(params.limit),
		NextOffset: params.offset + len(items),
	})
}

// RegisterVersion streams a multipart upload into the registrar. Text fields
// (tag, data_set, pipeline) must precede the file parts.
func (h *Handler) RegisterVersion(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a multipart/form-data body"})
		return
	}

	form, files, err := readUploadForm(mr)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	defer files.Close()

	version, err := h.versionSvc.Register(c.Request.Context(), services.RegisterVersionRequest{
		ModelID:  modelID,
		Tag:      form.tag,
		DataSet:  form.dataSet,
		Pipeline: form.pipeline,
	}, files)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToVersionResponse(version))
}

func (h *Handler) GetVersion(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}

	version, err := h.versionSvc.Get(c.Request.Context(), modelID, c.Param("tag"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVersionResponse(version))
}

func (h *Handler) UpdateVersion(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}

	var req dto.UpdateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	tag := c.Param("tag")
	if req.Archived == nil {
		version, err := h.versionSvc.Get(ctx, modelID, tag)
		if err != nil {
			mapDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToVersionResponse(version))
		return
	}

	version, err := h.versionSvc.SetArchived(ctx, modelID, tag, *req.Archived)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVersionResponse(version))
}

func (h *Handler) ArchiveVersion(c *gin.Context) {
	modelID, ok := parseModelID(c)
	if !ok {
		return
	}

	version, err := h.versionSvc.Archive(c.Request.Context(), modelID, c.Param("tag"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVersionResponse(version))
}
