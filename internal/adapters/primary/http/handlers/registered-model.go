package handlers

import (
	"net/http"

	"vessel-registry/internal/adapters/primary/http/dto"
	"vessel-registry/internal/core/ports/output"
	"vessel-registry/internal/core/services"

	"github.com/gin-gonic/gin"
	"gopkg.in/guregu/null.v3"
)

func (h *Handler) ListModels(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	filter := ports.ModelListFilter{
		IncludeArchived: params.includeArchived,
		Limit:           params.limit,
		Offset:          params.offset,
	}

	models, total, err := h.modelSvc.List(c.Request.Context(), filter)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := dto.ToModelResponses(models)
	c.JSON(http.StatusOK, dto.ListModelsResponse{
		Items:      items,
		Total:      total,
		PageSize:   services.PageLimit(params.limit),
		NextOffset: params.offset + len(items),
	})
}

func (h *Handler) CreateModel(c *gin.Context) {
	var req dto.CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.modelSvc.Create(c.Request.Context(), services.CreateModelRequest{
		Name:        req.Name,
		Description: null.StringFromPtr(req.Description),
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToModelResponse(model))
}

func (h *Handler) GetModel(c *gin.Context) {
	id, ok := parseModelID(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelResponse(model))
}

func (h *Handler) ArchiveModel(c *gin.Context) {
	id, ok := parseModelID(c)
	if !ok {
		return
	}

	model, err := h.modelSvc.Archive(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelResponse(model))
}
