package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v3"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

type CreateModelRequest struct {
	Name        string `validate:"required,max=255"`
	Description null.String
}

type ModelService struct {
	repo ports.ModelRepository
}

func NewModelService(repo ports.ModelRepository) *ModelService {
	return &ModelService{repo: repo}
}

func (s *ModelService) Create(ctx context.Context, req CreateModelRequest) (*domain.Model, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, map[string]error{"Name": domain.ErrInvalidModelName})
	}

	model := &domain.Model{
		Name:        req.Name,
		Description: req.Description,
		State:       domain.ArchiveStateActive,
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"model_id": model.ID, "name": model.Name}).Info("model created")
	return model, nil
}

func (s *ModelService) Get(ctx context.Context, id int64) (*domain.Model, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidModelID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ModelService) List(ctx context.Context, filter ports.ModelListFilter) ([]*domain.Model, int, error) {
	filter.Limit = PageLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Archive marks the model archived. Archiving twice is not an error.
func (s *ModelService) Archive(ctx context.Context, id int64) (*domain.Model, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidModelID
	}
	if err := s.repo.SetArchived(ctx, id, true); err != nil {
		return nil, err
	}
	log.WithField("model_id", id).Info("model archived")
	return s.repo.GetByID(ctx, id)
}
