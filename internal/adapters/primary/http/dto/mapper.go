package dto

import (
	"time"

	"vessel-registry/internal/core/domain"
)

const timeFormat = time.RFC3339Nano

func ToModelResponse(m *domain.Model) ModelResponse {
	return ModelResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description.Ptr(),
		Archived:    m.Archived(),
		State:       string(m.State),
	}
}

func ToModelResponses(models []*domain.Model) []ModelResponse {
	items := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		items = append(items, ToModelResponse(m))
	}
	return items
}

func ToVersionResponse(v *domain.Version) VersionResponse {
	return VersionResponse{
		ID:       v.ID,
		ModelID:  v.ModelID,
		Tag:      v.Tag,
		Hash:     v.ContentHash,
		Path:     v.StoragePath,
		DataSet:  v.DataSet.Ptr(),
		Pipeline: v.Pipeline.Ptr(),
		Created:  v.Created.UTC().Format(timeFormat),
		Archived: v.Archived(),
		State:    string(v.State),
	}
}

func ToVersionResponses(versions []*domain.Version) []VersionResponse {
	items := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, ToVersionResponse(v))
	}
	return items
}

func ToArtifactResponses(artifacts []domain.Artifact) []ArtifactResponse {
	items := make([]ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		items = append(items, ArtifactResponse{Name: a.Name, Size: a.Size})
	}
	return items
}
