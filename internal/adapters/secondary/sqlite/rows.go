package sqlite

import (
	"time"

	"gopkg.in/guregu/null.v3"

	"vessel-registry/internal/core/domain"
)

type modelRow struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string  `gorm:"column:name;not null;uniqueIndex:idx_models_name"`
	Description *string `gorm:"column:description"`
	Archived    bool    `gorm:"column:archived;not null"`
}

func (modelRow) TableName() string { return "models" }

type versionRow struct {
	ID       int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ModelID  int64     `gorm:"column:model_id;not null;uniqueIndex:idx_versions_model_tag,priority:1"`
	Model    *modelRow `gorm:"foreignKey:ModelID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Tag      string    `gorm:"column:tag;not null;uniqueIndex:idx_versions_model_tag,priority:2"`
	Hash     string    `gorm:"column:hash;not null;index:idx_versions_hash"`
	Path     string    `gorm:"column:path;not null"`
	DataSet  *string   `gorm:"column:data_set"`
	Pipeline *string   `gorm:"column:pipeline"`
	Created  time.Time `gorm:"column:created;not null"`
	Archived bool      `gorm:"column:archived;not null"`
}

func (versionRow) TableName() string { return "versions" }

func toModelRow(m *domain.Model) *modelRow {
	return &modelRow{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description.Ptr(),
		Archived:    m.Archived(),
	}
}

func (r *modelRow) toDomain() *domain.Model {
	return &domain.Model{
		ID:          r.ID,
		Name:        r.Name,
		Description: null.StringFromPtr(r.Description),
		State:       domain.ArchiveStateOf(r.Archived),
	}
}

func toVersionRow(v *domain.Version) *versionRow {
	return &versionRow{
		ID:       v.ID,
		ModelID:  v.ModelID,
		Tag:      v.Tag,
		Hash:     v.ContentHash,
		Path:     v.StoragePath,
		DataSet:  v.DataSet.Ptr(),
		Pipeline: v.Pipeline.Ptr(),
		Created:  v.Created.UTC(),
		Archived: v.Archived(),
	}
}

func (r *versionRow) toDomain() *domain.Version {
	return &domain.Version{
		ID:          r.ID,
		ModelID:     r.ModelID,
		Tag:         r.Tag,
		ContentHash: r.Hash,
		StoragePath: r.Path,
		DataSet:     null.StringFromPtr(r.DataSet),
		Pipeline:    null.StringFromPtr(r.Pipeline),
		Created:     r.Created,
		State:       domain.ArchiveStateOf(r.Archived),
	}
}
