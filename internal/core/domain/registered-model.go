package domain

import (
	"gopkg.in/guregu/null.v3"
)

type ArchiveState string

const (
	ArchiveStateActive   ArchiveState = "ACTIVE"
	ArchiveStateArchived ArchiveState = "ARCHIVED"
)

// ArchiveStateOf maps the catalog's boolean column onto the tagged state.
func ArchiveStateOf(archived bool) ArchiveState {
	if archived {
		return ArchiveStateArchived
	}
	return ArchiveStateActive
}

func (s ArchiveState) Archived() bool {
	return s == ArchiveStateArchived
}

type Model struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description null.String  `json:"description"`
	State       ArchiveState `json:"state"`
}

func (m *Model) Archived() bool {
	return m.State.Archived()
}
