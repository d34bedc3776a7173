package domain

import (
	"time"

	"gopkg.in/guregu/null.v3"
)

// Version is one immutable, content-addressed upload of a Model. Only its
// archive state changes after insert.
type Version struct {
	ID          int64        `json:"id"`
	ModelID     int64        `json:"model_id"`
	Tag         string       `json:"tag"`
	ContentHash string       `json:"hash"`
	StoragePath string       `json:"path"`
	DataSet     null.String  `json:"data_set"`
	Pipeline    null.String  `json:"pipeline"`
	Created     time.Time    `json:"created"`
	State       ArchiveState `json:"state"`
}

func (v *Version) Archived() bool {
	return v.State.Archived()
}
