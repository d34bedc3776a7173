package domain

// Artifact is one file of a version's published content, projected from the
// content store rather than the catalog.
type Artifact struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
