package dto

type ArtifactResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type ListArtifactsResponse struct {
	Items []ArtifactResponse `json:"items"`
	Total int                `json:"total"`
}
