package dto

// Multipart form field names accepted by the upload endpoint. Text fields
// must come before the first file part.
const (
	FormFieldTag      = "tag"
	FormFieldDataSet  = "data_set"
	FormFieldPipeline = "pipeline"
	FormFieldFiles    = "files"
)

type UpdateVersionRequest struct {
	Archived *bool `json:"archived"`
}

type VersionResponse struct {
	ID       int64   `json:"id"`
	ModelID  int64   `json:"model_id"`
	Tag      string  `json:"tag"`
	Hash     string  `json:"hash"`
	Path     string  `json:"path"`
	DataSet  *string `json:"data_set"`
	Pipeline *string `json:"pipeline"`
	Created  string  `json:"created"`
	Archived bool    `json:"archived"`
	State    string  `json:"state"`
}

type ListVersionsResponse struct {
	Items      []VersionResponse `json:"items"`
	Total      int               `json:"total"`
	PageSize   int               `json:"page_size"`
	NextOffset int               `json:"next_offset"`
}
