package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ingest"
	"vessel-registry/internal/core/ports/output"
	"vessel-registry/internal/core/services"
	"vessel-registry/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

const apiPrefix = "/api/v0"

func setupModelRouter(t *testing.T) (*testutil.MockModelRepo, *testutil.MockVersionRepo, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	modelRepo := new(testutil.MockModelRepo)
	versionRepo := new(testutil.MockVersionRepo)
	store := new(testutil.MockContentStore)

	pipeline, err := ingest.New(ingest.Config{ChunkSize: ingest.DefaultChunkSize})
	require.NoError(t, err)

	h := New(
		services.NewModelService(modelRepo),
		services.NewVersionService(versionRepo, modelRepo, store, pipeline),
	)
	r := gin.New()
	h.RegisterRoutes(r.Group(apiPrefix))

	return modelRepo, versionRepo, r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListModels(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	models := []*domain.Model{
		{ID: 1, Name: "resnet", State: domain.ArchiveStateActive},
		{ID: 2, Name: "bert", Description: null.StringFrom("encoder"), State: domain.ArchiveStateActive},
	}
	modelRepo.On("List", mock.Anything, ports.ModelListFilter{Limit: 10, Offset: 0}).Return(models, 5, nil)

	req, _ := http.NewRequest("GET", apiPrefix+"/models?limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(5), resp["total"])
	assert.Equal(t, float64(10), resp["page_size"])
	assert.Equal(t, float64(2), resp["next_offset"])
	items := resp["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Nil(t, items[0].(map[string]interface{})["description"])
	assert.Equal(t, "encoder", items[1].(map[string]interface{})["description"])
}

func TestListModels_IncludeArchivedDefaults(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	filter := ports.ModelListFilter{IncludeArchived: true, Limit: services.DefaultPageSize}
	modelRepo.On("List", mock.Anything, filter).Return([]*domain.Model{}, 0, nil)

	req, _ := http.NewRequest("GET", apiPrefix+"/models?include_archived=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(services.DefaultPageSize), resp["page_size"])
	assert.Empty(t, resp["items"])
	modelRepo.AssertExpectations(t)
}

func TestListModels_BadQuery(t *testing.T) {
	_, _, r := setupModelRouter(t)

	for _, q := range []string{"include_archived=maybe", "limit=-1", "offset=x"} {
		req, _ := http.NewRequest("GET", apiPrefix+"/models?"+q, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestCreateModel(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	modelRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Model) bool {
		return m.Name == "resnet" && m.Description.String == "image classifier"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Model).ID = 7
	}).Return(nil)

	body, _ := json.Marshal(map[string]string{"name": "resnet", "description": "image classifier"})
	req, _ := http.NewRequest("POST", apiPrefix+"/models", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(7), resp["id"])
	assert.Equal(t, "resnet", resp["name"])
	assert.Equal(t, false, resp["archived"])
	assert.Equal(t, string(domain.ArchiveStateActive), resp["state"])
}

func TestCreateModel_MissingName(t *testing.T) {
	_, _, r := setupModelRouter(t)

	req, _ := http.NewRequest("POST", apiPrefix+"/models", bytes.NewReader([]byte(`{"description":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateModel_BlankName(t *testing.T) {
	_, _, r := setupModelRouter(t)

	req, _ := http.NewRequest("POST", apiPrefix+"/models", bytes.NewReader([]byte(`{"name":"   "}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "model name is required")
}

func TestCreateModel_Conflict(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	modelRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateModelName)

	req, _ := http.NewRequest("POST", apiPrefix+"/models", bytes.NewReader([]byte(`{"name":"resnet"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetModel(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	modelRepo.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Model{ID: 3, Name: "resnet", State: domain.ArchiveStateActive}, nil)

	req, _ := http.NewRequest("GET", apiPrefix+"/models/3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resnet", decode(t, w)["name"])
}

func TestGetModel_NotFound(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	modelRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrModelNotFound)

	req, _ := http.NewRequest("GET", apiPrefix+"/models/99", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetModel_InvalidID(t *testing.T) {
	_, _, r := setupModelRouter(t)

	for _, id := range []string{"abc", "0", "-4"} {
		req, _ := http.NewRequest("GET", apiPrefix+"/models/"+id, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestArchiveModel(t *testing.T) {
	modelRepo, _, r := setupModelRouter(t)

	modelRepo.On("SetArchived", mock.Anything, int64(3), true).Return(nil)
	modelRepo.On("GetByID", mock.Anything, int64(3)).
		Return(&domain.Model{ID: 3, Name: "resnet", State: domain.ArchiveStateArchived}, nil)

	req, _ := http.NewRequest("DELETE", apiPrefix+"/models/3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["archived"])
	assert.Equal(t, string(domain.ArchiveStateArchived), resp["state"])
}

func TestGetVersion_NotFound(t *testing.T) {
	_, versionRepo, r := setupModelRouter(t)

	versionRepo.On("GetByTag", mock.Anything, int64(3), "v1").
		Return(nil, domain.ErrVersionNotFound)

	req, _ := http.NewRequest("GET", apiPrefix+"/models/3/versions/v1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
