// Package catalogtest holds behaviour every catalog adapter must share.
package catalogtest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

// Factory returns repositories backed by an empty catalog.
type Factory func(t *testing.T) (ports.ModelRepository, ports.VersionRepository)

// Run exercises the catalog contract against the repositories from newCatalog.
func Run(t *testing.T, newCatalog Factory) {
	t.Run("CreateAndGetModel", func(t *testing.T) { testCreateAndGetModel(t, newCatalog) })
	t.Run("DuplicateModelName", func(t *testing.T) { testDuplicateModelName(t, newCatalog) })
	t.Run("ListModels", func(t *testing.T) { testListModels(t, newCatalog) })
	t.Run("ArchiveModel", func(t *testing.T) { testArchiveModel(t, newCatalog) })
	t.Run("CreateAndGetVersion", func(t *testing.T) { testCreateAndGetVersion(t, newCatalog) })
	t.Run("DuplicateVersion", func(t *testing.T) { testDuplicateVersion(t, newCatalog) })
	t.Run("VersionForMissingModel", func(t *testing.T) { testVersionForMissingModel(t, newCatalog) })
	t.Run("ListVersions", func(t *testing.T) { testListVersions(t, newCatalog) })
	t.Run("ArchiveVersion", func(t *testing.T) { testArchiveVersion(t, newCatalog) })
	t.Run("ConcurrentVersionInsert", func(t *testing.T) { testConcurrentVersionInsert(t, newCatalog) })
}

// NewModel inserts a model named name and returns it.
func NewModel(t *testing.T, repo ports.ModelRepository, name string) *domain.Model {
	t.Helper()
	m := &domain.Model{Name: name, State: domain.ArchiveStateActive}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

// NewVersion builds an unsaved version row for modelID.
func NewVersion(modelID int64, tag string) *domain.Version {
	return &domain.Version{
		ModelID:     modelID,
		Tag:         tag,
		ContentHash: "0123456789abcdef",
		StoragePath: "/tmp/vessel/0123456789abcdef",
		Created:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		State:       domain.ArchiveStateActive,
	}
}

func testCreateAndGetModel(t *testing.T, newCatalog Factory) {
	models, _ := newCatalog(t)
	ctx := context.Background()

	m := &domain.Model{Name: "resnet", Description: null.StringFrom("image classifier"), State: domain.ArchiveStateActive}
	require.NoError(t, models.Create(ctx, m))
	assert.NotZero(t, m.ID)

	got, err := models.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "resnet", got.Name)
	assert.Equal(t, null.StringFrom("image classifier"), got.Description)
	assert.False(t, got.Archived())

	bare := NewModel(t, models, "bert")
	got, err = models.GetByID(ctx, bare.ID)
	require.NoError(t, err)
	assert.False(t, got.Description.Valid)

	_, err = models.GetByID(ctx, bare.ID+1000)
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func testDuplicateModelName(t *testing.T, newCatalog Factory) {
	models, _ := newCatalog(t)
	NewModel(t, models, "resnet")

	err := models.Create(context.Background(), &domain.Model{Name: "resnet", State: domain.ArchiveStateActive})
	assert.ErrorIs(t, err, domain.ErrDuplicateModelName)
}

func testListModels(t *testing.T, newCatalog Factory) {
	models, _ := newCatalog(t)
	ctx := context.Background()

	a := NewModel(t, models, "a")
	b := NewModel(t, models, "b")
	c := NewModel(t, models, "c")
	require.NoError(t, models.SetArchived(ctx, b.ID, true))

	active, total, err := models.List(ctx, ports.ModelListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, c.ID, active[1].ID)

	all, total, err := models.List(ctx, ports.ModelListFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	page, total, err := models.List(ctx, ports.ModelListFilter{IncludeArchived: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, b.ID, page[0].ID)
	assert.True(t, page[0].Archived())
}

func testArchiveModel(t *testing.T, newCatalog Factory) {
	models, _ := newCatalog(t)
	ctx := context.Background()
	m := NewModel(t, models, "resnet")

	require.NoError(t, models.SetArchived(ctx, m.ID, true))
	require.NoError(t, models.SetArchived(ctx, m.ID, true))

	got, err := models.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived())

	require.NoError(t, models.SetArchived(ctx, m.ID, false))
	got, err = models.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived())

	assert.ErrorIs(t, models.SetArchived(ctx, m.ID+1000, true), domain.ErrModelNotFound)
}

func testCreateAndGetVersion(t *testing.T, newCatalog Factory) {
	models, versions := newCatalog(t)
	ctx := context.Background()
	m := NewModel(t, models, "resnet")

	v := NewVersion(m.ID, "v1")
	v.DataSet = null.StringFrom("imagenet")
	require.NoError(t, versions.Create(ctx, v))
	assert.NotZero(t, v.ID)

	got, err := versions.GetByTag(ctx, m.ID, "v1")
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
	assert.Equal(t, m.ID, got.ModelID)
	assert.Equal(t, "0123456789abcdef", got.ContentHash)
	assert.Equal(t, "/tmp/vessel/0123456789abcdef", got.StoragePath)
	assert.Equal(t, null.StringFrom("imagenet"), got.DataSet)
	assert.False(t, got.Pipeline.Valid)
	assert.WithinDuration(t, v.Created, got.Created, time.Second)
	assert.False(t, got.Archived())

	_, err = versions.GetByTag(ctx, m.ID, "v2")
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func testDuplicateVersion(t *testing.T, newCatalog Factory) {
	models, versions := newCatalog(t)
	ctx := context.Background()
	resnet := NewModel(t, models, "resnet")
	bert := NewModel(t, models, "bert")

	require.NoError(t, versions.Create(ctx, NewVersion(resnet.ID, "v1")))
	assert.ErrorIs(t, versions.Create(ctx, NewVersion(resnet.ID, "v1")), domain.ErrDuplicateVersion)

	// Tags are scoped to their model.
	require.NoError(t, versions.Create(ctx, NewVersion(bert.ID, "v1")))
}

func testVersionForMissingModel(t *testing.T, newCatalog Factory) {
	_, versions := newCatalog(t)

	err := versions.Create(context.Background(), NewVersion(4242, "v1"))
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func testListVersions(t *testing.T, newCatalog Factory) {
	models, versions := newCatalog(t)
	ctx := context.Background()
	m := NewModel(t, models, "resnet")
	other := NewModel(t, models, "bert")

	for i, tag := range []string{"v1", "v2", "v3"} {
		v := NewVersion(m.ID, tag)
		v.Created = v.Created.Add(time.Duration(i) * time.Minute)
		require.NoError(t, versions.Create(ctx, v))
	}
	require.NoError(t, versions.Create(ctx, NewVersion(other.ID, "v1")))
	require.NoError(t, versions.SetArchived(ctx, m.ID, "v2", true))

	active, total, err := versions.ListByModel(ctx, ports.VersionListFilter{ModelID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, active, 2)
	assert.Equal(t, "v1", active[0].Tag)
	assert.Equal(t, "v3", active[1].Tag)

	all, total, err := versions.ListByModel(ctx, ports.VersionListFilter{ModelID: m.ID, IncludeArchived: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"v1", "v2", "v3"}, tags(all))

	page, _, err := versions.ListByModel(ctx, ports.VersionListFilter{ModelID: m.ID, IncludeArchived: true, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"v3"}, tags(page))

	none, total, err := versions.ListByModel(ctx, ports.VersionListFilter{ModelID: other.ID + 1000})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func testArchiveVersion(t *testing.T, newCatalog Factory) {
	models, versions := newCatalog(t)
	ctx := context.Background()
	m := NewModel(t, models, "resnet")
	require.NoError(t, versions.Create(ctx, NewVersion(m.ID, "v1")))

	require.NoError(t, versions.SetArchived(ctx, m.ID, "v1", true))
	require.NoError(t, versions.SetArchived(ctx, m.ID, "v1", true))

	got, err := versions.GetByTag(ctx, m.ID, "v1")
	require.NoError(t, err)
	assert.True(t, got.Archived())

	assert.ErrorIs(t, versions.SetArchived(ctx, m.ID, "nope", true), domain.ErrVersionNotFound)
}

func testConcurrentVersionInsert(t *testing.T, newCatalog Factory) {
	models, versions := newCatalog(t)
	m := NewModel(t, models, "resnet")
	const n = 6

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := NewVersion(m.ID, "v1")
			v.ContentHash = fmt.Sprintf("%016x", i)
			errs[i] = versions.Create(context.Background(), v)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateVersion)
	}
	assert.Equal(t, 1, succeeded)
}

func tags(vs []*domain.Version) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Tag)
	}
	return out
}
