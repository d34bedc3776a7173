package contentstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vessel-registry/internal/core/domain"
	"vessel-registry/internal/core/ports/output"
)

const testHash = "0123456789abcdef"

func newStore(t *testing.T, verify bool) *Store {
	t.Helper()
	s, err := New(t.TempDir(), Options{VerifyDedup: verify})
	require.NoError(t, err)
	return s
}

func scratchWith(t *testing.T, s *Store, files map[string]string) *ports.Workspace {
	t.Helper()
	ws, err := s.AllocateScratch(context.Background())
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(ws.Path, name), []byte(content), 0o644))
	}
	return ws
}

func scratchEntries(t *testing.T, s *Store) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(s.Root(), ScratchDirName))
	require.NoError(t, err)
	return entries
}

// scratchInOrder writes files one by one and records their upload order.
func scratchInOrder(t *testing.T, s *Store, pairs ...string) *ports.Workspace {
	t.Helper()
	ws, err := s.AllocateScratch(context.Background())
	require.NoError(t, err)
	for i := 0; i < len(pairs); i += 2 {
		require.NoError(t, os.WriteFile(filepath.Join(ws.Path, pairs[i]), []byte(pairs[i+1]), 0o644))
		ws.Files = append(ws.Files, pairs[i])
	}
	return ws
}

func backdate(t *testing.T, ws *ports.Workspace, when time.Time) {
	t.Helper()
	entries, err := os.ReadDir(ws.Path)
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, os.Chtimes(filepath.Join(ws.Path, e.Name()), when, when))
	}
	require.NoError(t, os.Chtimes(ws.Path, when, when))
}

func TestAllocateScratch_UniqueWorkspaces(t *testing.T) {
	s := newStore(t, true)

	a, err := s.AllocateScratch(context.Background())
	require.NoError(t, err)
	b, err := s.AllocateScratch(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.DirExists(t, a.Path)
	assert.DirExists(t, b.Path)
	assert.Equal(t, filepath.Join(s.Root(), ScratchDirName, a.ID), a.Path)
}

func TestPublish_FirstWins(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"weights.bin": "abc"})

	outcome, path, err := s.Publish(context.Background(), ws, testHash)
	require.NoError(t, err)

	assert.Equal(t, ports.Published, outcome)
	assert.Equal(t, filepath.Join(s.Root(), testHash), path)
	assert.FileExists(t, filepath.Join(path, "weights.bin"))
	assert.NoDirExists(t, ws.Path)
}

func TestPublish_DedupDiscardsScratch(t *testing.T) {
	s := newStore(t, true)
	first := scratchWith(t, s, map[string]string{"weights.bin": "abc"})
	_, _, err := s.Publish(context.Background(), first, testHash)
	require.NoError(t, err)

	second := scratchWith(t, s, map[string]string{"weights.bin": "abc"})
	outcome, path, err := s.Publish(context.Background(), second, testHash)
	require.NoError(t, err)

	assert.Equal(t, ports.AlreadyPublished, outcome)
	assert.Equal(t, filepath.Join(s.Root(), testHash), path)
	assert.NoDirExists(t, second.Path)
	assert.Empty(t, scratchEntries(t, s))
}

func TestPublish_CollisionDetected(t *testing.T) {
	s := newStore(t, true)
	first := scratchWith(t, s, map[string]string{"weights.bin": "abc"})
	_, _, err := s.Publish(context.Background(), first, testHash)
	require.NoError(t, err)

	second := scratchWith(t, s, map[string]string{"weights.bin": "xyz"})
	_, _, err = s.Publish(context.Background(), second, testHash)
	assert.ErrorIs(t, err, domain.ErrContentCollision)
	assert.ErrorIs(t, err, domain.ErrStorage)

	got, err := os.ReadFile(filepath.Join(s.Root(), testHash, "weights.bin"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestPublish_DedupComparesBytesOnly(t *testing.T) {
	s := newStore(t, true)
	first := scratchInOrder(t, s, "weights.bin", "abc")
	_, _, err := s.Publish(context.Background(), first, testHash)
	require.NoError(t, err)

	renamed := scratchInOrder(t, s, "model.bin", "abc")
	outcome, _, err := s.Publish(context.Background(), renamed, testHash)
	require.NoError(t, err)
	assert.Equal(t, ports.AlreadyPublished, outcome)

	split := scratchInOrder(t, s, "a", "ab", "b", "c")
	outcome, _, err = s.Publish(context.Background(), split, testHash)
	require.NoError(t, err)
	assert.Equal(t, ports.AlreadyPublished, outcome)
	assert.Empty(t, scratchEntries(t, s))

	other := scratchInOrder(t, s, "model.bin", "abd")
	_, _, err = s.Publish(context.Background(), other, testHash)
	assert.ErrorIs(t, err, domain.ErrContentCollision)

	longer := scratchInOrder(t, s, "weights.bin", "abc", "extra.bin", "x")
	_, _, err = s.Publish(context.Background(), longer, testHash)
	assert.ErrorIs(t, err, domain.ErrContentCollision)
}

func TestPublish_DedupFollowsUploadOrder(t *testing.T) {
	s := newStore(t, true)
	first := scratchInOrder(t, s, "b.bin", "12", "a.bin", "34")
	_, _, err := s.Publish(context.Background(), first, testHash)
	require.NoError(t, err)

	same := scratchInOrder(t, s, "b.bin", "12", "a.bin", "34")
	outcome, _, err := s.Publish(context.Background(), same, testHash)
	require.NoError(t, err)
	assert.Equal(t, ports.AlreadyPublished, outcome)

	swapped := scratchInOrder(t, s, "b.bin", "34", "a.bin", "12")
	_, _, err = s.Publish(context.Background(), swapped, testHash)
	assert.ErrorIs(t, err, domain.ErrContentCollision)
}

func TestPublish_CancelledIsIngestFailure(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"a": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Publish(ctx, ws, testHash)
	assert.ErrorIs(t, err, domain.ErrIngest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrStorage)
	assert.NoDirExists(t, filepath.Join(s.Root(), testHash))
}

func TestPublish_NoVerifyTrustsHash(t *testing.T) {
	s := newStore(t, false)
	first := scratchWith(t, s, map[string]string{"a": "1"})
	_, _, err := s.Publish(context.Background(), first, testHash)
	require.NoError(t, err)

	second := scratchWith(t, s, map[string]string{"b": "2"})
	outcome, _, err := s.Publish(context.Background(), second, testHash)
	require.NoError(t, err)
	assert.Equal(t, ports.AlreadyPublished, outcome)
}

func TestPublish_MalformedHash(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"a": "1"})

	for _, h := range []string{"", "short", "../0123456789abcdef", "0123456789ABCDEF"} {
		_, _, err := s.Publish(context.Background(), ws, h)
		assert.ErrorIs(t, err, domain.ErrStorage, h)
	}
	assert.DirExists(t, ws.Path)
}

func TestPublish_ConcurrentSameHash(t *testing.T) {
	s := newStore(t, true)
	const n = 8

	workspaces := make([]*ports.Workspace, n)
	for i := range workspaces {
		workspaces[i] = scratchWith(t, s, map[string]string{"weights.bin": "same bytes"})
	}

	outcomes := make([]ports.PublishOutcome, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range workspaces {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], _, errs[i] = s.Publish(context.Background(), workspaces[i], testHash)
		}(i)
	}
	wg.Wait()

	published := 0
	for i := range outcomes {
		require.NoError(t, errs[i])
		if outcomes[i] == ports.Published {
			published++
		}
	}
	assert.Equal(t, 1, published)
	assert.Empty(t, scratchEntries(t, s))

	got, err := os.ReadFile(filepath.Join(s.Root(), testHash, "weights.bin"))
	require.NoError(t, err)
	assert.Equal(t, "same bytes", string(got))
}

func TestDiscard_Idempotent(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"a": "1"})

	require.NoError(t, s.Discard(ws))
	require.NoError(t, s.Discard(ws))
	require.NoError(t, s.Discard(nil))
	assert.NoDirExists(t, ws.Path)
}

func TestOpen(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"weights.bin": "abcdef"})
	_, _, err := s.Publish(context.Background(), ws, testHash)
	require.NoError(t, err)

	rc, size, err := s.Open(context.Background(), testHash, "weights.bin")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))
	assert.Equal(t, int64(6), size)

	_, _, err = s.Open(context.Background(), testHash, "missing.bin")
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	_, _, err = s.Open(context.Background(), testHash, "../"+testHash)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	_, _, err = s.Open(context.Background(), "fedcba9876543210", "weights.bin")
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestList(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"b.bin": "bb", "a.bin": "a"})
	_, _, err := s.Publish(context.Background(), ws, testHash)
	require.NoError(t, err)

	artifacts, err := s.List(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, []domain.Artifact{{Name: "a.bin", Size: 1}, {Name: "b.bin", Size: 2}}, artifacts)

	_, err = s.List(context.Background(), "fedcba9876543210")
	assert.ErrorIs(t, err, domain.ErrStorage)
	_, err = s.List(context.Background(), "../etc")
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestSweep_RemovesOnlyStaleWorkspaces(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s, err := New(t.TempDir(), Options{Clock: clock})
	require.NoError(t, err)

	stale := scratchWith(t, s, map[string]string{"a": "1"})
	fresh := scratchWith(t, s, map[string]string{"b": "2"})
	backdate(t, stale, clock.Now().Add(-2*time.Hour))
	backdate(t, fresh, clock.Now().Add(-time.Minute))

	removed, err := s.Sweep(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NoDirExists(t, stale.Path)
	assert.DirExists(t, fresh.Path)
}

func TestSweep_KeepsWorkspaceWithRecentWrites(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s, err := New(t.TempDir(), Options{Clock: clock})
	require.NoError(t, err)

	ws := scratchWith(t, s, map[string]string{"weights.bin": "partial"})
	backdate(t, ws, clock.Now().Add(-2*time.Hour))
	// A file still being streamed keeps moving its own mtime, not the directory's.
	recent := clock.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(ws.Path, "weights.bin"), recent, recent))

	removed, err := s.Sweep(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Zero(t, removed)
	assert.DirExists(t, ws.Path)
}

func TestSweeper_RunsOnSchedule(t *testing.T) {
	s := newStore(t, true)
	ws := scratchWith(t, s, map[string]string{"a": "1"})
	backdate(t, ws, time.Now().Add(-time.Hour))

	sw, err := NewSweeper(s, 20*time.Millisecond, time.Minute)
	require.NoError(t, err)
	sw.Start()
	defer func() { assert.NoError(t, sw.Stop()) }()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(ws.Path)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewSweeper_RejectsNonPositiveInterval(t *testing.T) {
	_, err := NewSweeper(newStore(t, true), 0, time.Minute)
	assert.Error(t, err)
}
