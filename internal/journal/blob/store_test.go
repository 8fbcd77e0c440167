package blob

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "blobs.db"), logging.NewNopLogger())
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveGet_RoundTrip(t *testing.T) {
	s := newStore(t)
	s.now = func() time.Time { return time.UnixMilli(1709681400000) }
	ctx := context.Background()

	path, err := s.Save(ctx, "Emma", "broccoli.jpg", []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Emma/broccoli.jpg", path)

	got, err := s.Get(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, got.Data)
	assert.Equal(t, "image/jpeg", got.ContentType)
	assert.Equal(t, int64(1709681400000), got.Timestamp)
}

func TestSave_GeneratesFilename(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	path, err := s.Save(ctx, "Emma", "", []byte("audio"), "audio/webm")
	require.NoError(t, err)
	assert.True(t, len(path) > len("Emma/"))
	assert.Contains(t, path, "Emma/")
}

func TestSave_OverwritesExistingPath(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "Emma", "note.webm", []byte("v1"), "audio/webm")
	require.NoError(t, err)
	_, err = s.Save(ctx, "Emma", "note.webm", []byte("v2"), "audio/webm")
	require.NoError(t, err)

	got, err := s.Get(ctx, "Emma/note.webm")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("v2"), got.Data)
}

func TestGet_MissingReturnsNilNil(t *testing.T) {
	s := newStore(t)

	got, err := s.Get(context.Background(), "Emma/nope.jpg")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete_Idempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	path, err := s.Save(ctx, "Emma", "x.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, path))
	require.NoError(t, s.Delete(ctx, path))

	got, err := s.Get(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_FiltersByOwnerPrefix(t *testing.T) {
	s := newStore(t)
	s.now = func() time.Time { return time.UnixMilli(1709681400000) }
	ctx := context.Background()

	for _, p := range [][2]string{{"Emma", "a.jpg"}, {"Emma", "b.jpg"}, {"Noah", "c.jpg"}} {
		_, err := s.Save(ctx, p[0], p[1], []byte("d"), "image/jpeg")
		require.NoError(t, err)
	}

	got, err := s.List(ctx, "Emma/")
	require.NoError(t, err)
	assert.Equal(t, []BlobInfo{
		{Path: "Emma/a.jpg", ContentType: "image/jpeg", Timestamp: 1709681400000},
		{Path: "Emma/b.jpg", ContentType: "image/jpeg", Timestamp: 1709681400000},
	}, got)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOperations_ReopenLostConnection(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	path, err := s.Save(ctx, "Emma", "x.jpg", []byte("x"), "image/jpeg")
	require.NoError(t, err)

	// Kill the handle behind the store's back; the next operation must
	// reopen it.
	require.NoError(t, s.db.Close())

	got, err := s.Get(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("x"), got.Data)
}

func TestOperations_BeforeInitialize(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "blobs.db"), logging.NewNopLogger())

	_, err := s.Save(context.Background(), "Emma", "x", []byte("x"), "")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestDeleteAll(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "Emma", "a.jpg", []byte("d"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, s.DeleteAll(ctx))

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
