package sync

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/distincto/journal/internal/journal/models"
	"github.com/distincto/journal/internal/journal/repositories/syncmeta"
	"github.com/distincto/journal/internal/journal/store"
	"github.com/distincto/journal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	pingErr error
	pushErr error
	batches []Batch
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) PushBatch(ctx context.Context, batch Batch) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.batches = append(f.batches, batch)
	return nil
}

func setup(t *testing.T) (*store.Store, *fakeClient, *Coordinator) {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "journal.db"), logging.NewNopLogger())
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	client := &fakeClient{}
	c := NewCoordinator(s.Entries, s.FoodItems, s.SyncMeta, client, logging.NewNopLogger())
	return s, client, c
}

func seedPending(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"Emma", "Noah"} {
		_, err := s.Entries.Save(ctx, &models.JournalEntry{ChildName: name, Timestamp: 1709681400000})
		require.NoError(t, err)
	}
	_, err := s.FoodItems.Save(ctx, &models.FoodItem{ChildName: "Emma", Timestamp: 1709681400000, Name: "Broccoli", Category: models.FoodCategoryNew})
	require.NoError(t, err)
}

func TestSyncData_MarksEverythingSynced(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, false)
	c.now = func() time.Time { return time.UnixMilli(1709681500000) }
	c.SetOnline(ctx, true)

	// SetOnline already ran the round on the rising edge.
	require.Len(t, client.batches, 1)
	assert.Equal(t, 3, client.batches[0].Size())

	status := c.Status()
	assert.Equal(t, int64(1709681500000), status.LastSync)
	assert.False(t, status.PendingSync)
	assert.Zero(t, status.PendingCount)

	pending, err := s.Entries.GetAllUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncData_EmptyPendingSkipsNetwork(t *testing.T) {
	_, client, c := setup(t)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	require.NoError(t, err)
	assert.Empty(t, client.batches)
}

func TestSyncData_EmptyRoundKeepsLastSync(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()

	require.NoError(t, s.SyncMeta.Set(ctx, syncmeta.KeyLastSync, "1709681400000"))
	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	require.NoError(t, err)
	assert.Empty(t, client.batches)
	assert.Equal(t, int64(1709681400000), c.Status().LastSync)

	raw, err := s.SyncMeta.Get(ctx, syncmeta.KeyLastSync)
	require.NoError(t, err)
	assert.Equal(t, "1709681400000", raw)
}

func TestSetOnline_RisingEdgeSyncsRecordsFromOtherProcesses(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()

	// Load sees an empty database, so the in-memory pending flag is off.
	require.NoError(t, c.Load(ctx))

	// Another process sharing the file writes a record behind our back.
	_, err := s.Entries.Save(ctx, &models.JournalEntry{ChildName: "Emma", Timestamp: 1709681400000})
	require.NoError(t, err)

	c.SetOnline(ctx, true)

	require.Len(t, client.batches, 1)
	assert.Equal(t, 1, client.batches[0].Size())
	assert.False(t, c.Status().PendingSync)
}

func TestSyncData_ReopensLostStoreConnection(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)
	require.NoError(t, c.Load(ctx))

	require.NoError(t, s.Close())

	c.SetOnline(ctx, true)

	require.Len(t, client.batches, 1)
	assert.Equal(t, 3, client.batches[0].Size())
	assert.False(t, c.Status().PendingSync)
}

func TestSyncData_OfflineFails(t *testing.T) {
	_, _, c := setup(t)

	_, err := c.SyncData(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
}

func TestSyncData_PushFailureKeepsRecordsPending(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)
	client.pushErr = errors.New("boom")

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	require.Error(t, err)

	pending, err := s.Entries.GetAllUnsynced(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.True(t, c.Status().PendingSync)
}

func TestSyncData_ResumesWithOnlyRemainingRecords(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)

	// Simulate a round that died after flipping the first entry.
	require.NoError(t, s.Entries.MarkSynced(ctx, 1))

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	require.NoError(t, err)
	require.Len(t, client.batches, 1)
	assert.Equal(t, 2, client.batches[0].Size())
	require.Len(t, client.batches[0].JournalEntries, 1)
	assert.Equal(t, int64(2), client.batches[0].JournalEntries[0].ID)
}

func TestSyncData_LeaseHeldByLiveProcess(t *testing.T) {
	s, _, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)

	expiry := time.Now().Add(time.Minute).UnixMilli()
	require.NoError(t, s.SyncMeta.Set(ctx, syncmeta.KeyLeaseOwner, "other-process"))
	require.NoError(t, s.SyncMeta.Set(ctx, syncmeta.KeyLeaseExpiry, strconv.FormatInt(expiry, 10)))

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	assert.ErrorIs(t, err, ErrLeaseHeld)
}

func TestSyncData_TakesOverExpiredLease(t *testing.T) {
	s, client, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)

	expiry := time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, s.SyncMeta.Set(ctx, syncmeta.KeyLeaseOwner, "crashed-process"))
	require.NoError(t, s.SyncMeta.Set(ctx, syncmeta.KeyLeaseExpiry, strconv.FormatInt(expiry, 10)))

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	require.NoError(t, err)
	assert.Len(t, client.batches, 1)
}

func TestSyncData_ReleasesLeaseAfterRound(t *testing.T) {
	s, _, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)

	require.NoError(t, c.Load(ctx))
	c.SetOnline(ctx, true)

	_, err := c.SyncData(ctx)
	require.NoError(t, err)

	owner, err := s.SyncMeta.Get(ctx, syncmeta.KeyLeaseOwner)
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestLoad_RestoresPersistedState(t *testing.T) {
	s, _, c := setup(t)
	ctx := context.Background()

	require.NoError(t, s.SyncMeta.Set(ctx, syncmeta.KeyLastSync, "1709681400000"))
	seedPending(t, s)

	require.NoError(t, c.Load(ctx))

	status := c.Status()
	assert.Equal(t, int64(1709681400000), status.LastSync)
	assert.True(t, status.PendingSync)
	assert.Equal(t, 3, status.PendingCount)
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	s, _, c := setup(t)
	ctx := context.Background()
	seedPending(t, s)

	ch, cancel := c.Subscribe()
	defer cancel()

	_, err := c.UpdatePendingCount(ctx)
	require.NoError(t, err)

	select {
	case status := <-ch:
		assert.Equal(t, 3, status.PendingCount)
	case <-time.After(time.Second):
		t.Fatal("no status received")
	}
}

type fakeRegistrar struct {
	tag      string
	accepted bool
}

func (f *fakeRegistrar) Register(tag string) bool {
	f.tag = tag
	return f.accepted
}

func TestRegisterForSync(t *testing.T) {
	_, _, c := setup(t)
	ctx := context.Background()

	r := &fakeRegistrar{accepted: true}
	assert.True(t, c.RegisterForSync(ctx, r))
	assert.Equal(t, SyncTag, r.tag)

	r.accepted = false
	assert.False(t, c.RegisterForSync(ctx, r))
	assert.False(t, c.RegisterForSync(ctx, nil))
}
