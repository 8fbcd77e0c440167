package sync

import (
	"context"
	"errors"
	"strconv"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/distincto/journal/internal/journal/repositories/entries"
	"github.com/distincto/journal/internal/journal/repositories/fooditems"
	"github.com/distincto/journal/internal/journal/repositories/syncmeta"
	"github.com/distincto/journal/internal/logging"
)

// Sentinel errors callers can match with errors.Is.
var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrOffline        = errors.New("remote endpoint not reachable")
	ErrLeaseHeld      = errors.New("sync lease held by another process")
)

// SyncTag names the background sync registration shared with the bridge
// worker.
const SyncTag = "journal-sync"

// Registrar is the bridge-side contract for one-shot sync registration.
type Registrar interface {
	Register(tag string) bool
}

// Status is a snapshot of the sync state machine.
type Status struct {
	// LastSync is the Unix-millisecond time of the last fully successful
	// round, zero if none has completed yet.
	LastSync int64 `json:"lastSync"`

	PendingSync  bool `json:"pendingSync"`
	PendingCount int  `json:"pendingCount"`
	IsOnline     bool `json:"isOnline"`
	InProgress   bool `json:"inProgress"`
}

// Coordinator drives the push-only sync rounds: it gathers unsynced records,
// uploads them and flips their synced flag one record at a time so a round
// interrupted halfway does not re-upload what already went through.
//
// A lease persisted in sync metadata keeps concurrent processes from running
// overlapping rounds against the same database.
type Coordinator struct {
	entries   entries.Repository
	foodItems fooditems.Repository
	meta      syncmeta.Repository
	client    Client
	logger    logging.Logger

	// id identifies this process as a lease owner.
	id       string
	leaseTTL time.Duration
	now      func() time.Time

	mu          stdsync.Mutex
	online      bool
	inProgress  bool
	pendingSync bool
	pendingN    int
	lastSync    int64

	subMu   stdsync.Mutex
	subs    map[int]chan Status
	nextSub int
}

func NewCoordinator(
	entryRepo entries.Repository,
	foodRepo fooditems.Repository,
	metaRepo syncmeta.Repository,
	client Client,
	logger logging.Logger,
) *Coordinator {
	return &Coordinator{
		entries:   entryRepo,
		foodItems: foodRepo,
		meta:      metaRepo,
		client:    client,
		logger:    logger,
		id:        uuid.NewString(),
		leaseTTL:  2 * time.Minute,
		now:       time.Now,
		subs:      make(map[int]chan Status),
	}
}

// Load restores the persisted sync state. Call once after the store is
// initialized.
func (c *Coordinator) Load(ctx context.Context) error {
	lastSync, err := c.meta.Get(ctx, syncmeta.KeyLastSync)
	if err != nil {
		return err
	}
	pending, err := c.meta.Get(ctx, syncmeta.KeyPendingSync)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if lastSync != "" {
		c.lastSync, _ = strconv.ParseInt(lastSync, 10, 64)
	}
	c.pendingSync = pending == "true"
	c.mu.Unlock()

	_, err = c.UpdatePendingCount(ctx)
	return err
}

// Status returns the current snapshot.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Coordinator) statusLocked() Status {
	return Status{
		LastSync:     c.lastSync,
		PendingSync:  c.pendingSync,
		PendingCount: c.pendingN,
		IsOnline:     c.online,
		InProgress:   c.inProgress,
	}
}

// UpdatePendingCount recounts unsynced records, persists the pending flag and
// notifies subscribers.
func (c *Coordinator) UpdatePendingCount(ctx context.Context) (int, error) {
	pendingEntries, err := c.entries.GetAllUnsynced(ctx)
	if err != nil {
		return 0, err
	}
	pendingFood, err := c.foodItems.GetAllUnsynced(ctx)
	if err != nil {
		return 0, err
	}
	n := len(pendingEntries) + len(pendingFood)

	c.mu.Lock()
	c.pendingN = n
	c.pendingSync = n > 0
	c.mu.Unlock()

	if err := c.meta.Set(ctx, syncmeta.KeyPendingSync, strconv.FormatBool(n > 0)); err != nil {
		return n, err
	}
	c.broadcast()
	return n, nil
}

// SetOnline records connectivity. An offline-to-online transition starts a
// sync round on the caller's goroutine; the round itself decides whether
// anything needs pushing, so records written by another process sharing the
// database are picked up even when this process thinks nothing is pending.
func (c *Coordinator) SetOnline(ctx context.Context, online bool) {
	c.mu.Lock()
	risingEdge := online && !c.online
	c.online = online
	c.mu.Unlock()

	if err := c.meta.Set(ctx, syncmeta.KeyIsOnline, strconv.FormatBool(online)); err != nil {
		c.logger.Warn(ctx, "failed to persist online state", "error", err)
	}
	c.broadcast()

	if risingEdge {
		if _, err := c.SyncData(ctx); err != nil {
			c.logger.Warn(ctx, "auto sync after reconnect failed", "error", err)
		}
	}
}

// SyncData runs one sync round and returns the resulting status. Rounds are
// mutually exclusive per process and, via the lease, per database file.
// An empty pending set completes without touching the network.
func (c *Coordinator) SyncData(ctx context.Context) (Status, error) {
	c.mu.Lock()
	if c.inProgress {
		status := c.statusLocked()
		c.mu.Unlock()
		return status, ErrSyncInProgress
	}
	if !c.online {
		status := c.statusLocked()
		c.mu.Unlock()
		return status, ErrOffline
	}
	c.inProgress = true
	c.mu.Unlock()
	c.broadcast()

	defer func() {
		c.mu.Lock()
		c.inProgress = false
		c.mu.Unlock()
		c.broadcast()
	}()

	acquired, err := c.acquireLease(ctx)
	if err != nil {
		return c.Status(), err
	}
	if !acquired {
		return c.Status(), ErrLeaseHeld
	}
	defer c.releaseLease(ctx)

	pendingEntries, err := c.entries.GetAllUnsynced(ctx)
	if err != nil {
		return c.Status(), err
	}
	pendingFood, err := c.foodItems.GetAllUnsynced(ctx)
	if err != nil {
		return c.Status(), err
	}
	batch := Batch{JournalEntries: pendingEntries, FoodItems: pendingFood}

	if batch.Empty() {
		// Nothing to transmit; the last-sync time keeps pointing at the
		// last round that actually pushed records.
		if _, err := c.UpdatePendingCount(ctx); err != nil {
			return c.Status(), err
		}
		return c.Status(), nil
	}

	c.logger.Info(ctx, "pushing sync batch", "records", batch.Size())
	if err := c.client.PushBatch(ctx, batch); err != nil {
		return c.Status(), err
	}

	// Flip flags one record at a time; a failure here leaves the record
	// pending for the next round rather than aborting the whole pass.
	var markErr error
	for _, e := range pendingEntries {
		if err := c.entries.MarkSynced(ctx, e.ID); err != nil {
			c.logger.Warn(ctx, "failed to mark entry synced", "id", e.ID, "error", err)
			markErr = err
		}
	}
	for _, f := range pendingFood {
		if err := c.foodItems.MarkSynced(ctx, f.ID); err != nil {
			c.logger.Warn(ctx, "failed to mark food item synced", "id", f.ID, "error", err)
			markErr = err
		}
	}

	if err := c.finishRound(ctx, batch.Size()); err != nil {
		return c.Status(), err
	}
	return c.Status(), markErr
}

func (c *Coordinator) finishRound(ctx context.Context, pushed int) error {
	now := c.now().UnixMilli()
	if err := c.meta.Set(ctx, syncmeta.KeyLastSync, strconv.FormatInt(now, 10)); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastSync = now
	c.mu.Unlock()

	if _, err := c.UpdatePendingCount(ctx); err != nil {
		return err
	}
	c.logger.Info(ctx, "sync round finished", "records", pushed)
	return nil
}

func (c *Coordinator) acquireLease(ctx context.Context) (bool, error) {
	owner, err := c.meta.Get(ctx, syncmeta.KeyLeaseOwner)
	if err != nil {
		return false, err
	}
	if owner != "" && owner != c.id {
		expiryRaw, err := c.meta.Get(ctx, syncmeta.KeyLeaseExpiry)
		if err != nil {
			return false, err
		}
		expiry, _ := strconv.ParseInt(expiryRaw, 10, 64)
		if c.now().UnixMilli() < expiry {
			return false, nil
		}
		// Stale lease from a crashed process, take it over.
		c.logger.Warn(ctx, "taking over expired sync lease", "previous_owner", owner)
	}

	if err := c.meta.Set(ctx, syncmeta.KeyLeaseOwner, c.id); err != nil {
		return false, err
	}
	expiry := c.now().Add(c.leaseTTL).UnixMilli()
	if err := c.meta.Set(ctx, syncmeta.KeyLeaseExpiry, strconv.FormatInt(expiry, 10)); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Coordinator) releaseLease(ctx context.Context) {
	owner, err := c.meta.Get(ctx, syncmeta.KeyLeaseOwner)
	if err != nil || owner != c.id {
		return
	}
	_ = c.meta.Delete(ctx, syncmeta.KeyLeaseOwner)
	_ = c.meta.Delete(ctx, syncmeta.KeyLeaseExpiry)
}

// Subscribe returns a channel receiving status snapshots and a cancel
// function. Slow consumers miss intermediate snapshots instead of blocking
// the coordinator.
func (c *Coordinator) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 1)

	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
	return ch, cancel
}

func (c *Coordinator) broadcast() {
	status := c.Status()

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- status:
		default:
		}
	}
}

// StartOnlineWatcher probes the remote endpoint on the given interval and
// feeds the result into SetOnline. It blocks until ctx is cancelled; run it
// on its own goroutine.
func (c *Coordinator) StartOnlineWatcher(ctx context.Context, interval time.Duration) {
	c.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.probe(ctx)
		}
	}
}

func (c *Coordinator) probe(ctx context.Context) {
	err := c.client.Ping(ctx)
	c.SetOnline(ctx, err == nil)
}

// RegisterForSync asks the bridge registrar for a one-shot background sync
// registration and reports whether it was accepted. When records are already
// pending and the remote is reachable, a round is kicked off right away
// instead of waiting for the deferred trigger.
func (c *Coordinator) RegisterForSync(ctx context.Context, registrar Registrar) bool {
	if registrar == nil {
		return false
	}
	ok := registrar.Register(SyncTag)
	if !ok {
		c.logger.Debug(ctx, "background sync registration declined", "tag", SyncTag)
		return false
	}

	c.mu.Lock()
	online, pending := c.online, c.pendingSync
	c.mu.Unlock()
	if online && pending {
		go func() {
			if _, err := c.SyncData(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn(ctx, "immediate sync after registration failed", "error", err)
			}
		}()
	}
	return true
}
