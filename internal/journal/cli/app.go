// Package cli is the interactive shell over the journal core: it wires the
// stores, services, sync coordinator and bridge worker together and exposes
// them through a small REPL.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/distincto/journal/internal/cryptox"
	"github.com/distincto/journal/internal/journal/backup"
	"github.com/distincto/journal/internal/journal/blob"
	"github.com/distincto/journal/internal/journal/bridge"
	"github.com/distincto/journal/internal/journal/config"
	"github.com/distincto/journal/internal/journal/services"
	"github.com/distincto/journal/internal/journal/store"
	"github.com/distincto/journal/internal/journal/sync"
	"github.com/distincto/journal/internal/logging"

	"github.com/google/uuid"
)

const keySaltMetaKey = "key_salt"

type App struct {
	config *config.Config
	logger logging.Logger

	store *store.Store
	blobs *blob.Store

	entries  *services.EntryService
	food     *services.FoodService
	children *services.ChildService
	reports  *services.ReportService

	coordinator *sync.Coordinator
	worker      *bridge.Worker
	backups     *backup.Manager

	reader *bufio.Reader
}

// NewApp opens both databases and builds the full object graph. The
// passphrase protects the sensitive note fields; its salt is generated on
// first run and persisted alongside the sync metadata.
func NewApp(ctx context.Context, cfg *config.Config, passphrase []byte, logger logging.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := store.New(cfg.DatabasePath(), logger)
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	b := blob.New(cfg.BlobDatabasePath(), logger)
	if err := b.Initialize(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	salt, err := s.SyncMeta.Get(ctx, keySaltMetaKey)
	if err != nil {
		return nil, err
	}
	if salt == "" {
		salt = uuid.NewString()
		if err := s.SyncMeta.Set(ctx, keySaltMetaKey, salt); err != nil {
			return nil, err
		}
	}
	key := cryptox.DeriveKey(passphrase, []byte(salt))

	client := sync.NewHTTPClient(cfg.RemoteEndpointURL, cfg.RemoteAPIKey)
	coordinator := sync.NewCoordinator(s.Entries, s.FoodItems, s.SyncMeta, client, logger)
	if err := coordinator.Load(ctx); err != nil {
		return nil, err
	}

	return &App{
		config:      cfg,
		logger:      logger,
		store:       s,
		blobs:       b,
		entries:     services.NewEntryService(s.Entries, b, key, logger),
		food:        services.NewFoodService(s.FoodItems, b, logger),
		children:    services.NewChildService(s.Children),
		reports:     services.NewReportService(s.Reports),
		coordinator: coordinator,
		worker:      bridge.NewWorker(logger),
		backups:     backup.NewManager(s, b, logger),
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the worker, the online watcher and the trigger pump, then drops
// into the REPL. It returns when the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	a.worker.Start(ctx)
	a.worker.Activate()

	fg := make(chan bridge.Message, 1)
	a.worker.Attach(fg)
	go a.pumpTriggers(ctx, fg)

	go a.coordinator.StartOnlineWatcher(ctx, a.config.OnlineCheckInterval)
	a.coordinator.RegisterForSync(ctx, a.worker)

	runREPL(ctx, a, a.statusLine, bufio.NewScanner(os.Stdin))
}

// pumpTriggers turns fired background triggers into foreground sync rounds.
func (a *App) pumpTriggers(ctx context.Context, fg <-chan bridge.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-fg:
			if msg.Type != bridge.MessageSyncTriggered {
				continue
			}
			if _, err := a.coordinator.SyncData(ctx); err != nil {
				a.logger.Warn(ctx, "triggered sync failed", "error", err)
			}
		}
	}
}

func (a *App) statusLine() string {
	status := a.coordinator.Status()
	mode := "offline"
	if status.IsOnline {
		mode = "online"
	}
	if a.config.RemoteEndpointURL == "" {
		mode = "local-only"
	}
	return fmt.Sprintf("%s, %d pending", mode, status.PendingCount)
}

func (a *App) Close() {
	if err := a.blobs.Close(); err != nil {
		a.logger.Warn(context.Background(), "failed to close blob store", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn(context.Background(), "failed to close store", "error", err)
	}
}
