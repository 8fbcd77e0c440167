package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/distincto/journal/internal/logging"
)

// State describes the worker lifecycle. A started worker waits until it is
// activated, either explicitly or through a SkipWaiting message.
type State int

const (
	StateStopped State = iota
	StateWaiting
	StateActive
)

// DefaultRegisterWait bounds how long Register waits for the worker to
// become active before declining.
const DefaultRegisterWait = 2 * time.Second

// Worker keeps one-shot sync registrations alive while no foreground is
// around and replays them to the foreground channel when fired. All methods
// are safe for concurrent use.
type Worker struct {
	logger       logging.Logger
	registerWait time.Duration

	mu         sync.Mutex
	state      State
	tags       map[string]struct{}
	foreground chan<- Message
	inbox      chan Message
	activeCh   chan struct{}
}

func NewWorker(logger logging.Logger) *Worker {
	return &Worker{
		logger:       logger,
		registerWait: DefaultRegisterWait,
		tags:         make(map[string]struct{}),
		inbox:        make(chan Message, 16),
		activeCh:     make(chan struct{}),
	}
}

// Start moves the worker to the waiting state and begins draining its inbox.
// It returns immediately; the worker runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.state != StateStopped {
		w.mu.Unlock()
		return
	}
	w.state = StateWaiting
	w.mu.Unlock()

	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.state = StateStopped
			w.mu.Unlock()
			return
		case msg := <-w.inbox:
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case MessageSkipWaiting:
		w.Activate()
	case MessageSyncTriggered:
		w.Fire(ctx, msg.Tag)
	default:
		w.logger.Warn(ctx, "dropping unknown bridge message", "type", string(msg.Type))
	}
}

// Post enqueues a message for the worker. Messages posted to a stopped
// worker sit in the inbox until a restart drains them.
func (w *Worker) Post(msg Message) {
	select {
	case w.inbox <- msg:
	default:
		// Inbox full. The triggers are idempotent, dropping is safe.
	}
}

// Activate promotes a waiting worker to active, releasing Register callers.
func (w *Worker) Activate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateWaiting {
		return
	}
	w.state = StateActive
	close(w.activeCh)
}

// State returns the current lifecycle state.
func (w *Worker) CurrentState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// WaitActive blocks until the worker is active or the timeout elapses.
func (w *Worker) WaitActive(timeout time.Duration) bool {
	w.mu.Lock()
	if w.state == StateActive {
		w.mu.Unlock()
		return true
	}
	ch := w.activeCh
	w.mu.Unlock()

	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Register records a one-shot sync trigger. It waits a bounded time for the
// worker to activate and reports false, never an error, when the worker is
// unavailable. Registering the same tag twice is a no-op.
func (w *Worker) Register(tag string) bool {
	if !w.WaitActive(w.registerWait) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateActive {
		return false
	}
	w.tags[tag] = struct{}{}
	return true
}

// Attach connects the foreground channel that receives fired triggers.
// Passing nil detaches.
func (w *Worker) Attach(ch chan<- Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.foreground = ch
}

// Fire consumes a registered tag and forwards a SyncTriggered message to the
// attached foreground. With no foreground attached the signal is dropped;
// the pending flag in the store keeps the data safe either way.
func (w *Worker) Fire(ctx context.Context, tag string) {
	w.mu.Lock()
	_, registered := w.tags[tag]
	if registered {
		delete(w.tags, tag)
	}
	fg := w.foreground
	w.mu.Unlock()

	if !registered {
		return
	}
	if fg == nil {
		w.logger.Debug(ctx, "sync trigger fired with no foreground attached", "tag", tag)
		return
	}

	select {
	case fg <- Message{Type: MessageSyncTriggered, Tag: tag}:
	default:
		w.logger.Debug(ctx, "foreground busy, dropping sync trigger", "tag", tag)
	}
}
