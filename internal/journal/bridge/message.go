// Package bridge hosts the background worker that mirrors deferred sync
// triggers and the caching transport used for asset fetches. The foreground
// (coordinator, CLI) and the worker exchange tagged messages over channels.
package bridge

// MessageType tags a bridge message.
type MessageType string

const (
	// MessageSyncTriggered tells the foreground to run a sync round.
	MessageSyncTriggered MessageType = "SYNC_TRIGGERED"

	// MessageSkipWaiting activates a waiting worker immediately.
	MessageSkipWaiting MessageType = "SKIP_WAITING"
)

// Message is the unit exchanged between worker and foreground.
type Message struct {
	Type MessageType `json:"type"`
	Tag  string      `json:"tag,omitempty"`
}
