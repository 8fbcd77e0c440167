// Package common defines shared constants and sentinel errors used across
// the storage and sync layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Store lifecycle errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageInit        = errors.New("storage initialization failed")

	// Write errors. ErrQuotaExceeded is a special case of a failed write
	// that callers must be able to tell apart so they can prompt the user
	// to export or free space.
	ErrWrite         = errors.New("write failed")
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Sync errors.
	ErrNotConfigured   = errors.New("remote endpoint not configured")
	ErrSyncUnsupported = errors.New("background sync not supported")
)

// ClassifyWriteError wraps a driver-level write failure into the error
// taxonomy: disk-full conditions become ErrQuotaExceeded, everything else
// ErrWrite. The original error stays in the chain.
func ClassifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "disk I/O error") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrWrite, err)
}

// IsConnClosed reports whether err indicates a stale or closed database
// handle, the one condition the store transparently recovers from by
// reopening once.
func IsConnClosed(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is closed")
}
