package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/journal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_NotConfigured(t *testing.T) {
	c := NewHTTPClient("", "")

	assert.ErrorIs(t, c.Ping(context.Background()), common.ErrNotConfigured)
	assert.ErrorIs(t, c.PushBatch(context.Background(), Batch{}), common.ErrNotConfigured)
}

func TestHTTPClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	require.NoError(t, c.Ping(context.Background()))
}

func TestHTTPClient_PingReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	assert.Error(t, c.Ping(context.Background()))
}

func TestHTTPClient_PushBatch(t *testing.T) {
	var got Batch
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sync", r.URL.Path)
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	batch := Batch{JournalEntries: []*models.JournalEntry{{ID: 1, ChildName: "Emma", Timestamp: 1709681400000}}}
	require.NoError(t, c.PushBatch(context.Background(), batch))

	assert.Equal(t, "secret", apiKey)
	require.Len(t, got.JournalEntries, 1)
	assert.Equal(t, "Emma", got.JournalEntries[0].ChildName)
}

func TestHTTPClient_PushBatchRejectionIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	err := c.PushBatch(context.Background(), Batch{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload too large")
}
