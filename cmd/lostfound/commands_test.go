package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/pkg/client"
)

func testEnv(t *testing.T, handler http.Handler) (*env, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{BaseURL: srv.URL}, client.NewMemoryStore())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	prev := stdout
	stdout = out
	t.Cleanup(func() { stdout = prev })

	return &env{client: c, auth: client.NewAuthenticator(c), logger: zap.NewNop()}, out
}

func TestItemsCommandPrintsTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Found", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"items": []map[string]any{{
				"id": 9, "description": "Portefeuille en cuir marron", "location": "Cafétéria",
				"type": "Found", "status": "pending", "category": "Accessories",
				"reportedDate": "2024-01-15T00:00:00Z",
			}},
			"total": 1, "page": 1, "pageSize": 20,
		}})
	})
	e, out := testEnv(t, mux)

	require.NoError(t, cmdItems(context.Background(), e, []string{"-type", "Found"}))
	assert.Contains(t, out.String(), "Portefeuille en cuir marron")
	assert.Contains(t, out.String(), "page 1, 1 of 1 items")
}

func TestSignedInCommandsRequireSession(t *testing.T) {
	e, _ := testEnv(t, http.NewServeMux())

	assert.ErrorIs(t, cmdWhoami(context.Background(), e, nil), errNotSignedIn)
	assert.ErrorIs(t, cmdReport(context.Background(), e, []string{"-description", "x"}), errNotSignedIn)
	assert.ErrorIs(t, cmdItems(context.Background(), e, []string{"-mine"}), errNotSignedIn)
}

func TestItemArg(t *testing.T) {
	id, err := itemArg("claim", []string{"12"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = itemArg("claim", []string{"abc"})
	assert.Error(t, err)
	_, err = itemArg("claim", nil)
	assert.Error(t, err)
}

func TestDetectImageType(t *testing.T) {
	assert.Equal(t, "image/jpeg", detectImageType([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, "image/png", detectImageType([]byte("\x89PNG\r\n\x1a\n....")))
	assert.Equal(t, "image/webp", detectImageType([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Equal(t, "application/octet-stream", detectImageType([]byte("GIF89a")))
}

func TestDescribe(t *testing.T) {
	err := &client.APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_FAILED",
		Message: "invalid item",
		Details: map[string]any{"location": "location is required"},
	}
	got := describe(err)
	assert.Contains(t, got, "invalid item (VALIDATION_FAILED)")
	assert.Contains(t, got, "location: location is required")
}

func TestSplitListAndTruncate(t *testing.T) {
	assert.Equal(t, []string{"Lost", "Found"}, splitList(" Lost, ,Found "))
	assert.Nil(t, splitList(""))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
