package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/project"
)

func TestNotifier_SendsMessage(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	}))
	defer srv.Close()

	n := New(WithEndpoint(srv.URL+"/bot%s/%s"), WithHTTPClient(srv.Client()))

	err := n.Notify(context.Background(),
		project.Notification{Enabled: true, Token: "123:abc", ChatID: "42"},
		event.AccessEvent{ID: "ray-1", IP: "203.0.113.9", RequestedAt: 1700000000123})
	require.NoError(t, err)
	require.Equal(t, "/bot123:abc/sendMessage", gotPath)
	require.Contains(t, gotBody, "MarkdownV2")
	require.True(t, strings.Contains(gotBody, "chat_id=42"))
}

func TestNotifier_BadChatID(t *testing.T) {
	t.Parallel()

	n := New()
	err := n.Notify(context.Background(),
		project.Notification{Token: "123:abc", ChatID: "not-a-number"},
		event.AccessEvent{})
	require.Error(t, err)
}

func TestNotifier_EmptyToken(t *testing.T) {
	t.Parallel()

	n := New()
	err := n.Notify(context.Background(), project.Notification{ChatID: "42"}, event.AccessEvent{})
	require.Error(t, err)
}

func TestNotifier_APIErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": "Bad Request"})
	}))
	defer srv.Close()

	n := New(WithEndpoint(srv.URL+"/bot%s/%s"), WithHTTPClient(srv.Client()))
	err := n.Notify(context.Background(),
		project.Notification{Token: "123:abc", ChatID: "42"},
		event.AccessEvent{})
	require.Error(t, err)
}
