package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken:    "TOKEN",
		APIBase:     srv.URL,
		Client:      srv.Client(),
		BaseBackoff: time.Millisecond,
	}
}

func TestSend_Payload(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).Send(context.Background(), "42", "<b>hi</b>"))
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "<b>hi</b>", got.Text)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Nil(t, got.ReplyMarkup)
}

func TestSendKeyboard_Payload(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	err := newTestNotifier(srv).SendKeyboard(context.Background(), "1", "menu", [][]string{{"a", "b"}, {"c"}})
	require.NoError(t, err)
	require.NotNil(t, got.ReplyMarkup)
	assert.True(t, got.ReplyMarkup.ResizeKeyboard)
	require.Len(t, got.ReplyMarkup.Keyboard, 2)
	assert.Equal(t, "b", got.ReplyMarkup.Keyboard[0][1].Text)
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).Send(context.Background(), "42", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		retries   int
		wantErr   bool
		wantCalls int32
	}{
		{"first try", 0, 2, false, 1},
		{"recovers", 2, 2, false, 3},
		{"exhausted", 5, 2, true, 3},
		{"no retries", 1, 0, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= tt.failures {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			err := newTestNotifier(srv).SendWithRetry(context.Background(), "42", "x", tt.retries)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "retries exhausted")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	n.BaseBackoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := n.SendWithRetry(ctx, "42", "x", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartPolling_RepliesPerChat(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var polls atomic.Int32
	replies := make(chan sendMessageRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if polls.Add(1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":"  /start ","chat":{"id":1001}}},
					{"update_id":8}
				]}`))
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var req sendMessageRequest
			json.NewDecoder(r.Body).Decode(&req)
			replies <- req
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	handler := func(_ context.Context, chatID, text string) Reply {
		return Reply{Text: chatID + ":" + text, Keyboard: [][]string{{"k"}}}
	}

	done := make(chan struct{})
	go func() {
		newTestNotifier(srv).StartPolling(ctx, handler)
		close(done)
	}()

	select {
	case got := <-replies:
		assert.Equal(t, "1001", got.ChatID)
		assert.Equal(t, "1001:/start", got.Text)
		assert.NotNil(t, got.ReplyMarkup)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}
