package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramClient_GetUpdates(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Write([]byte(`{"ok":true,"result":[{"update_id":9,"message":{"message_id":1,"date":0,"chat":{"id":77,"type":"private"},"text":"/goals"}}]}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.URL+"/", "TOKEN", server.Client())
	updates, err := client.GetUpdates(context.Background(), 9, 2*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "9", got.Get("offset"))
	assert.Equal(t, "2", got.Get("timeout"))
	assert.Equal(t, `["message"]`, got.Get("allowed_updates"))
	require.Len(t, updates, 1)
	assert.Equal(t, int64(9), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, int64(77), updates[0].Message.Chat.ID)
	assert.Equal(t, "/goals", updates[0].Message.Text)
}

func TestTelegramClient_NonMessageUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":[{"update_id":3}]}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.URL, "TOKEN", server.Client())
	updates, err := client.GetUpdates(context.Background(), 0, time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Nil(t, updates[0].Message)
}

func TestTelegramClient_SendMessage(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Write([]byte(`{"ok":true,"result":{"message_id":5,"date":0,"chat":{"id":77,"type":"private"}}}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.URL, "TOKEN", server.Client())
	require.NoError(t, client.SendMessage(context.Background(), 77, "Bot token verified"))
	assert.Equal(t, "77", got.Get("chat_id"))
	assert.Equal(t, "Bot token verified", got.Get("text"))
}

func TestTelegramClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.URL, "bad", server.Client())
	err := client.SendMessage(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestTelegramClient_TransportErrorHidesToken(t *testing.T) {
	const token = "123456:SECRET-bot-token"
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := NewTelegramClient(serverURL, token, &http.Client{Timeout: time.Second})

	_, err := client.GetUpdates(context.Background(), 0, time.Second)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)

	err = client.SendMessage(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
	assert.Contains(t, err.Error(), "sendMessage failed")
}

func TestTelegramClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewTelegramClient(server.URL, "TOKEN", server.Client())
	_, err := client.GetUpdates(ctx, 0, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
