package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-cv-session/chat"
	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestClient_Reply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := r.URL.Query().Get("message")
		if msg == "break" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"botReply": "you said: " + msg})
	}))
	defer srv.Close()

	c := chat.NewClient(srv.URL+"/chatbot", srv.Client())

	t.Run("reply", func(t *testing.T) {
		reply, err := c.Reply(context.Background(), "  which degree?  ")
		require.NoError(t, err)
		require.Equal(t, "you said: which degree?", reply)
	})

	t.Run("backend error falls back", func(t *testing.T) {
		reply, err := c.Reply(context.Background(), "break")
		require.ErrorIs(t, err, errors.ErrChatBackend)
		require.Equal(t, chat.FallbackReply, reply)
	})

	t.Run("empty message makes no call", func(t *testing.T) {
		reply, err := c.Reply(context.Background(), "   ")
		require.ErrorIs(t, err, errors.ErrEmptyMessage)
		require.Equal(t, chat.FallbackReply, reply)
	})

	t.Run("unconfigured backend", func(t *testing.T) {
		reply, err := chat.NewClient("", nil).Reply(context.Background(), "hi")
		require.ErrorIs(t, err, errors.ErrConfigMissing)
		require.Equal(t, chat.FallbackReply, reply)
	})
}

func TestConversation(t *testing.T) {
	c := chat.NewConversation()
	msgs := c.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, chat.SenderBot, msgs[0].Sender)
	require.Equal(t, chat.Greeting, msgs[0].Text)

	m := c.Add(chat.SenderUser, "hello")
	require.NotEmpty(t, m.ID)
	require.Len(t, c.Messages(), 2)

	c.Clear()
	require.Empty(t, c.Messages())
}
