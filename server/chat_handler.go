package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/rs/zerolog"
)

const maxChatBody = 16 << 10

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	BotReply string `json:"botReply"`
}

// ChatHandler forwards a signed-in user's message to the chatbot backend. When
// the backend fails the fallback reply is still returned, with a 502.
func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		store := s.requestStore(w, r)
		loadSession(ctx, store, r)
		if !store.State().IsAuthenticated {
			writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var req chatRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		reply, err := s.chat.Reply(ctx, req.Message)
		switch {
		case errors.Is(err, errors.ErrEmptyMessage):
			writeJSONError(w, http.StatusBadRequest, "Message is empty")
		case err != nil:
			logger.Err(err).Msg("Chat reply failed")
			writeJSON(w, http.StatusBadGateway, chatResponse{BotReply: reply})
		default:
			writeJSON(w, http.StatusOK, chatResponse{BotReply: reply})
		}
	}
}
