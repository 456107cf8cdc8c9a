package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/handler/sse"
	"knowhub/internal/httputil"
	"knowhub/internal/middleware"
	"knowhub/internal/service/chat"
)

// ChatHandler streams AI answers over SSE.
type ChatHandler struct {
	chat   *chat.Service
	logger *slog.Logger

	// keepAlive is swapped out in tests to avoid waiting.
	keepAlive time.Duration
}

func NewChatHandler(chatSvc *chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:      chatSvc,
		logger:    logger,
		keepAlive: config.ChatKeepAliveInterval,
	}
}

type chatEvent struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Stream runs one chat turn. Quota denial happens before any event is
// written and surfaces as a plain error response; failures after the
// stream opens arrive as in-band error events followed by [DONE]. While
// the upstream is quiet, SSE comment keepalives hold the connection open.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocID   string `json:"doc_id"`
		Message string `json:"message"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.chat.Chat(r.Context(), chat.Request{
		DocID:   req.DocID,
		Message: req.Message,
		Account: middleware.AccountFrom(r.Context()),
		IP:      httputil.ClientIP(r),
		Admin:   middleware.AdminSessionFrom(r.Context()) != nil,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	keepalive := time.NewTicker(h.keepAlive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				if err := writer.WriteDone(); err != nil {
					h.logger.Debug("client disconnected before done marker", "error", err)
				}
				return
			}
			switch {
			case event.Err != nil:
				if errors.Is(event.Err, context.Canceled) {
					return // client went away
				}
				if werr := writer.WriteEvent(chatEvent{Error: event.Err.Error()}); werr != nil {
					return
				}
			case event.Done:
				// channel close follows; the done marker is written then
			case event.Content != "":
				if werr := writer.WriteEvent(chatEvent{Content: event.Content}); werr != nil {
					return
				}
			}
		case <-keepalive.C:
			if werr := writer.WriteKeepAlive(); werr != nil {
				return
			}
		}
	}
}
