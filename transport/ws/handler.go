package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"campus-chat/contract"
)

// Handler upgrades HTTP requests to websocket sessions and hands them
// to the chat core.
type Handler struct {
	core       contract.ICoordinator
	log        *slog.Logger
	sendBuffer int
	upgrader   websocket.Upgrader
}

// NewHandler builds the websocket entry point. sendBuffer is the
// per-client outbound queue size handed to each accepted connection.
func NewHandler(core contract.ICoordinator, log *slog.Logger, sendBuffer int) *Handler {
	return &Handler{
		core:       core,
		log:        log,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The chat page and the socket are served from
			// different campus hosts.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}

	client := NewClient(conn, h.core, h.log, h.sendBuffer)
	h.core.Connect(client.ID(), client)

	go client.WritePump()
	go client.ReadPump()
}
