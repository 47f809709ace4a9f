package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/services"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	statusWriteWait  = 10 * time.Second
	statusPongWait   = 60 * time.Second
	statusPingPeriod = 20 * time.Second
)

// StatusHandler streams a session's optimization status over a websocket:
// the current state first, then every lifecycle transition.
type StatusHandler struct {
	Planner  *services.Planner
	Upgrader websocket.Upgrader
}

func statusMessage(e services.StatusEvent) dto.StatusMessage {
	return dto.StatusMessage{
		Phase:   e.Phase.String(),
		Status:  string(e.Status),
		Failure: string(e.Failure),
		At:      e.At,
	}
}

func (h *StatusHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	broker := h.Planner.Broker()
	if broker == nil {
		writeError(w, r, http.StatusServiceUnavailable, "status stream is not configured")
		return
	}

	ch := broker.Subscribe(id)
	defer broker.Unsubscribe(id, ch)

	v, err := h.Planner.Session(id)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	write := func(m dto.StatusMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(statusWriteWait))
		return conn.WriteJSON(m)
	}

	if err := write(statusMessage(services.StatusEvent{Phase: v.Phase, Status: v.Status, At: time.Now()})); err != nil {
		return
	}

	// The client sends nothing but control frames; reading keeps pongs
	// flowing and notices a closed connection.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(statusPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(statusPongWait))
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := write(statusMessage(evt)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(statusWriteWait)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
