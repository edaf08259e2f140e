package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/logging"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// The default origin check only accepts same-host pages.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// streamMessage is one frame of the entry feed. The first frame is a
// snapshot of every entry, newest first; later frames are change events.
type streamMessage struct {
	Type    string            `json:"type"`
	Entries []reconcile.Entry `json:"entries,omitempty"`
	EntryID string            `json:"entryId,omitempty"`
	At      time.Time         `json:"at"`
}

// handleEntryStream upgrades to a websocket and pushes entry changes until
// the client goes away or the server shuts the feed down.
func (s *Server) handleEntryStream(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	// Subscribe before the snapshot so no write falls between the two.
	events, cancel := s.service.Hub().Subscribe()
	defer cancel()

	entries, err := s.service.ListEntries(r.Context(), core.DateRange{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []reconcile.Entry{}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if err := writeFrame(conn, streamMessage{Type: "snapshot", Entries: entries, At: time.Now()}); err != nil {
		return
	}

	// The read loop only handles pongs and notices a closed connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				// Dropped as a slow subscriber or the hub closed.
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(streamWriteWait))
				return
			}
			msg := streamMessage{Type: string(ev.Kind), Entries: ev.Entries, EntryID: ev.EntryID, At: ev.At}
			if err := writeFrame(conn, msg); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, msg streamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(msg)
}
