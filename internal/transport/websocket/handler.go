package websocket

import (
	"encoding/json"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"net/http"
	"time"
)

const writeWait = 10 * time.Second

type Handler struct {
	Upgrader websocket.Upgrader
	Log      hclog.Logger
	EventBus *events.EventBus[any]
}

type Message struct {
	EventType string      `json:"event-type"`
	Data      interface{} `json:"data"`
}

// NewHandler creates a Handler. A nil checkOrigin accepts every origin.
func NewHandler(log hclog.Logger, eventBus *events.EventBus[any], checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		Log:      log,
		EventBus: eventBus,
	}
}

// EventType names an event on the wire. ok is false for events the dashboard
// does not receive.
func EventType(event any) (name string, ok bool) {
	switch event.(type) {
	case events.ProductsLoaded:
		return "products_loaded", true
	case events.LoadFailed:
		return "load_failed", true
	case events.ProductAdded:
		return "product_added", true
	case events.ProductUpdated:
		return "product_updated", true
	case events.ProductDeleted:
		return "product_deleted", true
	case events.ModeChanged:
		return "mode_changed", true
	case events.DeleteRequested:
		return "delete_requested", true
	case events.ImageAttached:
		return "image_attached", true
	case events.ToastShown:
		return "toast_shown", true
	case events.ToastDismissed:
		return "toast_dismissed", true
	case events.AlertRaised:
		return "alert_raised", true
	}
	return "", false
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Error("Unable to upgrade to WebSocket", "error", err)
		return
	}
	defer conn.Close()

	// Subscribe to events
	subscriber := h.EventBus.Subscribe()
	defer h.EventBus.Unsubscribe(subscriber)

	// Create a done channel to signal when the connection is closed
	done := make(chan struct{})

	// Handle incoming requests (if any)
	go h.readPump(conn, done)

	// Listen for events and send them to WebSocket client
	for {
		select {
		case event, open := <-subscriber:
			if !open {
				return
			}
			eventType, ok := EventType(event)
			if !ok {
				h.Log.Warn("Unknown event type", "event", event)
				continue
			}

			payload, err := json.Marshal(Message{EventType: eventType, Data: event})
			if err != nil {
				h.Log.Error("Error marshalling message", "error", err)
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = conn.WriteMessage(websocket.TextMessage, payload)
			if err != nil {
				h.Log.Error("Error writing message to WebSocket", "error", err)
				// Connection might be closed, exit the loop
				return
			}
		case <-done:
			// The connection has been closed
			h.Log.Info("WebSocket connection closed by the client")
			return
		}
	}
}

func (h *Handler) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Log.Error("Error reading message", "error", err)
			}
			break
		}
	}
}
