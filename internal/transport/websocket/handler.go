package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
)

// Watcher registers change callbacks
type Watcher interface {
	Watch(filter events.Filter, fn func(events.Change)) (cancel func())
}

// ProductsActivator is implemented by watchers that can keep the product list
// refetching while a client observes it
type ProductsActivator interface {
	ActivateProducts() (release func())
}

type Handler struct {
	Upgrader websocket.Upgrader
	Log      hclog.Logger
	Watcher  Watcher
}

type Message struct {
	EventType string      `json:"event-type"`
	Data      interface{} `json:"data"`
}

// EventInvalidate tells the client that data it shows may be outdated
const EventInvalidate = "invalidate"

// connBuffer is how many pending changes a connection holds before dropping
const connBuffer = 16

func NewHandler(log hclog.Logger, watcher Watcher) *Handler {
	return &Handler{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		Log:     log,
		Watcher: watcher,
	}
}

// ParseFilter reads the table and slug query parameters. An empty table
// watches every table.
func ParseFilter(r *http.Request) (events.Filter, bool) {
	q := r.URL.Query()
	f := events.Filter{Table: domain.EntityKind(q.Get("table")), Slug: q.Get("slug")}
	switch f.Table {
	case "", domain.KindProducts, domain.KindCategories, domain.KindSettings:
		return f, true
	}
	return f, false
}

// HandleWebSocket pushes an invalidate message for every matching change.
// Each connection holds its own subscription.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	filter, ok := ParseFilter(r)
	if !ok {
		http.Error(w, "Unknown table", http.StatusBadRequest)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Error("Unable to upgrade to WebSocket", "error", err)
		return
	}
	defer conn.Close()

	changes := make(chan events.Change, connBuffer)
	cancel := h.Watcher.Watch(filter, func(c events.Change) {
		select {
		case changes <- c:
		default:
			// level-triggered: a pending message already asks for a refetch
		}
	})
	defer cancel()

	if a, ok := h.Watcher.(ProductsActivator); ok && watchesProducts(filter) {
		defer a.ActivateProducts()()
	}

	done := make(chan struct{})
	go h.readPump(conn, done)

	h.Log.Debug("WebSocket subscribed", "table", filter.Table, "slug", filter.Slug)

	for {
		select {
		case change := <-changes:
			payload, err := json.Marshal(Message{EventType: EventInvalidate, Data: change})
			if err != nil {
				h.Log.Error("Error marshalling message", "error", err)
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.Log.Error("Error writing message to WebSocket", "error", err)
				return
			}
		case <-done:
			h.Log.Info("WebSocket connection closed by the client")
			return
		}
	}
}

func watchesProducts(f events.Filter) bool {
	return f.Table == "" || f.Table == domain.KindProducts
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
