package web

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/intermernet/meshview/viewer"
)

// Hub tracks the running viewer sessions and the state shared between them:
// the current model text and the last sensor orientation.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*subscriber

	model       string
	hasModel    bool
	orientation *viewer.Rotation
}

// subscriber is one session's view of the hub. models holds at most the
// latest model text not yet handed to the session.
type subscriber struct {
	events chan<- viewer.Event
	models chan string
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[uuid.UUID]*subscriber)}
}

// Register adds a session's event channel and returns its id. Model changes
// reach the session until ctx is done, however slowly it drains events.
func (h *Hub) Register(ctx context.Context, events chan<- viewer.Event) uuid.UUID {
	id := uuid.Must(uuid.NewV7())
	sub := &subscriber{events: events, models: make(chan string, 1)}
	h.mu.Lock()
	h.sessions[id] = sub
	h.mu.Unlock()
	go sub.forwardModels(ctx)
	return id
}

func (sub *subscriber) forwardModels(ctx context.Context) {
	for {
		select {
		case text := <-sub.models:
			select {
			case sub.events <- viewer.LoadTextEvent(text):
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Len returns the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Model returns the current model text, if one has been set.
func (h *Hub) Model() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.model, h.hasModel
}

// SetModel makes text the current model and asks every session to load it.
// A model a session has not picked up yet is replaced by text. It returns
// the number of sessions notified.
func (h *Hub) SetModel(text string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.model, h.hasModel = text, true
	for _, sub := range h.sessions {
		select {
		case <-sub.models:
		default:
		}
		sub.models <- text
	}
	return len(h.sessions)
}

// Orientation returns the last orientation passed to Orient.
func (h *Hub) Orientation() (viewer.Rotation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.orientation == nil {
		return viewer.Rotation{}, false
	}
	return *h.orientation, true
}

// Orient records r and sends it to every session. A session whose queue is
// full misses the update.
func (h *Hub) Orient(r viewer.Rotation) {
	h.mu.Lock()
	h.orientation = &r
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.sessions {
		select {
		case sub.events <- viewer.OrientEvent(r):
		default:
		}
	}
}
