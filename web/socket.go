package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/intermernet/meshview/viewer"
)

const (
	// DefaultContainer is the page element the viewer draws into.
	DefaultContainer = "viewer"

	helloWait   = 10 * time.Second
	eventBuffer = 64
)

// clientMessage is any message the page sends. Type selects which fields
// are meaningful.
type clientMessage struct {
	Type       string                   `json:"type"`
	Containers map[string]viewer.Region `json:"containers,omitempty"`
	X          float64                  `json:"x"`
	Y          float64                  `json:"y"`
	Touches    []viewer.Point           `json:"touches,omitempty"`
	DeltaY     float64                  `json:"deltaY"`
	Width      int                      `json:"width"`
	Height     int                      `json:"height"`
	Text       string                   `json:"text,omitempty"`
}

func (m *clientMessage) event() (viewer.Event, bool) {
	switch m.Type {
	case "pointerdown":
		return viewer.PointerDownEvent{X: m.X, Y: m.Y}, true
	case "pointermove":
		return viewer.PointerMoveEvent{X: m.X, Y: m.Y}, true
	case "pointerup":
		return viewer.PointerUpEvent{}, true
	case "touchstart":
		return viewer.TouchStartEvent(m.Touches), true
	case "touchmove":
		return viewer.TouchMoveEvent(m.Touches), true
	case "touchend":
		return viewer.TouchEndEvent{}, true
	case "wheel":
		return viewer.WheelEvent(m.DeltaY), true
	case "resize":
		return viewer.ResizeEvent{Width: m.Width, Height: m.Height}, true
	case "reset":
		return viewer.ResetViewEvent{}, true
	case "wireframe":
		return viewer.ToggleWireframeEvent{}, true
	case "load":
		return viewer.LoadTextEvent(m.Text), true
	}
	return nil, false
}

// handleWebSocket runs one viewer session for the lifetime of a websocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	container := r.URL.Query().Get("container")
	if container == "" {
		container = DefaultContainer
	}

	// The page announces its containers before anything is drawn.
	var hello clientMessage
	conn.SetReadDeadline(time.Now().Add(helloWait))
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "hello" {
		log.Printf("WebSocket handshake error: %v (type %q)", err, hello.Type)
		return
	}
	conn.SetReadDeadline(time.Time{})

	sess, err := viewer.New(newSocketSurface(conn, hello.Containers), container, viewer.WithFrameRate(s.cfg.FrameRate))
	if err != nil {
		log.Printf("WebSocket session not started: %v", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown container"),
			time.Now().Add(writeWait))
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	events := make(chan viewer.Event, eventBuffer)
	id := s.hub.Register(ctx, events)
	defer s.hub.Unregister(id)
	log.Printf("New viewer session %s in container %q", id, container)

	if text, ok := s.hub.Model(); ok {
		sess.Load(text)
	}
	if rot, ok := s.hub.Orientation(); ok {
		sess.Orient(rot)
	}

	go readEvents(ctx, cancel, conn, events)

	if err := sess.Run(ctx, events); err != nil {
		log.Printf("Viewer session %s ended: %v", id, err)
	}
	log.Printf("Viewer session %s disconnected", id)
}

// readEvents forwards page input to the session until the connection fails
// or ctx is done.
func readEvents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events chan<- viewer.Event) {
	defer cancel()
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		ev, ok := msg.event()
		if !ok {
			log.Printf("Ignoring unknown message type %q", msg.Type)
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
