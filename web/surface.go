package web

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/intermernet/meshview/geom"
	"github.com/intermernet/meshview/viewer"
)

const writeWait = 10 * time.Second

var errSurfaceClosed = errors.New("surface closed")

// Messages sent to the page. The page keeps three.js objects keyed by id.
type (
	initMessage struct {
		Type  string       `json:"type"`
		Scene viewer.Scene `json:"scene"`
	}
	sizeMessage struct {
		Type   string `json:"type"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	geometryMessage struct {
		Type      string    `json:"type"`
		ID        int       `json:"id"`
		Positions []float32 `json:"positions"`
		Normals   []float32 `json:"normals"`
		Indices   []uint32  `json:"indices"`
	}
	materialMessage struct {
		Type     string          `json:"type"`
		ID       int             `json:"id"`
		Material viewer.Material `json:"material"`
	}
	showMessage struct {
		Type     string `json:"type"`
		Geometry int    `json:"geometry"`
		Material int    `json:"material"`
	}
	idMessage struct {
		Type string `json:"type"`
		ID   int    `json:"id,omitempty"`
	}
	frameMessage struct {
		Type  string       `json:"type"`
		Frame viewer.Frame `json:"frame"`
	}
	errorMessage struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
)

// socketSurface draws a viewer session in a browser page over a websocket.
// Only the session's goroutine may call it.
type socketSurface struct {
	conn    *websocket.Conn
	regions map[string]viewer.Region
	nextID  int
	closed  bool
}

func newSocketSurface(conn *websocket.Conn, regions map[string]viewer.Region) *socketSurface {
	return &socketSurface{conn: conn, regions: regions}
}

func (s *socketSurface) send(v any) error {
	if s.closed {
		return errSurfaceClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return errors.Wrap(s.conn.WriteJSON(v), "websocket write")
}

func (s *socketSurface) Region(container string) (viewer.Region, bool) {
	r, ok := s.regions[container]
	return r, ok
}

func (s *socketSurface) Mount(scene viewer.Scene) error {
	return s.send(initMessage{Type: "init", Scene: scene})
}

func (s *socketSurface) SetSize(width, height int) error {
	return s.send(sizeMessage{Type: "size", Width: width, Height: height})
}

func (s *socketSurface) NewGeometry(g *geom.Geometry) (viewer.Resource, error) {
	h := s.newHandle()
	err := s.send(geometryMessage{
		Type:      "geometry",
		ID:        h.id,
		Positions: g.Positions,
		Normals:   g.Normals,
		Indices:   g.Indices,
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *socketSurface) NewMaterial(m viewer.Material) (viewer.Resource, error) {
	h := s.newHandle()
	if err := s.send(materialMessage{Type: "material", ID: h.id, Material: m}); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *socketSurface) Show(geometry, material viewer.Resource) error {
	return s.send(showMessage{Type: "show", Geometry: geometry.ID(), Material: material.ID()})
}

func (s *socketSurface) Hide() error {
	return s.send(idMessage{Type: "hide"})
}

func (s *socketSurface) Draw(f viewer.Frame) error {
	return s.send(frameMessage{Type: "frame", Frame: f})
}

func (s *socketSurface) ShowError(message string) error {
	return s.send(errorMessage{Type: "error", Message: message})
}

// Close tells the page to tear down its renderer and input listeners. The
// connection itself belongs to the handler.
func (s *socketSurface) Close() error {
	if s.closed {
		return nil
	}
	err := s.send(idMessage{Type: "dispose"})
	s.closed = true
	return err
}

func (s *socketSurface) newHandle() *handle {
	s.nextID++
	return &handle{id: s.nextID, surface: s}
}

// handle is a page-side geometry or material.
type handle struct {
	id       int
	surface  *socketSurface
	released bool
}

func (h *handle) ID() int { return h.id }

func (h *handle) Release() error {
	if h.released {
		return nil
	}
	h.released = true
	return h.surface.send(idMessage{Type: "release", ID: h.id})
}
