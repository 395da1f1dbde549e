// Package web serves the viewer page, runs one viewer session per websocket
// and accepts model and image uploads.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"

	"github.com/intermernet/meshview/geom"
	"github.com/intermernet/meshview/objtext"
	"github.com/intermernet/meshview/snapshot"
	"github.com/intermernet/meshview/viewer"
)

const (
	maxModelBytes  = 50 << 20
	maxUploadBytes = 32 << 20
	snapshotSize   = 16 * vg.Centimeter
)

// Config holds the server settings that come from flags.
type Config struct {
	UploadDir string
	ObjDir    string
	FrameRate int
}

// Server is the viewer's HTTP handler.
type Server struct {
	ctx      context.Context
	cfg      Config
	hub      *Hub
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// NewServer creates the upload directory and registers the routes. Viewer
// sessions end when ctx is done.
func NewServer(ctx context.Context, cfg Config, hub *Hub) (*Server, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload directory")
	}
	s := &Server{
		ctx: ctx,
		cfg: cfg,
		hub: hub,
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for simplicity
			},
		},
	}
	s.mux.HandleFunc("GET /{$}", serveHome)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("POST /model", s.handleModel)
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("POST /generate-obj/{filename}", s.handleGenerateOBJ)
	s.mux.HandleFunc("GET /snapshot.png", s.handleSnapshot)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// serveHome serves the main HTML page
func serveHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlContent))
}

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// handleModel makes the request body the current model for every viewer.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxModelBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, jsonError{Error: "Model too large", Details: err.Error()})
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		writeJSON(w, http.StatusBadRequest, jsonError{Error: "Empty model"})
		return
	}
	text := string(data)
	b := objtext.Parse(text)
	n := s.hub.SetModel(text)
	log.Printf("Model set: %d vertices, %d triangles, sent to %d sessions", b.VertexCount(), b.TriangleCount(), n)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Model loaded",
		"vertices":  b.VertexCount(),
		"triangles": b.TriangleCount(),
		"sessions":  n,
	})
}

// handleUpload stores an uploaded image. Converting it to a model is not
// implemented.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, jsonError{Error: "No file part"})
		return
	}
	defer file.Close()
	name := filepath.Base(header.Filename)
	if header.Filename == "" || name == "." || name == string(filepath.Separator) {
		writeJSON(w, http.StatusBadRequest, jsonError{Error: "No selected file"})
		return
	}

	safeName := fmt.Sprintf("%d_%s", time.Now().Unix(), name)
	if err := saveFile(filepath.Join(s.cfg.UploadDir, safeName), file); err != nil {
		log.Printf("Error saving upload: %v", err)
		writeJSON(w, http.StatusInternalServerError, jsonError{Error: "Internal Server Error", Details: err.Error()})
		return
	}
	log.Printf("Saved upload %s", safeName)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "File uploaded; 3D conversion is not available",
		"filename": safeName,
	})
}

func saveFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating upload")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrap(err, "writing upload")
	}
	return errors.Wrap(f.Close(), "closing upload")
}

// handleGenerateOBJ sends the model an external converter produced for an
// uploaded image. No converter ships with the viewer.
func (s *Server) handleGenerateOBJ(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.PathValue("filename"))
	objName := strings.TrimSuffix(name, filepath.Ext(name)) + ".obj"

	f, err := os.Open(filepath.Join(s.cfg.ObjDir, objName))
	if err != nil {
		writeJSON(w, http.StatusNotImplemented, jsonError{
			Error:   "OBJ generation is not implemented",
			Details: fmt.Sprintf("no converter output %s in the OBJ directory", objName),
		})
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, jsonError{Error: "Internal Server Error", Details: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", objName))
	http.ServeContent(w, r, objName, fi.ModTime(), f)
}

// handleSnapshot renders the current model as a PNG, rotated by the rx and
// ry query parameters in radians.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var angles [2]float64
	for i, key := range []string{"rx", "ry"} {
		v := r.URL.Query().Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, jsonError{Error: "Invalid " + key, Details: err.Error()})
			return
		}
		angles[i] = f
	}

	text, ok := s.hub.Model()
	if !ok {
		writeJSON(w, http.StatusNotFound, jsonError{Error: "No model loaded"})
		return
	}
	g, err := geom.Build(objtext.Parse(text))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, jsonError{Error: "Failed to load 3D model", Details: err.Error()})
		return
	}
	g.Fit(viewer.TargetSize)

	var buf bytes.Buffer
	if err := snapshot.Render(&buf, g, angles[0], angles[1], snapshotSize); err != nil {
		log.Printf("Error rendering snapshot: %v", err)
		writeJSON(w, http.StatusInternalServerError, jsonError{Error: "Internal Server Error", Details: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}
