package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const tetra = `v 0 0 0
v 4 0 0
v 0 2 0
v 0 0 1
f 1 2 3
f 1 2 4
f 1 3 4
f 2 3 4
`

func newTestServer(t *testing.T) (*httptest.Server, Config) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		UploadDir: filepath.Join(t.TempDir(), "uploads"),
		ObjDir:    t.TempDir(),
		FrameRate: 100,
	}
	srv, err := NewServer(ctx, cfg, NewHub())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts, cfg
}

func postModel(t *testing.T, ts *httptest.Server, text string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/model", "text/plain", strings.NewReader(text))
	if err != nil {
		t.Fatalf("POST /model: %v", err)
	}
	resp.Body.Close()
	return resp
}

func TestHome(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("three.min.js")) {
		t.Errorf("got status %d, want the viewer page", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d for an unknown path, want 404", resp.StatusCode)
	}
}

func TestModel(t *testing.T) {
	ts, _ := newTestServer(t)
	if resp := postModel(t, ts, "  \n"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty model: got status %d, want 400", resp.StatusCode)
	}
	if resp := postModel(t, ts, tetra); resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}
}

func upload(t *testing.T, ts *httptest.Server, field, name string) (*http.Response, map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("\x89PNG fake image"))
	mw.Close()
	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /upload: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestUpload(t *testing.T) {
	ts, cfg := newTestServer(t)
	resp, body := upload(t, ts, "image", "photo.png")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d (%v), want 200", resp.StatusCode, body)
	}
	name := body["filename"]
	if !strings.HasSuffix(name, "_photo.png") {
		t.Errorf("got filename %q, want <unix>_photo.png", name)
	}
	data, err := os.ReadFile(filepath.Join(cfg.UploadDir, name))
	if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("upload not saved: %v", err)
	}

	if resp, _ := upload(t, ts, "file", "photo.png"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong field: got status %d, want 400", resp.StatusCode)
	}
}

func TestGenerateOBJ(t *testing.T) {
	ts, cfg := newTestServer(t)
	resp, err := http.Post(ts.URL+"/generate-obj/1700000000_photo.png", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("got status %d without converter output, want 501", resp.StatusCode)
	}

	if err := os.WriteFile(filepath.Join(cfg.ObjDir, "1700000000_photo.obj"), []byte(tetra), 0o644); err != nil {
		t.Fatal(err)
	}
	resp, err = http.Post(ts.URL+"/generate-obj/1700000000_photo.png", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != tetra {
		t.Errorf("got status %d body %q, want the OBJ file", resp.StatusCode, body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "1700000000_photo.obj") {
		t.Errorf("got Content-Disposition %q", cd)
	}
}

func TestSnapshot(t *testing.T) {
	ts, _ := newTestServer(t)
	get := func(query string) *http.Response {
		resp, err := http.Get(ts.URL + "/snapshot.png" + query)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp
	}
	if resp := get(""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("no model: got status %d, want 404", resp.StatusCode)
	}
	postModel(t, ts, "v 1 x 2\n")
	if resp := get(""); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad model: got status %d, want 422", resp.StatusCode)
	}
	postModel(t, ts, tetra)
	if resp := get("?rx=0.5&ry=1"); resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("got status %d type %q, want a PNG", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if resp := get("?rx=left"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad angle: got status %d, want 400", resp.StatusCode)
	}
}

type message map[string]any

func dial(t *testing.T, ts *httptest.Server, containers map[string]any) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?container=viewer"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := conn.WriteJSON(message{"type": "hello", "containers": containers}); err != nil {
		t.Fatalf("hello: %v", err)
	}
	return conn
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg["type"] == typ {
			return msg
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts, map[string]any{"viewer": map[string]int{"width": 640, "height": 480}})

	mounted := readUntil(t, conn, "init")
	scene := mounted["scene"].(map[string]any)
	if lights := scene["lights"].([]any); len(lights) != 3 {
		t.Errorf("got %d lights, want 3", len(lights))
	}
	readUntil(t, conn, "frame")

	postModel(t, ts, tetra)
	geometry := readUntil(t, conn, "geometry")
	if idx := geometry["indices"].([]any); len(idx) != 12 {
		t.Errorf("got %d indices, want 12", len(idx))
	}
	first := readUntil(t, conn, "show")

	conn.WriteJSON(message{"type": "wireframe"})
	second := readUntil(t, conn, "show")
	if first["geometry"] != second["geometry"] || first["material"] == second["material"] {
		t.Errorf("wireframe toggle: got %v then %v", first, second)
	}

	conn.WriteJSON(message{"type": "load", "text": "v nope"})
	if got := readUntil(t, conn, "error")["message"]; got != "Failed to load 3D model" {
		t.Errorf("got error message %v", got)
	}

	conn.WriteJSON(message{"type": "pointerdown", "x": 0, "y": 0})
	conn.WriteJSON(message{"type": "pointermove", "x": 100, "y": 0})
	conn.WriteJSON(message{"type": "load", "text": tetra})
	readUntil(t, conn, "show")
	for {
		frame := readUntil(t, conn, "frame")["frame"].(map[string]any)
		if rot := frame["rotation"].(map[string]any); rot["y"].(float64) > 0 {
			break
		}
	}
}

func TestWebSocketMissingContainer(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts, map[string]any{"sidebar": map[string]int{"width": 100, "height": 100}})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg message
	err := conn.ReadJSON(&msg)
	if err == nil {
		t.Fatalf("got message %v, want the connection closed", msg)
	}
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Logf("connection ended with %v", err)
	}
}
