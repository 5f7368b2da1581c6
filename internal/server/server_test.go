package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/wrapview/internal/catalog"
	"github.com/Faultbox/wrapview/internal/config"
	"github.com/Faultbox/wrapview/internal/product"
	"github.com/Faultbox/wrapview/internal/session"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, chan session.Event, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cat := catalog.New(dir, config.Default().Catalog.Extensions, nil)
	if err := cat.Refresh(); err != nil {
		t.Fatal(err)
	}

	events := make(chan session.Event, 8)
	srv := New(config.ServerConfig{WriteTimeout: time.Second}, cat, events, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts, events, dir
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func waitClients(t *testing.T, srv *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for srv.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", srv.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListTextures(t *testing.T) {
	_, ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/textures")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Textures []catalog.Entry `json:"textures"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Textures) != 2 || body.Textures[0].Name != "a.jpg" || body.Textures[1].Name != "b.png" {
		t.Errorf("textures = %+v, want [a.jpg b.png]", body.Textures)
	}
}

func TestServeTextureFile(t *testing.T) {
	_, ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/textures/b.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func upload(t *testing.T, ts *httptest.Server, name string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("data"))
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/textures", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUploadTexture(t *testing.T) {
	_, ts, _, dir := newTestServer(t)

	if resp := upload(t, ts, "decal.png"); resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	entries, err := catalog.Scan(dir, []string{".png"})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.HasSuffix(e.Name, "_decal.png") {
			found = true
		}
	}
	if !found {
		t.Errorf("uploaded file not listed: %+v", entries)
	}

	if resp := upload(t, ts, "virus.exe"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStateBeforeAndAfterPublish(t *testing.T) {
	srv, ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before publish = %d, want 503", resp.StatusCode)
	}

	srv.Publish(session.Snapshot{Product: "cup", State: product.Ready})

	resp, err = http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap["product"] != "cup" || snap["state"] != "ready" {
		t.Errorf("state = %v, want ready cup", snap)
	}
}

func TestWebSocketEventsAndBroadcast(t *testing.T) {
	srv, ts, events, _ := newTestServer(t)
	srv.Publish(session.Snapshot{Product: "shirt", State: product.Loading})

	conn := dial(t, ts)
	if msg := readMessage(t, conn); msg.Type != "state" || msg.State.Product != "shirt" {
		t.Fatalf("first message = %+v, want shirt state", msg)
	}
	if msg := readMessage(t, conn); msg.Type != "catalog" || len(msg.Textures) != 2 {
		t.Fatalf("second message = %+v, want catalog", msg)
	}

	if err := conn.WriteJSON(session.Event{Type: session.EventSelectPattern, Kind: "dots"}); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-events:
		if ev.Type != session.EventSelectPattern || ev.Kind != "dots" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not forwarded")
	}

	srv.Publish(session.Snapshot{Product: "shirt", State: product.Ready})
	if msg := readMessage(t, conn); msg.State == nil || msg.State.State != product.Ready {
		t.Errorf("broadcast = %+v, want ready state", msg)
	}
}

func TestWebSocketMalformedEvent(t *testing.T) {
	srv, ts, events, _ := newTestServer(t)
	conn := dial(t, ts)
	waitClients(t, srv, 1)
	readMessage(t, conn) // catalog

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "error" {
		t.Errorf("reply = %+v, want error", msg)
	}
	if err := conn.WriteJSON(map[string]string{"kind": "dots"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "error" {
		t.Errorf("reply = %+v, want error", msg)
	}
	select {
	case ev := <-events:
		t.Errorf("malformed input forwarded: %+v", ev)
	default:
	}
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	srv, ts, _, _ := newTestServer(t)
	conn := dial(t, ts)
	waitClients(t, srv, 1)

	conn.Close()
	waitClients(t, srv, 0)
}

func TestListenAndServeStops(t *testing.T) {
	srv := New(config.ServerConfig{Addr: "127.0.0.1:0"}, nil, make(chan session.Event), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return")
	}
}
