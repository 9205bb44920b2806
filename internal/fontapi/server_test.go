package fontapi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gift-box/internal/fonts"
	"gift-box/internal/giftbox"
	"gift-box/internal/openstate"

	"github.com/gorilla/websocket"
)

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body
}

func TestFontsEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, dir string)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing metadata",
			setup:      func(t *testing.T, dir string) {},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Font metadata not found"}`,
		},
		{
			name: "invalid metadata",
			setup: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, fonts.MetadataFile), []byte("[{"), 0644); err != nil {
					t.Fatal(err)
				}
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name: "metadata list",
			setup: func(t *testing.T, dir string) {
				list := []fonts.Metadata{{Name: "Lobster-Regular", File: "Lobster/Lobster-Regular.woff", Format: "woff"}}
				if err := fonts.SaveMetadata(filepath.Join(dir, fonts.MetadataFile), list); err != nil {
					t.Fatal(err)
				}
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"name":"Lobster-Regular","file":"Lobster/Lobster-Regular.woff","format":"woff"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			status, body := get(t, New(dir, nil), "/api/fonts")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %s, want %s", body, tt.wantBody)
			}
		})
	}
}

func TestStaticFonts(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Lobster"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Lobster", "Lobster-Regular.woff"), []byte("wOFF"), 0644); err != nil {
		t.Fatal(err)
	}
	status, body := get(t, New(dir, nil), fonts.URL("Lobster/Lobster-Regular.woff"))
	if status != http.StatusOK || string(body) != "wOFF" {
		t.Errorf("GET font = %d %q, want 200 wOFF", status, body)
	}
}

func TestStateEndpoint(t *testing.T) {
	s := New(t.TempDir(), nil)
	s.Publish(giftbox.Snapshot{State: openstate.Opened, Stage: giftbox.Separated, Separated: true, Clicks: 3})

	status, body := get(t, s, "/api/state")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var got struct {
		State     string `json:"state"`
		Stage     string `json:"stage"`
		Separated bool   `json:"separated"`
		Clicks    int    `json:"clicks"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if got.State != "opened" || got.Stage != "separated" || !got.Separated || got.Clicks != 3 {
		t.Errorf("state = %+v", got)
	}
}

func TestStateWSRequiresUpgrade(t *testing.T) {
	status, _ := get(t, New(t.TempDir(), nil), "/ws/state")
	if status != http.StatusUpgradeRequired {
		t.Errorf("status = %d, want %d", status, http.StatusUpgradeRequired)
	}
}

func TestStateWSStream(t *testing.T) {
	s := New(t.TempDir(), nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.Listener(ln)
	t.Cleanup(func() { _ = s.Shutdown() })

	s.Publish(giftbox.Snapshot{State: openstate.Intact, Clicks: 1})

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/state", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() map[string]any {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return m
	}

	if m := read(); m["state"] != "intact" || m["clicks"] != float64(1) {
		t.Errorf("first message = %v, want the latest snapshot", m)
	}
	s.Publish(giftbox.Snapshot{State: openstate.Opened, Stage: giftbox.Separated, Separated: true})
	if m := read(); m["state"] != "opened" || m["separated"] != true {
		t.Errorf("second message = %v, want the opened snapshot", m)
	}
	if s.Clients() != 1 {
		t.Errorf("Clients() = %d, want 1", s.Clients())
	}
}
