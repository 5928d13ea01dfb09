package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewServerHealthEndpoint(t *testing.T) {
	srv := New(Config{Host: "127.0.0.1", Port: "0", DataDir: t.TempDir()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("got status %q, want ok", body.Status)
	}
}

func TestNewServerRootHandler(t *testing.T) {
	srv := New(Config{Host: "127.0.0.1", Port: "0", DataDir: t.TempDir()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "geovt") {
		t.Fatalf("got body %q, want it to mention geovt", rec.Body.String())
	}
}

// New must wire internal/source.Service at DataDir, not DataDir/sources --
// Service.New already appends the "sources" segment itself.
func TestNewServerSourcesDirNotDoubled(t *testing.T) {
	dataDir := t.TempDir()
	srv := New(Config{Host: "127.0.0.1", Port: "0", DataDir: dataDir})

	want := filepath.Join(dataDir, "sources")
	if got := srv.services.Source.Dir(); got != want {
		t.Fatalf("got sources dir %q, want %q", got, want)
	}
}

func TestNewServerOpenAPIDescribesTileRoute(t *testing.T) {
	srv := New(Config{Host: "127.0.0.1", Port: "0", DataDir: t.TempDir()})
	spec := srv.OpenAPI()
	if _, ok := spec.Paths["/api/v1/tiles/{z}/{x}/{y}"]; !ok {
		t.Fatal("OpenAPI document is missing the tile route")
	}
}
