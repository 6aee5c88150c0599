package postproc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWebhook_PostsPath(t *testing.T) {
	got := make(chan webhookRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req webhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		got <- req
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	if err := NewWebhook(srv.URL, time.Second).Process(context.Background(), "/tmp/a.jpg"); err != nil {
		t.Fatal(err)
	}
	if req := <-got; req.Path != "/tmp/a.jpg" || req.CapturedAt.IsZero() {
		t.Errorf("request = %+v", req)
	}
}

func TestWebhook_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhook(srv.URL, time.Second).Process(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWebhook_HonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	if err := NewWebhook(srv.URL, 50*time.Millisecond).Process(context.Background(), "x"); err == nil {
		t.Fatal("expected timeout")
	}
}

func TestLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (Logger{}).Process(context.Background(), path); err != nil {
		t.Errorf("Process: %v", err)
	}
	if err := (Logger{}).Process(context.Background(), path+".missing"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New("", time.Second).(Logger); !ok {
		t.Error("empty url should select Logger")
	}
	if _, ok := New("http://x", time.Second).(*Webhook); !ok {
		t.Error("url should select Webhook")
	}
}
