package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"intheback.ai/internal/backpack/plugin"
	"intheback.ai/internal/host"
	"intheback.ai/internal/persistence/snapshot"
	"intheback.ai/internal/transport/ws"
)

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}

func TestSnapshotter_TakeIsMonotonic(t *testing.T) {
	h := host.New(host.Config{StarterItems: map[string]int{"STONE": 1}})
	h.Join("P1", "alex")
	fixed := time.UnixMilli(5000)
	s := &snapshotter{
		dir:    t.TempDir(),
		host:   h,
		digest: "d",
		log:    log.New(io.Discard, "", 0),
		now:    func() time.Time { return fixed },
	}
	p1, err := s.take()
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	p2, err := s.take()
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("second snapshot overwrote the first: %s", p1)
	}
	latest, _ := snapshot.Latest(s.dir)
	if latest != p2 {
		t.Fatalf("latest: got %s want %s", latest, p2)
	}
	snap, err := snapshot.ReadSnapshot(p2)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(snap.Players) != 1 || snap.Players[0].Main[0].Stack.Material != "STONE" {
		t.Fatalf("snapshot players: %+v", snap.Players)
	}
}

func TestSnapshotter_ArchivesBeyondKeep(t *testing.T) {
	h := host.New(host.Config{})
	h.Join("P1", "alex")
	root := t.TempDir()
	ms := int64(1000)
	s := &snapshotter{
		dir:        filepath.Join(root, "snapshots"),
		host:       h,
		log:        log.New(io.Discard, "", 0),
		now:        func() time.Time { ms += 1000; return time.UnixMilli(ms) },
		archiveDir: filepath.Join(root, "archives"),
		keep:       2,
	}
	for i := 0; i < 4; i++ {
		if _, err := s.take(); err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
	}
	left, _ := snapshot.List(s.dir)
	if len(left) != 2 {
		t.Fatalf("kept %d snapshots: %v", len(left), left)
	}
	archived, _ := snapshot.List(filepath.Join(root, "archives", "1970-01-01"))
	if len(archived) != 2 {
		t.Fatalf("archived %d snapshots: %v", len(archived), archived)
	}
}

func TestAdminAndMetrics(t *testing.T) {
	h := host.New(host.Config{})
	h.Join("P1", "alex")
	bp, err := plugin.Enable(h, plugin.Config{})
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	snaps := &snapshotter{dir: t.TempDir(), host: h, log: log.New(io.Discard, "", 0), now: time.Now}
	mux := http.NewServeMux()
	registerAdmin(mux, h, snaps)
	mux.HandleFunc("/metrics", metricsHandler(h, bp, ws.NewServer(ws.Config{Host: h, Store: bp.Store()}), nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/snapshot", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("snapshot: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/v1/snapshot", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("remote snapshot: got %d want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/v1/state?player=P1", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"PlayerID":"P1"`) {
		t.Fatalf("state: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"intheback_players 1", "intheback_clients 0", "intheback_open_backpacks 0"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}
