package daemonctl_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"stanza/internal/daemonctl"
	"stanza/internal/testsupport"
)

func TestProcessInfoWithoutPIDFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	alive, pid, err := daemonctl.ProcessInfo(cfg)
	if err != nil || alive || pid != 0 {
		t.Fatalf("expected not running, got alive=%v pid=%d err=%v", alive, pid, err)
	}
	if _, err := daemonctl.Stop(context.Background(), cfg, time.Second); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestProcessInfoReadsPIDFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}
	if err := os.WriteFile(daemonctl.PIDPath(cfg), []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	alive, pid, err := daemonctl.ProcessInfo(cfg)
	if err != nil || !alive || pid != os.Getpid() {
		t.Fatalf("expected current process alive, got alive=%v pid=%d err=%v", alive, pid, err)
	}
	if _, err := daemonctl.Stop(context.Background(), cfg, time.Second); err == nil || !strings.Contains(err.Error(), "refusing") {
		t.Fatalf("expected refusal to stop current process, got %v", err)
	}

	if err := os.WriteFile(daemonctl.PIDPath(cfg), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, _, err := daemonctl.ProcessInfo(cfg); err == nil {
		t.Fatal("expected malformed pid file error")
	}
}

func TestClientStatusSendsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"data":{"running":true,"pid":42,"catalog":{"tracks":3}}}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("tok"))
	cfg.Paths.APIBind = strings.TrimPrefix(srv.URL, "http://")

	status, err := daemonctl.NewClient(cfg).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 42 || status.Catalog.Tracks != 3 {
		t.Fatalf("unexpected status %+v", status)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestClientStatusReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error":"unauthorized"}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = srv.URL
	if _, err := daemonctl.NewClient(cfg).Status(context.Background()); err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestOfflineSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	fragment, _ := testsupport.NewFragment(t, store, "Poem", "one", "two")
	testsupport.NewTrack(t, store, fragment.ID, "a.mp3", 10)

	status, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if status.Running {
		t.Fatal("expected offline snapshot")
	}
	if status.Catalog.Fragments != 1 || status.Catalog.Lines != 2 || status.Catalog.Tracks != 1 {
		t.Fatalf("unexpected catalog counts %+v", status.Catalog)
	}
	if len(status.Dependencies) != 3 {
		t.Fatalf("expected 3 dependency checks, got %d", len(status.Dependencies))
	}
}
