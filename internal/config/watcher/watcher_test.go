package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formedit.toml")
	if err := os.WriteFile(path, []byte("[history]\ncapacity = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	events := make(chan Event, 8)
	w, err := New(path, func(ev Event) { events <- ev }, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[history]\ncapacity = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Path != w.Path() {
			t.Errorf("Path = %q, want %q", ev.Path, w.Path())
		}
		if ev.Op == OpRemove {
			t.Errorf("Op = %v, want write or create", ev.Op)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcherDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formedit.yaml")

	events := make(chan Event, 8)
	w, err := New(path, func(ev Event) { events <- ev }, WithDebounce(200*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("history:\n  capacity: 3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-events:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
	select {
	case ev := <-events:
		t.Errorf("burst produced a second event: %+v", ev)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("x.toml", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("nil handler err = %v, want ErrNilHandler", err)
	}
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "x.toml")
	if _, err := New(missing, func(Event) {}); err == nil {
		t.Error("missing directory should fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "c.toml"), func(Event) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in     fsnotify.Op
		want   Operation
		wantOK bool
	}{
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Create | fsnotify.Write, OpCreate, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRemove, true},
		{fsnotify.Chmod, 0, false},
	}
	for _, tt := range tests {
		got, ok := convertOp(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("convertOp(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
