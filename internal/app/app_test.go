package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/formedit/internal/config"
	"github.com/dshills/formedit/internal/engine/history"
)

func newTestApp(t *testing.T, out *bytes.Buffer) *Application {
	t.Helper()
	opts := Options{LogOutput: out}
	if out == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	a, err := NewWithConfig(config.Default(), opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// twoViews opens outer1 and outer2, both embedding the form "shared".
func twoViews(t *testing.T, a *Application) (*Editor, *Editor) {
	t.Helper()
	for _, id := range []string{"outer1", "outer2", "shared"} {
		if err := a.CreateForm(id, id); err != nil {
			t.Fatal(err)
		}
	}
	for _, parent := range []string{"outer1", "outer2"} {
		if err := a.EmbedForm(parent, "shared"); err != nil {
			t.Fatal(err)
		}
	}
	ed1, err := a.OpenEditor("outer1")
	if err != nil {
		t.Fatal(err)
	}
	ed2, err := a.OpenEditor("outer2")
	if err != nil {
		t.Fatal(err)
	}
	return ed1, ed2
}

func componentNames(t *testing.T, a *Application, formID string) []string {
	t.Helper()
	f, err := a.Workspace().Get(formID)
	if err != nil {
		t.Fatal(err)
	}
	return f.ComponentNames()
}

func TestSharedEditFollowsInLockStep(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	if err := ed1.AddComponent("shared", "ok", "Button"); err != nil {
		t.Fatal(err)
	}
	if ed2.History().Len() != 1 {
		t.Fatalf("shared edit not recorded in second view, Len = %d", ed2.History().Len())
	}

	if err := ed1.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := componentNames(t, a, "shared"); len(got) != 0 {
		t.Errorf("shared components after undo = %v, want none", got)
	}
	if ed2.History().NextAddIndex() != 0 {
		t.Errorf("second view cursor = %d, want 0", ed2.History().NextAddIndex())
	}
	if !ed2.CanRedo() {
		t.Fatal("second view should be able to redo the shared edit")
	}

	if err := ed2.Redo(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ok"}, componentNames(t, a, "shared")); diff != "" {
		t.Errorf("shared components mismatch (-want +got):\n%s", diff)
	}
	if ed1.History().NextAddIndex() != 1 {
		t.Errorf("first view cursor = %d, want 1", ed1.History().NextAddIndex())
	}
}

func TestDivergedViewIsLocked(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	if err := ed1.AddComponent("shared", "a", "Label"); err != nil {
		t.Fatal(err)
	}
	if err := ed2.AddComponent("outer2", "x", "Label"); err != nil {
		t.Fatal(err)
	}
	if ed1.History().Len() != 1 {
		t.Fatalf("edit on outer2 leaked into first view, Len = %d", ed1.History().Len())
	}

	if err := ed1.Undo(); err != nil {
		t.Fatal(err)
	}

	entries := ed2.History().Entries()
	if !entries[0].Locked || entries[1].Locked {
		t.Errorf("locks = %v,%v; want shared entry locked only", entries[0].Locked, entries[1].Locked)
	}

	if err := ed2.Undo(); err != nil {
		t.Fatalf("undo of unshared edit: %v", err)
	}
	if ed2.CanUndo() {
		t.Error("locked shared entry should not be undoable")
	}
	if err := ed2.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Errorf("Undo err = %v, want ErrNothingToUndo", err)
	}
}

func TestTransactionIsShared(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	err := ed1.Transaction("Add pair", func() error {
		if err := ed1.AddComponent("shared", "a", "Label"); err != nil {
			return err
		}
		return ed1.AddComponent("shared", "b", "Label")
	})
	if err != nil {
		t.Fatal(err)
	}
	if ed2.History().Len() != 1 {
		t.Fatalf("second view Len = %d, want 1 grouped entry", ed2.History().Len())
	}

	if err := ed1.Undo(); err != nil {
		t.Fatal(err)
	}
	if ed2.History().NextAddIndex() != 0 {
		t.Errorf("second view did not follow grouped undo, cursor = %d", ed2.History().NextAddIndex())
	}
}

func TestFormNotInEditor(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, _ := twoViews(t, a)

	err := ed1.SetProperty("outer2", "x", "text", "nope")
	if !errors.Is(err, ErrFormNotInEditor) {
		t.Errorf("err = %v, want ErrFormNotInEditor", err)
	}
}

func TestCloseEditor(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	if err := ed2.Close(); err != nil {
		t.Fatal(err)
	}
	if a.Coordinator().Len() != 1 {
		t.Errorf("coordinator Len = %d, want 1", a.Coordinator().Len())
	}
	if _, ok := a.Editor(ed2.ID()); ok {
		t.Error("closed editor still listed")
	}
	if err := a.CloseEditor(ed2.ID()); !errors.Is(err, ErrEditorNotFound) {
		t.Errorf("second close err = %v, want ErrEditorNotFound", err)
	}

	// Edits on the shared form no longer reach the closed view.
	if err := ed1.AddComponent("shared", "a", "Label"); err != nil {
		t.Fatal(err)
	}
	if ed2.History().Len() != 0 {
		t.Errorf("closed view Len = %d, want 0", ed2.History().Len())
	}
}

func TestClosedApplication(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, _ := twoViews(t, a)

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if len(a.Editors()) != 0 {
		t.Errorf("editors after Close = %d", len(a.Editors()))
	}
	if err := ed1.Undo(); !errors.Is(err, ErrClosed) {
		t.Errorf("Undo after Close err = %v, want ErrClosed", err)
	}
	if _, err := a.OpenEditor("outer1"); !errors.Is(err, ErrClosed) {
		t.Errorf("OpenEditor after Close err = %v, want ErrClosed", err)
	}
}

func TestReloadConfigResizesHistories(t *testing.T) {
	a := newTestApp(t, nil)
	if err := a.CreateForm("f", "F"); err != nil {
		t.Fatal(err)
	}
	ed, err := a.OpenEditor("f")
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.AddComponent("f", "c", "Label"); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"1", "2", "3", "4"} {
		if err := ed.SetProperty("f", "c", "text", v); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.History.Capacity = 2
	if err := a.ReloadConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if ed.History().Len() != 5 {
		t.Fatalf("reload applied before the next operation, Len = %d", ed.History().Len())
	}

	if err := ed.SetProperty("f", "c", "text", "5"); err != nil {
		t.Fatal(err)
	}
	if got := ed.History().Capacity(); got != 2 {
		t.Errorf("Capacity = %d, want 2", got)
	}
	if got := ed.History().Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	if a.Config().History.Capacity != 2 {
		t.Errorf("Config().History.Capacity = %d, want 2", a.Config().History.Capacity)
	}

	bad := config.Default()
	bad.History.Capacity = 0
	if err := a.ReloadConfig(bad); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("invalid reload err = %v, want ErrValidationFailed", err)
	}
}

func TestConfigFileWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formedit.toml")
	if err := os.WriteFile(path, []byte("[history]\ncapacity = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(Options{ConfigPath: path, Watch: true, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if got := a.Config().History.Capacity; got != 10 {
		t.Fatalf("initial capacity = %d, want 10", got)
	}

	if err := os.WriteFile(path, []byte("[history]\ncapacity = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for a.pending.Load() == nil {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for config reload")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := a.CreateForm("f", "F"); err != nil {
		t.Fatal(err)
	}
	ed, err := a.OpenEditor("f")
	if err != nil {
		t.Fatal(err)
	}
	if got := ed.History().Capacity(); got != 3 {
		t.Errorf("editor capacity = %d, want 3", got)
	}
}

func TestRunScriptAndRender(t *testing.T) {
	a := newTestApp(t, nil)

	err := a.RunScriptString(context.Background(), `
formedit.form("outer1")
formedit.form("outer2")
formedit.form("shared")
formedit.embed("outer1", "shared")
formedit.embed("outer2", "shared")
local a = formedit.open("outer1")
local b = formedit.open("outer2")
a:add("ok", "Button", "shared")
a:set("ok", "text", "OK", "shared")
a:undo()
assert(b:can_redo(), "b should follow a")
`)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := a.Render(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"nextAddIndex=1", `Set ok.text = "OK"`, "Add Button ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "editor "); n != 2 {
		t.Errorf("rendered %d editors, want 2", n)
	}
}

func TestScriptErrorIsWrapped(t *testing.T) {
	a := newTestApp(t, nil)
	err := a.RunScriptString(context.Background(), `formedit.open("missing")`)
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "run script" {
		t.Errorf("err = %v, want run script OperationError", err)
	}
}

func TestEventsAreLogged(t *testing.T) {
	var out bytes.Buffer
	a, err := NewWithConfig(config.Default(), Options{LogOutput: &out, LogLevel: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	ed1, _ := twoViews(t, a)
	if err := ed1.AddComponent("shared", "a", "Label"); err != nil {
		t.Fatal(err)
	}
	if err := ed1.Undo(); err != nil {
		t.Fatal(err)
	}

	log := out.String()
	for _, want := range []string{"editor.registered", "history.undone", "history.synced", "source=coordinator"} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %s:\n%s", want, log)
		}
	}
}

func TestNestedTransactionSharedOnce(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	err := ed1.Transaction("outer", func() error {
		if err := ed1.AddComponent("shared", "a", "Button"); err != nil {
			return err
		}
		if err := ed1.Transaction("inner", func() error {
			return ed1.AddComponent("shared", "b", "Button")
		}); err != nil {
			return err
		}
		return ed1.AddComponent("shared", "c", "Button")
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"outer"}
	for _, ed := range []*Editor{ed1, ed2} {
		var got []string
		for _, e := range ed.History().Entries() {
			got = append(got, e.Description)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("editor %s entries mismatch (-want +got):\n%s", ed.ID(), diff)
		}
	}

	if err := ed2.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := componentNames(t, a, "shared"); len(got) != 0 {
		t.Errorf("shared components after undo = %v, want none", got)
	}
	if ed1.History().NextAddIndex() != 0 {
		t.Errorf("first view cursor = %d, want 0", ed1.History().NextAddIndex())
	}
}

func TestFailedInnerTransactionKeepsOuterEdits(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)
	boom := errors.New("boom")

	err := ed1.Transaction("outer", func() error {
		if err := ed1.AddComponent("shared", "a", "Label"); err != nil {
			return err
		}
		ierr := ed1.Transaction("inner", func() error {
			if err := ed1.AddComponent("shared", "b", "Label"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(ierr, boom) {
			t.Errorf("inner Transaction err = %v, want boom", ierr)
		}
		if diff := cmp.Diff([]string{"a"}, componentNames(t, a, "shared")); diff != "" {
			t.Errorf("components after inner failure (-want +got):\n%s", diff)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a"}, componentNames(t, a, "shared")); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
	if ed1.History().Len() != 1 || ed2.History().Len() != 1 {
		t.Errorf("Len = %d/%d, want 1/1", ed1.History().Len(), ed2.History().Len())
	}
	if !ed1.CanUndo() {
		t.Error("outer group should be undoable")
	}
}

func TestRemoveComponentsIsOneEntry(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	for _, name := range []string{"a", "b", "c"} {
		if err := ed1.AddComponent("shared", name, "Label"); err != nil {
			t.Fatal(err)
		}
	}
	if err := ed1.RemoveComponents("shared", "a", "c"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b"}, componentNames(t, a, "shared")); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
	if ed1.History().Len() != 4 || ed2.History().Len() != 4 {
		t.Fatalf("Len = %d/%d, want 4/4", ed1.History().Len(), ed2.History().Len())
	}

	if err := ed2.Undo(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, componentNames(t, a, "shared")); diff != "" {
		t.Errorf("components after undo (-want +got):\n%s", diff)
	}

	err := ed1.RemoveComponents("shared", "b", "missing")
	if err == nil {
		t.Fatal("removing a missing component should fail")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, componentNames(t, a, "shared")); diff != "" {
		t.Errorf("failed batch left changes (-want +got):\n%s", diff)
	}
}

// Closing a view kills the edits it holds, including ones other views
// share; there is no reference counting.
func TestCloseEditorKillsSharedEdits(t *testing.T) {
	a := newTestApp(t, nil)
	ed1, ed2 := twoViews(t, a)

	if err := ed1.AddComponent("shared", "a", "Label"); err != nil {
		t.Fatal(err)
	}
	if err := ed1.AddComponent("outer1", "own", "Label"); err != nil {
		t.Fatal(err)
	}
	if err := ed1.Undo(); err != nil {
		t.Fatal(err)
	}
	if !ed1.CanUndo() {
		t.Fatal("shared edit should be undoable before the other view closes")
	}

	if err := ed2.Close(); err != nil {
		t.Fatal(err)
	}

	if ed1.CanUndo() {
		t.Error("shared edit is still undoable after the other view closed")
	}
	if err := ed1.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Errorf("Undo err = %v, want ErrNothingToUndo", err)
	}
	if !ed1.CanRedo() {
		t.Error("unshared edit should stay redoable")
	}
}
