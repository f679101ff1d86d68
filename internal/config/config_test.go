package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/formedit/internal/config/loader"
)

type mapLoader map[string]any

func (m mapLoader) Load() (map[string]any, error) { return m, nil }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	tests := []struct {
		name string
		path string
		env  map[string]any
		want *Config
	}{
		{
			name: "defaults only",
			want: Default(),
		},
		{
			name: "toml file",
			path: writeFile(t, "formedit.toml", "[history]\ncapacity = 10\n[script]\ntimeout = \"1s\"\n"),
			want: &Config{
				History: HistoryConfig{Capacity: 10},
				Logging: LoggingConfig{Level: "info"},
				Script:  ScriptConfig{OperationLimit: 1_000_000, Timeout: time.Second},
			},
		},
		{
			name: "yaml file with env override",
			path: writeFile(t, "formedit.yaml", "history:\n  capacity: 10\nlogging:\n  level: warn\n"),
			env: map[string]any{
				"history": map[string]any{"capacity": int64(3)},
				"script":  map[string]any{"operationLimit": int64(0)},
			},
			want: &Config{
				History: HistoryConfig{Capacity: 3},
				Logging: LoggingConfig{Level: "warn"},
				Script:  ScriptConfig{OperationLimit: 0, Timeout: 5 * time.Second},
			},
		},
		{
			name: "missing file falls back to defaults",
			path: filepath.Join(t.TempDir(), "absent.toml"),
			want: Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadWithEnv(tt.path, mapLoader(tt.env))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FORMEDIT_CAPACITY", "12")
	t.Setenv("FORMEDIT_SCRIPT_TIMEOUT", "750ms")

	got, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got.History.Capacity != 12 {
		t.Errorf("Capacity = %d, want 12", got.History.Capacity)
	}
	if got.Script.Timeout != 750*time.Millisecond {
		t.Errorf("Timeout = %v, want 750ms", got.Script.Timeout)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		target error
	}{
		{"unsupported extension", "formedit.json", loader.ErrUnsupportedFormat},
		{"wrong type", writeFile(t, "bad.toml", "[history]\ncapacity = \"lots\"\n"), ErrTypeMismatch},
		{"out of range", writeFile(t, "zero.toml", "[history]\ncapacity = 0\n"), ErrValidationFailed},
		{"unknown level", writeFile(t, "lvl.yaml", "logging:\n  level: loud\n"), ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithEnv(tt.path, nil)
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}

	_, err := LoadWithEnv(writeFile(t, "broken.toml", "[history\n"), nil)
	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("err = %v, want *loader.ParseError", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	c := &Config{
		History: HistoryConfig{Capacity: -1},
		Logging: LoggingConfig{Level: "verbose"},
		Script:  ScriptConfig{OperationLimit: -5, Timeout: 0},
	}
	err := c.Validate()

	var paths []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var verr *ValidationError
		if errors.As(e, &verr) {
			paths = append(paths, verr.Path)
		}
	}
	want := []string{"history.capacity", "logging.level", "script.operationLimit", "script.timeout"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("validation paths mismatch (-want +got):\n%s", diff)
	}
}

func TestToDuration(t *testing.T) {
	tests := []struct {
		in      any
		want    time.Duration
		wantErr bool
	}{
		{2 * time.Second, 2 * time.Second, false},
		{"150ms", 150 * time.Millisecond, false},
		{int64(300), 300 * time.Millisecond, false},
		{"soon", 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		got, err := toDuration("script.timeout", tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("toDuration(%v) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("toDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
