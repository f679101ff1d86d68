package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dshills/formedit/internal/config/loader"
)

// Config is the complete formedit configuration.
type Config struct {
	History HistoryConfig
	Logging LoggingConfig
	Script  ScriptConfig
}

// HistoryConfig configures editor undo histories.
type HistoryConfig struct {
	// Capacity is the maximum number of entries per history.
	Capacity int
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string
}

// ScriptConfig configures the Lua runtime.
type ScriptConfig struct {
	// OperationLimit caps the host API calls a single script run may make.
	// Zero disables the limit.
	OperationLimit int

	// Timeout bounds a single script run.
	Timeout time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		History: HistoryConfig{Capacity: 100},
		Logging: LoggingConfig{Level: "info"},
		Script: ScriptConfig{
			OperationLimit: 1_000_000,
			Timeout:          5 * time.Second,
		},
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks every setting.
func (c *Config) Validate() error {
	var errs []error
	if c.History.Capacity <= 0 {
		errs = append(errs, &ValidationError{Path: "history.capacity", Message: "must be positive", Value: c.History.Capacity})
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level})
	}
	if c.Script.OperationLimit < 0 {
		errs = append(errs, &ValidationError{Path: "script.operationLimit", Message: "must not be negative", Value: c.Script.OperationLimit})
	}
	if c.Script.Timeout <= 0 {
		errs = append(errs, &ValidationError{Path: "script.timeout", Message: "must be positive", Value: c.Script.Timeout})
	}
	return errors.Join(errs...)
}

// Load builds a configuration from defaults, the file at path (skipped when
// path is empty or the file doesn't exist) and the environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, loader.NewEnvLoader(loader.DefaultEnvPrefix))
}

// LoadWithEnv is Load with an explicit environment loader.
func LoadWithEnv(path string, env loader.Loader) (*Config, error) {
	merged := make(map[string]any)

	if path != "" {
		fl, err := loader.ForPath(path)
		if err != nil {
			return nil, err
		}
		data, err := fl.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	if env != nil {
		data, err := env.Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	return FromMap(merged)
}

// FromMap applies a settings tree on top of the defaults and validates
// the result.
func FromMap(m map[string]any) (*Config, error) {
	c := Default()
	if err := c.apply(m); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) apply(m map[string]any) error {
	var errs []error
	if v, ok := getPath(m, "history.capacity"); ok {
		n, err := toInt("history.capacity", v)
		errs = append(errs, err)
		c.History.Capacity = n
	}
	if v, ok := getPath(m, "logging.level"); ok {
		s, err := toString("logging.level", v)
		errs = append(errs, err)
		c.Logging.Level = s
	}
	if v, ok := getPath(m, "script.operationLimit"); ok {
		n, err := toInt("script.operationLimit", v)
		errs = append(errs, err)
		c.Script.OperationLimit = n
	}
	if v, ok := getPath(m, "script.timeout"); ok {
		d, err := toDuration("script.timeout", v)
		errs = append(errs, err)
		c.Script.Timeout = d
	}
	return errors.Join(errs...)
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, part := range splitPath(path) {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

func toInt(path string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

func toString(path string, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
}

// toDuration accepts a duration value, a duration string, or a number of
// milliseconds.
func toDuration(path string, v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", d)}
		}
		return parsed, nil
	}
	ms, err := toInt(path, v)
	if err != nil {
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
