package logger

import (
	"fmt"
	"log/slog"
	"sort"
)

// Log format constants
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config defines the logging configuration applied by Configure.
// It mirrors config.LoggingSpec to avoid an import cycle.
type Config struct {
	Level        string
	Format       string
	CommonFields map[string]string
}

// Configure rebuilds DefaultLogger from cfg and installs it as the slog default.
func Configure(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	level := slog.LevelInfo
	if cfg.Level != "" {
		level = ParseLevel(cfg.Level)
	}

	keys := make([]string, 0, len(cfg.CommonFields))
	for k := range cfg.CommonFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	commonFields := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		commonFields = append(commonFields, slog.String(k, cfg.CommonFields[k]))
	}

	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	switch cfg.Format {
	case "", FormatText:
		base = slog.NewTextHandler(logOutput, opts)
	case FormatJSON:
		base = slog.NewJSONHandler(logOutput, opts)
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	DefaultLogger = slog.New(NewContextHandler(base, commonFields...))
	slog.SetDefault(DefaultLogger)
	return nil
}
