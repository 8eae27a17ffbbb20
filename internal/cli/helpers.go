// Package cli implements the robocoord commands. The cobra layer in
// cmd/robocoord only parses flags and calls into here.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mechadv/robocoord/internal/logging"
	"github.com/mechadv/robocoord/pkg/config"
)

// Options are shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string
	// Sets are "key=value" config overrides, e.g. "rollers.station_debounce=80ms".
	Sets []string

	Out io.Writer
	Err io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) stderr() io.Writer {
	if o.Err == nil {
		return os.Stderr
	}
	return o.Err
}

// LoadConfig reads the config file, applies --set overrides and the log level
// flag, then validates the result.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	overrides, err := ParseSets(opts.Sets)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return cfg, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseSets turns "key=value" pairs into an override map.
func ParseSets(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// createLogger writes to the command's error stream so stdout stays clean for
// status output.
func createLogger(opts Options, cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(opts.stderr(), level), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

func redisPrefix(cfg config.Config) string {
	return strings.TrimSuffix(cfg.Redis.Prefix, ":") + ":"
}
