// Package logging builds golog logger handles for injection into ragvec
// components. There is no package-level logger and no init-time side
// effects: callers construct a handle once at process start and pass it to
// whatever needs one.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kataras/golog"
)

// RotationPolicy configures the optional file output. A new file is opened
// per calendar day and files older than MaxAgeDays are pruned when the
// logger is constructed.
type RotationPolicy struct {
	// Directory to write log files into. Created if missing.
	Directory string

	// Prefix of the log file name; the date and ".log" are appended.
	// Default: "ragvec".
	Prefix string

	// MaxAgeDays is how many days of files to keep. 0 keeps everything.
	MaxAgeDays int
}

// Config controls a logger handle's behavior.
type Config struct {
	// Level is one of golog's level names: "debug", "info", "warn",
	// "error", "fatal", "disable". Default: "info".
	Level string

	// TimeFormat for log lines. Default: "2006/01/02 15:04".
	TimeFormat string

	// Output receives log lines. Default: os.Stdout.
	Output io.Writer

	// Rotation, if set, adds a rotating file output alongside Output.
	Rotation *RotationPolicy
}

// New creates a logger handle from the config. The returned logger is
// independent of golog's package-level default.
func New(cfg Config) (*golog.Logger, error) {
	logger := golog.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger.SetLevel(level)

	if cfg.TimeFormat != "" {
		logger.SetTimeFormat(cfg.TimeFormat)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	if cfg.Rotation != nil {
		file, err := openRotatingFile(cfg.Rotation)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.AddOutput(file)
	}

	return logger, nil
}

// Nop returns a logger that discards everything. Components take this as
// their default so that logging is always explicit opt-in.
func Nop() *golog.Logger {
	logger := golog.New()
	logger.SetLevel("disable")
	logger.SetOutput(io.Discard)
	return logger
}

func openRotatingFile(policy *RotationPolicy) (*os.File, error) {
	prefix := policy.Prefix
	if prefix == "" {
		prefix = "ragvec"
	}

	if err := os.MkdirAll(policy.Directory, 0o755); err != nil {
		return nil, err
	}

	if policy.MaxAgeDays > 0 {
		pruneOldFiles(policy.Directory, prefix, policy.MaxAgeDays)
	}

	name := fmt.Sprintf("%s_%s.log", prefix, time.Now().Format("2006-01-02"))
	path := filepath.Join(policy.Directory, name)
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// pruneOldFiles removes log files past the retention window. Best effort:
// unreadable entries are skipped.
func pruneOldFiles(dir, prefix string, maxAgeDays int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix+"_") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
