package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFilePath is where logs are appended when no file is configured.
const DefaultFilePath = "logs/arsketch.log"

// maxLines bounds the in-memory history shown by the console overlay.
const maxLines = 500

// Logger is a zap logger that also keeps recent lines in memory for on-screen display.
type Logger struct {
	*zap.Logger
	lines *lineBuffer
	level zap.AtomicLevel
}

// Options configures New.
type Options struct {
	// Level is a zap level name ("debug", "info", ...). Empty means info.
	Level string
	// FilePath is appended to; its directory is created. Empty disables the file sink.
	FilePath string
}

// New builds a Logger writing console-encoded lines to FilePath and to the in-memory buffer.
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc := zapcore.NewConsoleEncoder(encCfg)

	lines := &lineBuffer{}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(lines), level)}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(f), level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...)),
		lines:  lines,
		level:  level,
	}, nil
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(lvl zapcore.Level) {
	l.level.SetLevel(lvl)
}

// Lines returns a copy of the most recent log lines, oldest first.
func (l *Logger) Lines() []string {
	return l.lines.snapshot()
}

// lineBuffer is a zapcore.WriteSyncer that keeps the last maxLines lines.
type lineBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *lineBuffer) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, line)
	}
	if over := len(b.lines) - maxLines; over > 0 {
		b.lines = append(b.lines[:0:0], b.lines[over:]...)
	}
	return len(p), nil
}

func (b *lineBuffer) Sync() error { return nil }

func (b *lineBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}
