package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"healing-agent/internal/application/port/output"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

// LoggerAdapter implements output.LoggerPort on top of a zap sugared logger.
// Each run gets its own JSON log file under ./log/.
type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	root  *zap.Logger
}

func NewLoggerAdapter(name string) (*LoggerAdapter, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, err
	}

	filename := time.Now().Format("2006-01-02_15-04-05") + "_" + sanitize(name) + ".log"

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr", filepath.Join("log", filename)}
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	root, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return nil, err
	}

	return &LoggerAdapter{
		sugar: root.Sugar(),
		root:  root,
	}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *LoggerAdapter {
	root := zap.NewNop()
	return &LoggerAdapter{sugar: root.Sugar(), root: root}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *LoggerAdapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *LoggerAdapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *LoggerAdapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.With(key, value), root: l.root}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{sugar: l.sugar.With(args...), root: l.root}
}

func (l *LoggerAdapter) Close() error {
	return l.root.Sync()
}

func sanitize(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	s = string(result)
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
