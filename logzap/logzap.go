package logzap

import (
	"fmt"
	"strings"

	"github.com/aatuh/ulid-toolkit/ports"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts zap to the ports.Logger interface.
type ZapLogger struct{ s *zap.SugaredLogger }

func New(z *zap.Logger) ports.Logger { return &ZapLogger{s: z.Sugar()} }

// NewNop creates a logger that discards everything.
func NewNop() ports.Logger { return &ZapLogger{s: zap.NewNop().Sugar()} }

// NewCLI creates a console logger on stderr at the given level, keeping
// stdout free for generated identifiers.
func NewCLI(level string) (ports.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return New(z), nil
}

// ParseLevel maps a case-insensitive level name to a zap level. "warning"
// is accepted for warn and an empty name means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn", "warning":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func (l *ZapLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *ZapLogger) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *ZapLogger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *ZapLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
