package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of zap.
type ZapLogger struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	level   zap.AtomicLevel
	encoder zapcore.Encoder // nil when wrapping a caller-supplied logger
}

// NewZapLogger creates a JSON logger writing to stderr.
func NewZapLogger() contracts.Logger {
	return newCoreLogger(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(os.Stderr))
}

// NewStandardLogger creates a human-readable console logger writing to stderr.
func NewStandardLogger() contracts.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	return newCoreLogger(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr))
}

// NewWriterLogger creates a console logger writing plain lines to w.
func NewWriterLogger(w io.Writer) contracts.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeCaller = nil
	cfg.CallerKey = ""
	return newCoreLogger(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w))
}

// New wraps an existing zap logger. Level filtering still applies; the
// destination of a wrapped logger cannot be changed.
func New(z *zap.Logger) contracts.Logger {
	return &ZapLogger{
		logger: z.WithOptions(zap.AddCallerSkip(2)),
		level:  zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
}

func newCoreLogger(enc zapcore.Encoder, ws zapcore.WriteSyncer) *ZapLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &ZapLogger{
		logger:  buildLogger(enc, ws, level),
		level:   level,
		encoder: enc,
	}
}

func buildLogger(enc zapcore.Encoder, ws zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	core := zapcore.NewCore(enc.Clone(), ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
}

// Field returns a new instance of Field
func (z *ZapLogger) Field() contracts.Field {
	return &zapField{}
}

// SetLevel sets the minimum level that reaches the output.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination switches output between stderr and an append-only file.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	if z.encoder == nil {
		z.Warn("SetDestination ignored for a wrapped zap logger")
		return
	}

	var ws zapcore.WriteSyncer
	switch dest {
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			z.Error("SetDestination: file destination requires a path")
			return
		}
		sink, _, err := zap.Open(filePath[0])
		if err != nil {
			z.Error("SetDestination: cannot open log file",
				z.Field().String("path", filePath[0]),
				z.Field().Error("error", err))
			return
		}
		ws = sink
	default:
		ws = zapcore.Lock(os.Stderr)
	}

	z.mu.Lock()
	old := z.logger
	z.logger = buildLogger(z.encoder, ws, z.level)
	z.mu.Unlock()
	_ = old.Sync()
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger.Sync()
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if !z.level.Enabled(level) {
		return
	}

	z.mu.RLock()
	l := z.logger
	z.mu.RUnlock()

	zf := toZapFields(fields)
	switch level {
	case zapcore.DebugLevel:
		l.Debug(msg, zf...)
	case zapcore.InfoLevel:
		l.Info(msg, zf...)
	case zapcore.WarnLevel:
		l.Warn(msg, zf...)
	case zapcore.ErrorLevel:
		l.Error(msg, zf...)
	case zapcore.FatalLevel:
		l.Fatal(msg, zf...)
	}
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		f, ok := field.(*zapField)
		if !ok || f.key == "" {
			continue
		}
		if err, isErr := f.value.(error); isErr {
			out = append(out, zap.NamedError(f.key, err))
			continue
		}
		out = append(out, zap.Any(f.key, f.value))
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	key   string
	value interface{}
}

func (f *zapField) Bool(key string, val bool) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int(key string, val int) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Float64(key string, val float64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) String(key string, val string) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Time(key string, val time.Time) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Duration(key string, val time.Duration) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Int64(key string, val int64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Error(key string, val error) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint64(key string, val uint64) contracts.Field {
	return &zapField{key, val}
}

func (f *zapField) Uint8(key string, val uint8) contracts.Field {
	return &zapField{key, val}
}

// Bytes renders the slice as spaced hex, e.g. "90 3C 64".
func (f *zapField) Bytes(key string, val []byte) contracts.Field {
	return &zapField{key, fmt.Sprintf("% X", val)}
}
