package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger shared by the CLI and the directory server.
type Logger struct {
	Logger *zap.Logger
}

var (
	ProductionMode  = "production"
	DevelopmentMode = "development"
)

// New builds a JSON (production) or coloured console (development) logger.
// level overrides the mode's default when non-empty ("debug", "warn", ...).
func New(mode, level string) (*Logger, error) {
	var config zap.Config
	if mode == ProductionMode {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		config.Level = lvl
	}
	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: zapLogger}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger { return &Logger{Logger: zap.NewNop()} }

type ctxKey string

var RequestIDKey ctxKey = "request_id"
var DeviceIDKey ctxKey = "device_id"

// WithRequestID stores id in ctx for later log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithDeviceID stores the local device id in ctx for later log lines.
func WithDeviceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, DeviceIDKey, id)
}

// With returns a zap logger carrying the request and device ids found in ctx.
func (l *Logger) With(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	if ctx != nil {
		if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
			fields = append(fields, zap.String(string(RequestIDKey), requestID))
		}
		if deviceID, ok := ctx.Value(DeviceIDKey).(string); ok {
			fields = append(fields, zap.String(string(DeviceIDKey), deviceID))
		}
	}
	return l.Logger.With(fields...)
}

// Sync flushes buffered entries; errors from syncing stderr are ignored.
func (l *Logger) Sync() { _ = l.Logger.Sync() }
