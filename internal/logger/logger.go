// internal/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap.Logger with wallet-service helpers.
type Logger struct {
	*zap.Logger
	config *Config
}

// New creates a logger writing console output plus a rotated JSON log file.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logRotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)

	var level zapcore.Level
	if cfg.Development {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(logRotator), level),
	)

	return &Logger{
		Logger: zap.New(core,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
			zap.AddCallerSkip(1),
		),
		config: cfg,
	}, nil
}

// NewNop returns a logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithComponent adds a component tag to the logger.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With(zap.String("component", component)), config: l.config}
}

// WithWallet adds wallet context to the logger.
func (l *Logger) WithWallet(wallet string) *Logger {
	return &Logger{Logger: l.With(zap.String("wallet", wallet)), config: l.config}
}

// WithOperation creates a logger for one operation with a correlation id.
func (l *Logger) WithOperation(operation string) *Logger {
	return &Logger{
		Logger: l.With(
			zap.String("operation", operation),
			zap.String("correlation_id", uuid.New().String()),
			zap.Time("start_time", time.Now().UTC()),
		),
		config: l.config,
	}
}

// LogError logs an error with additional context.
func (l *Logger) LogError(msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.Error(msg, fields...)
}

// Sync flushes buffered entries, ignoring the usual stdout sync noise.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if err != nil && (err.Error() == "sync /dev/stdout: invalid argument" ||
		err.Error() == "sync /dev/stderr: inappropriate ioctl for device") {
		return nil
	}
	return err
}
