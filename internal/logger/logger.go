// internal/logger/logger.go
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig – настройки ротируемого лог-файла.
type FileConfig struct {
	Debug      bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Console дублирует вывод в консоль в pretty формате.
	Console bool
}

// NewFileLogger пишет JSON в ротируемый файл и, при Console, красивый вывод в stdout.
// Пустой Path – только консоль.
func NewFileLogger(cfg FileConfig) (*zap.Logger, error) {
	if cfg.Path == "" {
		return CreatePrettyLogger(cfg.Debug)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := levelFor(cfg.Debug)
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level),
	}

	if cfg.Console {
		console := zapcore.NewCore(PrettyEncoder(), zapcore.AddSync(zapcore.Lock(os.Stdout)), level)
		cores = append(cores, &FieldFilterCore{core: console, verbose: cfg.Debug})
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// WithBuffer дублирует логи в кольцевой буфер (панель логов TUI).
func WithBuffer(base *zap.Logger, buffer *LogBuffer, debug bool) (*zap.Logger, error) {
	tui, err := CreateTUILoggerWithBuffer(debug, buffer)
	if err != nil {
		return nil, err
	}
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, tui.Core())
	})), nil
}

// WithOperation добавляет имя операции и id корреляции.
func WithOperation(logger *zap.Logger, operation string) *zap.Logger {
	return logger.With(
		zap.String("operation", operation),
		zap.String("op_id", uuid.NewString()),
	)
}
