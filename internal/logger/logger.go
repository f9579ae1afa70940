package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// Init sets up the console logger. Components receive Log (or a child of
// it) by injection; only the cmd layer touches the package variable.
func Init(debug bool) {
	Log = zap.New(consoleCore(levelFor(debug)))
}

// InitWithFile rebuilds the logger with an additional core appending to a
// dated log file under dir. The dashboard lists and serves these files.
func InitWithFile(debug bool, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("sync_%s.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	level := levelFor(debug)
	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(f),
		level,
	)

	Log = zap.New(zapcore.NewTee(consoleCore(level), fileCore))
	return nil
}

func Sync() {
	_ = Log.Sync()
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func consoleCore(level zapcore.Level) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
