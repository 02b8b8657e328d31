// Package logging builds the zap logger shared by the CLI, TUI and server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	// File enables a rotated JSON log at this path.
	File string
	// Console writes to Stderr. The TUI turns this off so log lines do not
	// tear the screen.
	Console bool
	Stderr  io.Writer
}

// New returns a logger teeing to stderr and the optional log file. With
// neither sink enabled it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", opts.Level)
		}
		level = l
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	if opts.Console {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		var enc zapcore.Encoder
		switch opts.Format {
		case "", "console":
			consoleCfg := encCfg
			consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
			enc = zapcore.NewConsoleEncoder(consoleCfg)
		case "json":
			enc = zapcore.NewJSONEncoder(encCfg)
		default:
			return nil, fmt.Errorf("invalid log format %q", opts.Format)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
