// Package logging builds the zap logger shared by the commands.
package logging

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level, format and destinations of the logger.
type Options struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string

	// JSON selects the production encoder; otherwise logs are human-readable.
	JSON bool

	// File, when set, receives a copy of every entry with size-based rotation.
	File string

	// Console is where entries are written. Nil means stderr.
	Console io.Writer
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", opts.Level)
		}
		level = parsed
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	newEncoder := zapcore.NewConsoleEncoder
	if opts.JSON {
		encoderConfig = zap.NewProductionEncoderConfig()
		newEncoder = zapcore.NewJSONEncoder
	}

	var console io.Writer = os.Stderr
	if opts.Console != nil {
		console = opts.Console
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(encoderConfig), zapcore.AddSync(console), level),
	}

	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotated), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
