package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"` // "json" or "console"
	OutputPaths []string `yaml:"output_paths"`
}

func NewLogger(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	// Unknown levels fall back to info
	l, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		l = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(l)

	if opts.Encoding == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if len(opts.OutputPaths) > 0 {
		config.OutputPaths = opts.OutputPaths
	}

	return config.Build()
}
