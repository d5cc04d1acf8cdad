package common

import (
	"path/filepath"
	"strings"

	"github.com/berrythewa/clipdeck/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions adjusts the configured logger from command line flags
type LoggerOptions struct {
	Verbose bool
	Quiet   bool
	// Daemon enables the log file when the config asks for it
	Daemon bool
}

// NewLogger creates a new logger instance
func NewLogger(cfg *config.Config, opts LoggerOptions) (*zap.Logger, error) {
	if opts.Verbose {
		dev := zap.NewDevelopmentConfig()
		dev.OutputPaths = outputPaths(cfg, opts)
		return dev.Build()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	if opts.Quiet && level < zapcore.WarnLevel {
		level = zapcore.WarnLevel
	}

	encoding := "console"
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	if strings.EqualFold(cfg.Log.Format, "json") {
		encoding = "json"
		encoderConfig = zap.NewProductionEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths(cfg, opts),
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func outputPaths(cfg *config.Config, opts LoggerOptions) []string {
	paths := []string{"stderr"}
	if opts.Daemon && cfg.Log.EnableFileLogging && cfg.SystemPaths.LogDir != "" {
		paths = append(paths, filepath.Join(cfg.SystemPaths.LogDir, "clipdeck.log"))
	}
	return paths
}
