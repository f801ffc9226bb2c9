package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a no-op until InitLogger runs, so packages and tests can log
// unconditionally.
var Log = zap.NewNop()

// InitLogger builds the process logger. Release mode logs JSON at Info;
// anything else logs coloured console output at Debug.
func InitLogger(mode string) error {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build(zap.Fields(zap.String("service", "euchre")))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Log = l
	zap.ReplaceGlobals(Log)
	return nil
}

func Named(name string) *zap.Logger {
	return Log.Named(name)
}
