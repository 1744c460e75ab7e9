// Package logging builds the daemon's zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a sugared logger. Debug mode switches to the development
// encoder with debug-level output; otherwise the production JSON encoder
// at info level is used.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
