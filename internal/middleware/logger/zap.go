package logger

import (
	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap.Logger. Development config for now;
// swap to zap.NewProduction() when running behind a log collector.
func NewLogger() (*zap.Logger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger, nil
}
