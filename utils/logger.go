package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: human-readable in development,
// JSON in every other environment.
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
