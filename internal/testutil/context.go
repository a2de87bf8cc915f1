package testutil

import (
	"context"

	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/types"
)

// SetupContext returns a context carrying a test operator identity
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = types.SetUserID(ctx, "test-operator")
	return ctx
}

// GetLogger returns a logger suitable for tests
func GetLogger() *logger.Logger {
	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	return log
}
