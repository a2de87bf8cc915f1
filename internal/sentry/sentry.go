package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/logger"
)

// Service reports fatal batch errors to Sentry when enabled. Configuration
// errors and invariant violations abort runs and are worth paging on;
// everything else stays in the batch summary.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) (*Service, error) {
	svc := &Service{cfg: cfg, logger: logger}

	if !cfg.Sentry.Enabled || cfg.Sentry.DSN == "" {
		return svc, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return svc, nil
}

// CaptureException forwards an error to Sentry if enabled
func (s *Service) CaptureException(err error) {
	if err == nil || !s.cfg.Sentry.Enabled {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for buffered events to be sent, used on shutdown
func (s *Service) Flush() {
	if !s.cfg.Sentry.Enabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
