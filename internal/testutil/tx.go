package testutil

import (
	"context"

	"github.com/shiftledger/shiftledger/internal/postgres"
)

type passthroughTxRunner struct{}

// NewPassthroughTxRunner returns a TxRunner that runs the function directly.
// The in-memory stores have no transactional semantics to compose with.
func NewPassthroughTxRunner() postgres.TxRunner {
	return passthroughTxRunner{}
}

func (passthroughTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
