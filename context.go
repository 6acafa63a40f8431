package pool

import (
	"context"
	"time"

	"github.com/commonpool/pool/errors"
)

// Context is just an alias for the standard implementation.
// We use functions to extract data from them, so we can change the
// implementation later.
type Context = context.Context

type contextKey int // local to the pool module

const (
	contextKeyTime contextKey = iota
)

// WithBlockTime sets the block time for the current invocation. Escrow
// creation records it as an informational timestamp.
func WithBlockTime(ctx Context, t time.Time) Context {
	return context.WithValue(ctx, contextKeyTime, t)
}

// BlockTime returns the block time as declared in the context. An error
// is returned when no time was declared.
func BlockTime(ctx Context) (time.Time, error) {
	val, ok := ctx.Value(contextKeyTime).(time.Time)
	if !ok {
		return time.Time{}, errors.Wrap(errors.ErrState, "block time not present in the context")
	}
	return val, nil
}
