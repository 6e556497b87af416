// Package fallback runs an ordered list of alternative calls until one of
// them succeeds.
package fallback

import (
	"context"
	"errors"
)

var ErrNoStrategies = errors.New("no strategies to try")

// Strategy is one candidate call, e.g. a provider or an endpoint path.
type Strategy[T any] struct {
	Name string
	Call func(ctx context.Context) (T, error)
}

// FailureFunc observes every failed attempt before the next one starts.
type FailureFunc func(name string, err error)

// Run tries each strategy in order and returns the first success together
// with the name of the strategy that produced it. When every strategy fails
// the last error is returned. A cancelled context stops the walk.
func Run[T any](ctx context.Context, strategies []Strategy[T], onFailure FailureFunc) (T, string, error) {
	var zero T
	var lastErr error

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, "", lastErr
			}
			return zero, "", err
		}

		v, err := s.Call(ctx)
		if err == nil {
			return v, s.Name, nil
		}

		lastErr = err
		if onFailure != nil {
			onFailure(s.Name, err)
		}
	}

	if lastErr == nil {
		return zero, "", ErrNoStrategies
	}
	return zero, "", lastErr
}
