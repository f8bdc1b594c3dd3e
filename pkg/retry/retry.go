package retry

import "context"

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries actions under a fixed set of strategies.
type Retrier interface {
	Retry(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier applying strategies to every action. With no
// strategies, actions are retried until they succeed or ctx is done.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(ctx context.Context, action Action) (uint, error) {
	return Retry(ctx, action, r.strategies...)
}

// Retry executes action until it succeeds, a strategy refuses another
// attempt, or ctx is done. It returns the number of attempts made and the
// last error returned by action.
//
// Strategies run in order, so any that induce a delay should be last.
func Retry(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, s := range strategies {
			if !s(ctx, attempts, err) {
				return attempts, err
			}
		}

		if ctx.Err() != nil {
			return attempts, err
		}
	}
}
