package live

import (
	"context"

	"github.com/aretw0/lifecycle"
)

// Map projects every value of in through fn. The result closes when in
// closes or ctx ends.
func Map[A, B any](ctx context.Context, in <-chan A, fn func(A) B) <-chan B {
	out := make(chan B)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case v, ok := <-in:
				if !ok {
					return nil
				}
				select {
				case out <- fn(v):
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return out
}

// First returns the first value of in, or ok=false if in closed or ctx ended
// before one arrived.
func First[T any](ctx context.Context, in <-chan T) (v T, ok bool) {
	select {
	case v, ok = <-in:
		return v, ok
	case <-ctx.Done():
		return v, false
	}
}
