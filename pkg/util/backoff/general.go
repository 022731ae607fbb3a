package backoff

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

var MaxRetries uint64 = 5

func RetryGeneral(ctx context.Context, op backoff.Operation) (err error) {
	err = backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(),
			MaxRetries),
		ctx))
	return err
}

// Permanent wraps err so that RetryGeneral stops retrying and returns err.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
