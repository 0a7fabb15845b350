package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RetryConfig is parsed from env. Zero Attempts retries until ctx ends.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

// Do runs op until it succeeds, the attempts are exhausted or ctx is done.
// Each failed attempt is logged with the operation name.
func Do(ctx context.Context, rc *RetryConfig, operation string, op func() error) error {
	opts := append(rc.ToRetryOptions(),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying operation",
				zap.String("operation", operation),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	return retry.Do(op, opts...)
}
