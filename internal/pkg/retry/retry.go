package retry

import (
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 5
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

// RetryConfig configures the startup bootstrap retries (collection and
// bucket creation). Ingestion and query calls are deliberately retry-free.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"5"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
