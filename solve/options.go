package solve

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/optkit/optkit/backend"
	"github.com/optkit/optkit/logger"
)

// Option defines option for altering the behavior of a solve or a session.
// See the descriptions of functions returning instances of this type for
// implemented options.
type Option func(*config) error

type config struct {
	logger      zerolog.Logger
	messageCB   backend.MessageCallback
	solutionCB  func(*Solution)
	interrupter *backend.Interrupter
}

func newConfig(opts ...Option) (config, error) {
	cfg := config{logger: logger.Logger()}
	for _, option := range opts {
		if err := option(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// WithLogger specifies a zerolog.Logger as the destination for diagnostic
// logs. By default, uses the optkit/logger package logger. zerolog.Nop()
// will disable logging.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *config) error {
		cfg.logger = l
		return nil
	}
}

// WithMessageCallback registers a callback receiving the search-progress
// messages emitted while solving. Messages flow only when the solve
// parameters enable LogSearchProgress. The callback is invoked synchronously
// and must not block indefinitely.
func WithMessageCallback(cb backend.MessageCallback) Option {
	return func(cfg *config) error {
		if cb == nil {
			return errors.New("nil message callback")
		}
		cfg.messageCB = cb
		return nil
	}
}

// WithSolutionCallback registers a callback receiving each intermediate
// feasible solution, postsolved to the original variable space. The callback
// is invoked synchronously from within the search and must not block
// indefinitely.
func WithSolutionCallback(cb func(*Solution)) Option {
	return func(cfg *config) error {
		if cb == nil {
			return errors.New("nil solution callback")
		}
		cfg.solutionCB = cb
		return nil
	}
}

// WithInterrupter attaches a cooperative cancellation flag to the solve.
// Interruption requested before the backend is created yields a NOT_SOLVED
// response without invoking the backend; interruption during the search
// terminates it at the backend's next checkpoint.
func WithInterrupter(i *backend.Interrupter) Option {
	return func(cfg *config) error {
		if i == nil {
			return errors.New("nil interrupter")
		}
		cfg.interrupter = i
		return nil
	}
}
