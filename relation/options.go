package relation

import "go.uber.org/zap"

type settings struct {
	logger *zap.Logger
}

// Option configures a Proxy or Collection
type Option func(*settings)

// WithLogger sets the logger used for fetch diagnostics. Defaults to a nop
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
