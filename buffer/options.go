package buffer

import "log/slog"

type options struct {
	logger *slog.Logger
}

// Option configura o Buffer.
type Option func(*options)

// WithLogger define o logger do worker. Padrão: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
