package cosmosdb

import "go.uber.org/zap"

// Option configures a Loader
type Option func(*Loader)

// WithClientFactory sets how the Loader opens its CosmosDB client
func WithClientFactory(factory ClientFactory) Option {
	return func(l *Loader) {
		l.clientFactory = factory
	}
}

// WithLogger sets the logger; defaults to a no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
