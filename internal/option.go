package internal

import "github.com/starford/taxon/internal/catalog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	store  catalog.Store
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStore overrides the store selected by the configuration. The caller
// keeps ownership and closes it.
func WithStore(s catalog.Store) Option {
	return func(a *application) {
		a.store = s
	}
}
