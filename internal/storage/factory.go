// factory.go maps backend names from config (local, s3) to constructors.
// Backends register themselves from init, so importing a backend package is
// what makes it available.
package storage

import (
	"fmt"

	"github.com/freshgreens/ordering-backend/internal/config"
)

// FactoryFunc builds a Storage from the full application config.
type FactoryFunc func(*config.Config) (Storage, error)

var factories = make(map[string]FactoryFunc)

// Register makes a backend constructor available under name.
func Register(name string, factory FactoryFunc) {
	factories[name] = factory
}

// NewStorage builds the backend named by cfg.Storage.DefaultBackend.
func NewStorage(cfg *config.Config) (Storage, error) {
	factory, ok := factories[cfg.Storage.DefaultBackend]
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend: %q (must be 'local' or 's3')", cfg.Storage.DefaultBackend)
	}
	return factory(cfg)
}
