// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package registry

import (
	"slices"
	"sync"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

// Factory creates an adapter instance for a named resource.
type Factory func(name string, cfg *config.Config) (provider.CloudResource, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers an adapter factory for a resource kind. Adapters call it from init().
func Register(kind string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = factory
}

// New creates the adapter registered for kind.
// An unknown kind yields a *provider.ProviderNotSupportedError.
func New(kind, name string, cfg *config.Config) (provider.CloudResource, error) {
	mu.RLock()
	factory, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, &provider.ProviderNotSupportedError{Kind: kind}
	}
	return factory(name, cfg)
}

// Has returns true if an adapter is registered for the given kind.
func Has(kind string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
