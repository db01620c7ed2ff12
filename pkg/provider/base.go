// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provider

import (
	"sync"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
)

// Base holds the state common to every adapter. Embed a *Base to get Name, ResourceID and Config.
type Base struct {
	name   string
	config *config.Config

	mu         sync.RWMutex
	resourceID string
}

// NewBase returns the shared state for a resource called name.
func NewBase(name string, cfg *config.Config) *Base {
	if cfg == nil {
		cfg = config.FromSettings(nil)
	}
	return &Base{name: name, config: cfg}
}

func (b *Base) Name() string {
	return b.name
}

func (b *Base) Config() *config.Config {
	return b.config
}

func (b *Base) ResourceID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.resourceID
}

// SetResourceID records the provider-assigned ID after a successful create.
func (b *Base) SetResourceID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resourceID = id
}

// ClearResourceID forgets the ID after a successful delete.
func (b *Base) ClearResourceID() {
	b.SetResourceID("")
}
