// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
	"github.com/platform-engineering-labs/cloudvault/pkg/registry"
)

// Resource types served by this package.
const (
	KindDataFactory = "Azure::DataFactory::Factory"
	KindTableStore  = "Azure::Storage::TableStore"
	KindQueueStore  = "Azure::Storage::QueueStore"
)

func init() {
	registry.Register(KindDataFactory, func(name string, cfg *config.Config) (provider.CloudResource, error) {
		d, err := NewDataFactory(name, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
	registry.Register(KindTableStore, func(name string, cfg *config.Config) (provider.CloudResource, error) {
		t, err := NewTableStore(name, cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	registry.Register(KindQueueStore, func(name string, cfg *config.Config) (provider.CloudResource, error) {
		q, err := NewQueueStore(name, cfg)
		if err != nil {
			return nil, err
		}
		return q, nil
	})
}
