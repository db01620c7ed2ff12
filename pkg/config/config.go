// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/platform-engineering-labs/formae/pkg/model"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "eastus"

// Setting keys understood by FromSettings and Get.
const (
	KeySubscriptionID = "subscription_id"
	KeyResourceGroup  = "resource_group"
	KeyRegion         = "region"
)

// Config holds provider settings for a single adapter instance.
// A Config is never mutated after construction; the With* helpers return copies.
type Config struct {
	SubscriptionId string
	ResourceGroup  string
	Region         string

	settings map[string]string
}

// FromTarget extracts provider configuration from a formae Target.
func FromTarget(target *model.Target) *Config {
	if target == nil || target.Config == nil {
		return FromSettings(nil)
	}

	return FromTargetConfig(target.Config)
}

// FromTargetConfig extracts provider configuration from target config JSON.
// Both the formae casing (SubscriptionId) and the settings keys (subscription_id) are accepted.
func FromTargetConfig(targetConfig json.RawMessage) *Config {
	if targetConfig == nil {
		return FromSettings(nil)
	}

	var raw map[string]any
	if err := json.Unmarshal(targetConfig, &raw); err != nil {
		return FromSettings(nil)
	}

	settings := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			settings[k] = s
		}
	}

	aliases := map[string]string{
		"SubscriptionId": KeySubscriptionID,
		"ResourceGroup":  KeyResourceGroup,
		"Region":         KeyRegion,
		"Location":       KeyRegion,
	}
	for alias, key := range aliases {
		if v, ok := settings[alias]; ok && settings[key] == "" {
			settings[key] = v
		}
	}

	return FromSettings(settings)
}

// FromSettings builds a Config from a flat settings mapping.
func FromSettings(settings map[string]string) *Config {
	copied := maps.Clone(settings)
	if copied == nil {
		copied = map[string]string{}
	}

	region := copied[KeyRegion]
	if region == "" {
		region = DefaultRegion
	}

	return &Config{
		SubscriptionId: copied[KeySubscriptionID],
		ResourceGroup:  copied[KeyResourceGroup],
		Region:         region,
		settings:       copied,
	}
}

// Get returns a raw setting and whether it was present.
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case KeySubscriptionID:
		return c.SubscriptionId, c.SubscriptionId != ""
	case KeyResourceGroup:
		return c.ResourceGroup, c.ResourceGroup != ""
	case KeyRegion:
		return c.Region, c.Region != ""
	}
	v, ok := c.settings[key]
	return v, ok
}

// GetOr returns a setting or def when it is absent or empty.
func (c *Config) GetOr(key, def string) string {
	if v, ok := c.Get(key); ok && v != "" {
		return v
	}
	return def
}

// WithResourceGroup returns a copy of the config addressing another resource group.
func (c *Config) WithResourceGroup(resourceGroup string) *Config {
	cp := *c
	cp.ResourceGroup = resourceGroup
	cp.settings = maps.Clone(c.settings)
	return &cp
}

// WithRegion returns a copy of the config targeting another region.
func (c *Config) WithRegion(region string) *Config {
	cp := *c
	if region != "" {
		cp.Region = region
	}
	cp.settings = maps.Clone(c.settings)
	return &cp
}

// Validate checks the settings every Azure adapter needs.
func (c *Config) Validate() error {
	if c.SubscriptionId == "" {
		return fmt.Errorf("%s is required", KeySubscriptionID)
	}
	if c.ResourceGroup == "" {
		return fmt.Errorf("%s is required", KeyResourceGroup)
	}
	return nil
}

// ToAzureCredential creates Azure credentials using the default credential chain.
// This uses DefaultAzureCredential which tries multiple authentication methods:
// - Environment variables (AZURE_CLIENT_ID, AZURE_CLIENT_SECRET, AZURE_TENANT_ID)
// - Managed Identity
// - Azure CLI
// - Azure PowerShell
// - etc.
func (c *Config) ToAzureCredential(ctx context.Context) (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}
