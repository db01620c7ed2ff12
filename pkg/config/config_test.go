// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"encoding/json"
	"testing"

	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTargetConfig_FormaeCasing(t *testing.T) {
	cfg := FromTargetConfig(json.RawMessage(`{"SubscriptionId":"sub-1","ResourceGroup":"rg-1","Location":"westus2"}`))

	assert.Equal(t, "sub-1", cfg.SubscriptionId)
	assert.Equal(t, "rg-1", cfg.ResourceGroup)
	assert.Equal(t, "westus2", cfg.Region)
}

func TestFromTargetConfig_SettingsKeysWin(t *testing.T) {
	cfg := FromTargetConfig(json.RawMessage(`{"SubscriptionId":"ignored","subscription_id":"sub-2","storage_sku":"Standard_GRS"}`))

	assert.Equal(t, "sub-2", cfg.SubscriptionId)
	assert.Equal(t, DefaultRegion, cfg.Region)
	v, ok := cfg.Get("storage_sku")
	assert.True(t, ok)
	assert.Equal(t, "Standard_GRS", v)
}

func TestFromTargetConfig_InvalidJSON(t *testing.T) {
	cfg := FromTargetConfig(json.RawMessage(`{not json`))

	require.NotNil(t, cfg)
	assert.Empty(t, cfg.SubscriptionId)
	assert.Equal(t, DefaultRegion, cfg.Region)
}

func TestFromTarget_Nil(t *testing.T) {
	assert.Equal(t, DefaultRegion, FromTarget(nil).Region)
	assert.Equal(t, DefaultRegion, FromTarget(&model.Target{}).Region)
}

func TestFromSettings_IsImmutable(t *testing.T) {
	settings := map[string]string{
		KeySubscriptionID: "sub",
		KeyResourceGroup:  "rg",
		"custom":          "a",
	}
	cfg := FromSettings(settings)
	settings["custom"] = "b"

	assert.Equal(t, "a", cfg.GetOr("custom", ""))

	moved := cfg.WithResourceGroup("other").WithRegion("northeurope")
	assert.Equal(t, "rg", cfg.ResourceGroup)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, "other", moved.ResourceGroup)
	assert.Equal(t, "northeurope", moved.Region)
	assert.Equal(t, "a", moved.GetOr("custom", ""))
}

func TestConfig_GetOr(t *testing.T) {
	cfg := FromSettings(map[string]string{KeyResourceGroup: "rg"})

	assert.Equal(t, "rg", cfg.GetOr(KeyResourceGroup, "x"))
	assert.Equal(t, "x", cfg.GetOr(KeySubscriptionID, "x"))
	assert.Equal(t, "x", cfg.GetOr("missing", "x"))
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, FromSettings(nil).Validate())
	assert.Error(t, FromSettings(map[string]string{KeySubscriptionID: "sub"}).Validate())
	assert.NoError(t, FromSettings(map[string]string{KeySubscriptionID: "sub", KeyResourceGroup: "rg"}).Validate())
}

func TestEnvironmentFromEnv(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	env := EnvironmentFromEnv()
	assert.Equal(t, "dev", env.Env)
	assert.Equal(t, "INFO", env.LogLevel)

	t.Setenv("ENV", "prod")
	t.Setenv("LOG_LEVEL", "DEBUG")
	env = EnvironmentFromEnv()
	assert.Equal(t, "prod", env.Env)
	assert.Equal(t, "DEBUG", env.LogLevel)
}
