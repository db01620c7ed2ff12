// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

// Operation names used in ProviderError and log lines.
const (
	opInitializeClient = "initialize client"
	opCreate           = "create resource"
	opUpdate           = "update resource"
	opDelete           = "delete resource"
	opGetStatus        = "get resource status"
	opList             = "list resources"
	opRunJob           = "run job"
	opGetJobStatus     = "get job status"
	opCancelJob        = "cancel job"
	opCreatePipeline   = "create pipeline"
	opExecuteQuery     = "execute query"
	opCreateTable      = "create table"
	opSendMessage      = "send message"
	opReceiveMessages  = "receive messages"
)

// toAzureTags converts a tag map to the Azure SDK format.
// Returns nil if the input map is empty.
func toAzureTags(tags map[string]string) map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	azureTags := make(map[string]*string, len(tags))
	for k, v := range tags {
		val := v
		azureTags[k] = &val
	}
	return azureTags
}

// fromAzureTags converts Azure SDK tags to a plain map, skipping nil values.
func fromAzureTags(azureTags map[string]*string) map[string]string {
	tags := make(map[string]string, len(azureTags))
	for k, v := range azureTags {
		if v != nil {
			tags[k] = *v
		}
	}
	return tags
}

// deref returns *p, or nil when p is nil, so status maps keep their keys.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// formatTime renders an optional timestamp as RFC 3339, or nil.
func formatTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// operationLogger returns a logger tagged with the operation and a fresh correlation id.
func operationLogger(logger zerolog.Logger, op, name string) zerolog.Logger {
	return logger.With().
		Str("operation", op).
		Str("operationId", uuid.NewString()).
		Str("resource", name).
		Logger()
}

// fail logs err and wraps it as a ProviderError.
func fail(log zerolog.Logger, op string, err error) error {
	log.Error().Err(err).Msgf("failed to %s", op)
	return provider.NewProviderError(op, err)
}

// ensureResourceGroup creates the configured resource group in the configured region
// when it does not exist.
func ensureResourceGroup(ctx context.Context, api resourceGroupsAPI, cfg *config.Config, log zerolog.Logger) error {
	if api == nil {
		return fmt.Errorf("resource group client is not configured")
	}
	exists, err := api.Exists(ctx, cfg.ResourceGroup)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := api.Create(ctx, cfg.ResourceGroup, cfg.Region); err != nil {
		return err
	}
	log.Info().Str("resourceGroup", cfg.ResourceGroup).Str("region", cfg.Region).Msg("created resource group")
	return nil
}

var storageAccountNamePattern = regexp.MustCompile(`^[a-z0-9]{3,24}$`)

// validateStorageAccountName checks Azure's storage account naming rules.
func validateStorageAccountName(name string) error {
	if !storageAccountNamePattern.MatchString(name) {
		return fmt.Errorf("invalid storage account name %q: must be 3-24 lowercase letters or digits", name)
	}
	return nil
}

// stringList reads a []string property that may have been decoded from JSON as []any.
func stringList(props map[string]any, key string) ([]string, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, fmt.Errorf("property %s must be a list of names", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("property %s must be a list of names", key)
	}
}
