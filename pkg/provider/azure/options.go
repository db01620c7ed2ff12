// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/cloudvault/pkg/client"
	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/logging"
)

// Option configures an adapter.
type Option func(*options)

type options struct {
	logger *zerolog.Logger
	client *client.Client

	factories      factoriesAPI
	pipelines      pipelinesAPI
	pipelineRuns   pipelineRunsAPI
	accounts       storageAccountsAPI
	resourceGroups resourceGroupsAPI
	tables         tableServiceAPI
	queues         queueServiceAPI
	pollInterval   time.Duration
}

// WithLogger sets the adapter logger. The default logger is built from ENV and LOG_LEVEL.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithClient reuses an existing Azure client instead of building one from the config.
func WithClient(c *client.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{pollInterval: time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) resolveLogger(kind string) zerolog.Logger {
	if o.logger != nil {
		return o.logger.With().Str("provider", kind).Logger()
	}
	return logging.FromEnv().With().Str("provider", kind).Logger()
}

// azureClient returns the configured client, building one on first use.
func (o *options) azureClient(cfg *config.Config) (*client.Client, error) {
	if o.client != nil {
		return o.client, nil
	}
	c, err := client.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	o.client = c
	return c, nil
}
