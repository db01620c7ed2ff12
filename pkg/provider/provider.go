// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package provider defines the resource contract every cloud adapter implements.
//
// A CloudResource covers the common lifecycle (create, update, delete, status).
// DataProcessingResource, AnalyticsResource and MessagingResource extend it with the
// operations of one resource category. Adapters live in sub-packages, one per vendor.
package provider

import (
	"context"
	"time"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
)

// Status keys present in every GetStatus snapshot.
const (
	StatusID                = "id"
	StatusName              = "name"
	StatusType              = "type"
	StatusLocation          = "location"
	StatusProvisioningState = "provisioning_state"
	StatusCreatedTime       = "created_time"
	StatusTags              = "tags"
)

// Job status keys returned by GetJobStatus.
const (
	JobRunID        = "run_id"
	JobPipelineName = "pipeline_name"
	JobStatus       = "status"
	JobStartTime    = "start_time"
	JobEndTime      = "end_time"
	JobDurationInMs = "duration_in_ms"
	JobParameters   = "parameters"
	JobMessage      = "message"
	JobLastUpdated  = "last_updated"
)

// Status is a read-only snapshot returned from status queries.
type Status map[string]any

// CreateOptions carries provider-neutral creation settings.
type CreateOptions struct {
	Tags map[string]string
	// Properties holds adapter-specific settings, e.g. "identity" for a data factory
	// or "queues" for a queue store.
	Properties map[string]any
	// EnsureResourceGroup creates the configured resource group when it does not exist.
	EnsureResourceGroup bool
}

// UpdateOptions carries the attributes to change. Nil Tags leave tags untouched.
type UpdateOptions struct {
	Tags       map[string]string
	Properties map[string]any
}

// CloudResource is the lifecycle contract shared by all adapters.
type CloudResource interface {
	Name() string
	// ResourceID is empty until Create succeeds and again after Delete.
	ResourceID() string
	Config() *config.Config

	Create(ctx context.Context, opts CreateOptions) (string, error)
	Update(ctx context.Context, opts UpdateOptions) error
	Delete(ctx context.Context) error
	GetStatus(ctx context.Context) (Status, error)
}

// DataProcessingResource runs jobs, e.g. Data Factory pipelines or Glue jobs.
type DataProcessingResource interface {
	CloudResource

	RunJob(ctx context.Context, jobName string, parameters map[string]any) (string, error)
	GetJobStatus(ctx context.Context, runID string) (Status, error)
}

// AnalyticsResource executes queries against tabular data.
type AnalyticsResource interface {
	CloudResource

	ExecuteQuery(ctx context.Context, query string, parameters map[string]any) ([]map[string]any, error)
	CreateTable(ctx context.Context, tableName string, schema map[string]string) error
}

// Message is a message received from a queue.
type Message struct {
	ID           string
	Body         string
	InsertedAt   time.Time
	ExpiresAt    time.Time
	DequeueCount int64
}

// MessagingResource sends and receives queue messages.
type MessagingResource interface {
	CloudResource

	// SendMessage sends strings and byte slices verbatim and JSON-encodes anything else.
	SendMessage(ctx context.Context, message any, queueName string) (string, error)
	ReceiveMessages(ctx context.Context, queueName string, maxMessages int, wait time.Duration) ([]Message, error)
}

// Lister is implemented by adapters that can enumerate resources of their kind
// in the configured resource group.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}
