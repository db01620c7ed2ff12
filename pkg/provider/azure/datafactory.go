// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/datafactory/armdatafactory/v9"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

// Data factory properties understood by Create and Update.
const (
	PropertyIdentity            = "identity"
	PropertyPublicNetworkAccess = "publicNetworkAccess"
)

// DataFactory is the Azure Data Factory implementation of provider.DataProcessingResource.
// Jobs are Data Factory pipelines; job runs are pipeline runs.
type DataFactory struct {
	*provider.Base

	factories      factoriesAPI
	pipelines      pipelinesAPI
	pipelineRuns   pipelineRunsAPI
	resourceGroups resourceGroupsAPI
	logger         zerolog.Logger
}

var (
	_ provider.DataProcessingResource = (*DataFactory)(nil)
	_ provider.Lister                 = (*DataFactory)(nil)
)

// NewDataFactory creates a Data Factory adapter for the factory called name in
// cfg.ResourceGroup. Credentials are discovered from the environment.
func NewDataFactory(name string, cfg *config.Config, opts ...Option) (*DataFactory, error) {
	o := newOptions(opts)
	d := &DataFactory{
		Base:           provider.NewBase(name, cfg),
		factories:      o.factories,
		pipelines:      o.pipelines,
		pipelineRuns:   o.pipelineRuns,
		resourceGroups: o.resourceGroups,
		logger:         o.resolveLogger("azure-datafactory"),
	}

	if err := d.Config().Validate(); err != nil {
		return nil, fail(d.logger, opInitializeClient, err)
	}

	if d.factories == nil || d.pipelines == nil || d.pipelineRuns == nil || d.resourceGroups == nil {
		c, err := o.azureClient(d.Config())
		if err != nil {
			return nil, fail(d.logger, opInitializeClient, err)
		}
		if d.factories == nil {
			d.factories = &factoriesClientWrapper{client: c.FactoriesClient}
		}
		if d.pipelines == nil {
			d.pipelines = &pipelinesClientWrapper{client: c.PipelinesClient}
		}
		if d.pipelineRuns == nil {
			d.pipelineRuns = &pipelineRunsClientWrapper{client: c.PipelineRunsClient}
		}
		if d.resourceGroups == nil {
			d.resourceGroups = &resourceGroupsClientWrapper{client: c.ResourceGroupsClient}
		}
	}

	return d, nil
}

// Create provisions the data factory in the configured region and returns its ARM ID.
func (d *DataFactory) Create(ctx context.Context, opts provider.CreateOptions) (string, error) {
	cfg := d.Config()
	log := operationLogger(d.logger, opCreate, d.Name())

	if opts.EnsureResourceGroup {
		if err := ensureResourceGroup(ctx, d.resourceGroups, cfg, log); err != nil {
			return "", fail(log, opCreate, err)
		}
	}

	factory := armdatafactory.Factory{
		Location: to.Ptr(cfg.Region),
		Tags:     toAzureTags(opts.Tags),
	}
	if err := applyFactoryProperties(&factory, opts.Properties); err != nil {
		return "", fail(log, opCreate, err)
	}

	result, err := d.factories.CreateOrUpdate(ctx, cfg.ResourceGroup, d.Name(), factory)
	if err != nil {
		return "", fail(log, opCreate, err)
	}
	if result.ID == nil || *result.ID == "" {
		return "", fail(log, opCreate, errors.New("response did not include a resource id"))
	}

	d.SetResourceID(*result.ID)
	log.Info().Str("resourceId", *result.ID).Msg("created data factory")
	return *result.ID, nil
}

// Update reads the factory, applies the changed attributes and writes it back.
func (d *DataFactory) Update(ctx context.Context, opts provider.UpdateOptions) error {
	cfg := d.Config()
	log := operationLogger(d.logger, opUpdate, d.Name())

	factory, err := d.factories.Get(ctx, cfg.ResourceGroup, d.Name())
	if err != nil {
		return fail(log, opUpdate, err)
	}

	if opts.Tags != nil {
		factory.Tags = toAzureTags(opts.Tags)
	}
	if err := applyFactoryProperties(&factory, opts.Properties); err != nil {
		return fail(log, opUpdate, err)
	}

	if _, err := d.factories.CreateOrUpdate(ctx, cfg.ResourceGroup, d.Name(), factory); err != nil {
		return fail(log, opUpdate, err)
	}

	log.Info().Str("resourceId", d.ResourceID()).Msg("updated data factory")
	return nil
}

// Delete removes the factory and clears the resource ID.
func (d *DataFactory) Delete(ctx context.Context) error {
	cfg := d.Config()
	log := operationLogger(d.logger, opDelete, d.Name())

	if err := d.factories.Delete(ctx, cfg.ResourceGroup, d.Name()); err != nil {
		return fail(log, opDelete, err)
	}

	log.Info().Str("resourceId", d.ResourceID()).Msg("deleted data factory")
	d.ClearResourceID()
	return nil
}

// GetStatus returns a snapshot of the factory.
func (d *DataFactory) GetStatus(ctx context.Context) (provider.Status, error) {
	cfg := d.Config()
	log := operationLogger(d.logger, opGetStatus, d.Name())

	factory, err := d.factories.Get(ctx, cfg.ResourceGroup, d.Name())
	if err != nil {
		return nil, fail(log, opGetStatus, err)
	}
	return factoryStatus(factory), nil
}

// List returns the ARM IDs of all factories in the configured resource group.
func (d *DataFactory) List(ctx context.Context) ([]string, error) {
	log := operationLogger(d.logger, opList, d.Name())

	factories, err := d.factories.List(ctx, d.Config().ResourceGroup)
	if err != nil {
		return nil, fail(log, opList, err)
	}

	ids := make([]string, 0, len(factories))
	for _, f := range factories {
		if f == nil || f.ID == nil {
			continue
		}
		ids = append(ids, *f.ID)
	}
	log.Debug().Int("count", len(ids)).Msg("listed data factories")
	return ids, nil
}

// RunJob starts a run of the pipeline jobName and returns the run ID.
func (d *DataFactory) RunJob(ctx context.Context, jobName string, parameters map[string]any) (string, error) {
	cfg := d.Config()
	log := operationLogger(d.logger, opRunJob, d.Name())

	if parameters == nil {
		parameters = map[string]any{}
	}

	runID, err := d.pipelines.CreateRun(ctx, cfg.ResourceGroup, d.Name(), jobName, parameters)
	if err != nil {
		return "", fail(log, opRunJob, err)
	}
	if runID == "" {
		return "", fail(log, opRunJob, fmt.Errorf("pipeline %s: response did not include a run id", jobName))
	}

	log.Info().Str("pipeline", jobName).Str("runId", runID).Msg("started pipeline run")
	return runID, nil
}

// GetJobStatus returns a snapshot of a pipeline run.
func (d *DataFactory) GetJobStatus(ctx context.Context, runID string) (provider.Status, error) {
	cfg := d.Config()
	log := operationLogger(d.logger, opGetJobStatus, d.Name())

	run, err := d.pipelineRuns.Get(ctx, cfg.ResourceGroup, d.Name(), runID)
	if err != nil {
		return nil, fail(log, opGetJobStatus, err)
	}
	return pipelineRunStatus(run), nil
}

// CancelJob cancels a pipeline run. With recursive set, runs started by the run are cancelled too.
func (d *DataFactory) CancelJob(ctx context.Context, runID string, recursive bool) error {
	cfg := d.Config()
	log := operationLogger(d.logger, opCancelJob, d.Name())

	if err := d.pipelineRuns.Cancel(ctx, cfg.ResourceGroup, d.Name(), runID, recursive); err != nil {
		return fail(log, opCancelJob, err)
	}

	log.Info().Str("runId", runID).Bool("recursive", recursive).Msg("cancelled pipeline run")
	return nil
}

// CreatePipeline creates or replaces a pipeline and returns its ARM ID.
//
// definition is the pipeline "properties" object in Data Factory JSON form, e.g.
// {"activities": [...], "parameters": {...}}. Missing activities and parameters default to empty.
func (d *DataFactory) CreatePipeline(ctx context.Context, pipelineName string, definition map[string]any) (string, error) {
	cfg := d.Config()
	log := operationLogger(d.logger, opCreatePipeline, d.Name())

	pipeline, err := decodePipeline(definition)
	if err != nil {
		return "", fail(log, opCreatePipeline, err)
	}

	result, err := d.pipelines.CreateOrUpdate(ctx, cfg.ResourceGroup, d.Name(), pipelineName, pipeline)
	if err != nil {
		return "", fail(log, opCreatePipeline, err)
	}
	if result.ID == nil {
		return "", fail(log, opCreatePipeline, errors.New("response did not include a pipeline id"))
	}

	log.Info().Str("pipeline", pipelineName).Str("pipelineId", *result.ID).Msg("created pipeline")
	return *result.ID, nil
}

// decodePipeline builds a PipelineResource through the SDK's JSON model so that
// polymorphic activities are resolved by their "type" discriminator.
func decodePipeline(definition map[string]any) (armdatafactory.PipelineResource, error) {
	properties := make(map[string]any, len(definition)+2)
	for k, v := range definition {
		properties[k] = v
	}
	if _, ok := properties["activities"]; !ok {
		properties["activities"] = []any{}
	}
	if _, ok := properties["parameters"]; !ok {
		properties["parameters"] = map[string]any{}
	}

	body, err := json.Marshal(map[string]any{"properties": properties})
	if err != nil {
		return armdatafactory.PipelineResource{}, fmt.Errorf("invalid pipeline definition: %w", err)
	}

	var pipeline armdatafactory.PipelineResource
	if err := json.Unmarshal(body, &pipeline); err != nil {
		return armdatafactory.PipelineResource{}, fmt.Errorf("invalid pipeline definition: %w", err)
	}
	return pipeline, nil
}

// applyFactoryProperties sets the supported adapter properties on a factory.
func applyFactoryProperties(factory *armdatafactory.Factory, props map[string]any) error {
	if v, ok := props[PropertyIdentity]; ok {
		identity, _ := v.(string)
		switch identity {
		case string(armdatafactory.FactoryIdentityTypeSystemAssigned):
			factory.Identity = &armdatafactory.FactoryIdentity{
				Type: to.Ptr(armdatafactory.FactoryIdentityTypeSystemAssigned),
			}
		default:
			return fmt.Errorf("unsupported %s %v", PropertyIdentity, v)
		}
	}

	if v, ok := props[PropertyPublicNetworkAccess]; ok {
		access, _ := v.(string)
		switch armdatafactory.PublicNetworkAccess(access) {
		case armdatafactory.PublicNetworkAccessEnabled, armdatafactory.PublicNetworkAccessDisabled:
			if factory.Properties == nil {
				factory.Properties = &armdatafactory.FactoryProperties{}
			}
			factory.Properties.PublicNetworkAccess = to.Ptr(armdatafactory.PublicNetworkAccess(access))
		default:
			return fmt.Errorf("unsupported %s %v", PropertyPublicNetworkAccess, v)
		}
	}
	return nil
}

func factoryStatus(f armdatafactory.Factory) provider.Status {
	status := provider.Status{
		provider.StatusID:                deref(f.ID),
		provider.StatusName:              deref(f.Name),
		provider.StatusType:              deref(f.Type),
		provider.StatusLocation:          deref(f.Location),
		provider.StatusProvisioningState: nil,
		provider.StatusCreatedTime:       nil,
		provider.StatusTags:              fromAzureTags(f.Tags),
	}
	if f.Properties != nil {
		status[provider.StatusProvisioningState] = deref(f.Properties.ProvisioningState)
		status[provider.StatusCreatedTime] = formatTime(f.Properties.CreateTime)
		status["version"] = deref(f.Properties.Version)
		if f.Properties.PublicNetworkAccess != nil {
			status["public_network_access"] = string(*f.Properties.PublicNetworkAccess)
		}
	}
	return status
}

func pipelineRunStatus(run armdatafactory.PipelineRun) provider.Status {
	parameters := make(map[string]string, len(run.Parameters))
	for k, v := range run.Parameters {
		if v != nil {
			parameters[k] = *v
		}
	}

	return provider.Status{
		provider.JobRunID:        deref(run.RunID),
		provider.JobPipelineName: deref(run.PipelineName),
		provider.JobStatus:       deref(run.Status),
		provider.JobStartTime:    formatTime(run.RunStart),
		provider.JobEndTime:      formatTime(run.RunEnd),
		provider.JobDurationInMs: deref(run.DurationInMs),
		provider.JobParameters:   parameters,
		provider.JobMessage:      deref(run.Message),
		provider.JobLastUpdated:  formatTime(run.LastUpdated),
	}
}
