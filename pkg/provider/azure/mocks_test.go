// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/datafactory/armdatafactory/v9"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
)

type mockFactoriesAPI struct {
	createOrUpdateFunc func(ctx context.Context, resourceGroup, factoryName string, factory armdatafactory.Factory) (armdatafactory.Factory, error)
	getFunc            func(ctx context.Context, resourceGroup, factoryName string) (armdatafactory.Factory, error)
	deleteFunc         func(ctx context.Context, resourceGroup, factoryName string) error
	listFunc           func(ctx context.Context, resourceGroup string) ([]*armdatafactory.Factory, error)
}

func (m *mockFactoriesAPI) CreateOrUpdate(ctx context.Context, resourceGroup, factoryName string, factory armdatafactory.Factory) (armdatafactory.Factory, error) {
	return m.createOrUpdateFunc(ctx, resourceGroup, factoryName, factory)
}

func (m *mockFactoriesAPI) Get(ctx context.Context, resourceGroup, factoryName string) (armdatafactory.Factory, error) {
	return m.getFunc(ctx, resourceGroup, factoryName)
}

func (m *mockFactoriesAPI) Delete(ctx context.Context, resourceGroup, factoryName string) error {
	return m.deleteFunc(ctx, resourceGroup, factoryName)
}

func (m *mockFactoriesAPI) List(ctx context.Context, resourceGroup string) ([]*armdatafactory.Factory, error) {
	return m.listFunc(ctx, resourceGroup)
}

type mockPipelinesAPI struct {
	createOrUpdateFunc func(ctx context.Context, resourceGroup, factoryName, pipelineName string, pipeline armdatafactory.PipelineResource) (armdatafactory.PipelineResource, error)
	createRunFunc      func(ctx context.Context, resourceGroup, factoryName, pipelineName string, parameters map[string]any) (string, error)
}

func (m *mockPipelinesAPI) CreateOrUpdate(ctx context.Context, resourceGroup, factoryName, pipelineName string, pipeline armdatafactory.PipelineResource) (armdatafactory.PipelineResource, error) {
	return m.createOrUpdateFunc(ctx, resourceGroup, factoryName, pipelineName, pipeline)
}

func (m *mockPipelinesAPI) CreateRun(ctx context.Context, resourceGroup, factoryName, pipelineName string, parameters map[string]any) (string, error) {
	return m.createRunFunc(ctx, resourceGroup, factoryName, pipelineName, parameters)
}

type mockPipelineRunsAPI struct {
	getFunc    func(ctx context.Context, resourceGroup, factoryName, runID string) (armdatafactory.PipelineRun, error)
	cancelFunc func(ctx context.Context, resourceGroup, factoryName, runID string, recursive bool) error
}

func (m *mockPipelineRunsAPI) Get(ctx context.Context, resourceGroup, factoryName, runID string) (armdatafactory.PipelineRun, error) {
	return m.getFunc(ctx, resourceGroup, factoryName, runID)
}

func (m *mockPipelineRunsAPI) Cancel(ctx context.Context, resourceGroup, factoryName, runID string, recursive bool) error {
	return m.cancelFunc(ctx, resourceGroup, factoryName, runID, recursive)
}

type mockStorageAccountsAPI struct {
	createFunc func(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountCreateParameters) (armstorage.Account, error)
	updateFunc func(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountUpdateParameters) (armstorage.Account, error)
	deleteFunc func(ctx context.Context, resourceGroup, accountName string) error
	getFunc    func(ctx context.Context, resourceGroup, accountName string) (armstorage.Account, error)
	listFunc   func(ctx context.Context, resourceGroup string) ([]*armstorage.Account, error)
}

func (m *mockStorageAccountsAPI) Create(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountCreateParameters) (armstorage.Account, error) {
	return m.createFunc(ctx, resourceGroup, accountName, params)
}

func (m *mockStorageAccountsAPI) Update(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountUpdateParameters) (armstorage.Account, error) {
	return m.updateFunc(ctx, resourceGroup, accountName, params)
}

func (m *mockStorageAccountsAPI) Delete(ctx context.Context, resourceGroup, accountName string) error {
	return m.deleteFunc(ctx, resourceGroup, accountName)
}

func (m *mockStorageAccountsAPI) Get(ctx context.Context, resourceGroup, accountName string) (armstorage.Account, error) {
	return m.getFunc(ctx, resourceGroup, accountName)
}

func (m *mockStorageAccountsAPI) List(ctx context.Context, resourceGroup string) ([]*armstorage.Account, error) {
	return m.listFunc(ctx, resourceGroup)
}

type mockResourceGroupsAPI struct {
	existsFunc func(ctx context.Context, resourceGroup string) (bool, error)
	createFunc func(ctx context.Context, resourceGroup, location string) error
}

func (m *mockResourceGroupsAPI) Exists(ctx context.Context, resourceGroup string) (bool, error) {
	return m.existsFunc(ctx, resourceGroup)
}

func (m *mockResourceGroupsAPI) Create(ctx context.Context, resourceGroup, location string) error {
	return m.createFunc(ctx, resourceGroup, location)
}

type mockTableServiceAPI struct {
	createTableFunc  func(ctx context.Context, table string) error
	listEntitiesFunc func(ctx context.Context, table, filter string, top int32) ([][]byte, error)
}

func (m *mockTableServiceAPI) CreateTable(ctx context.Context, table string) error {
	return m.createTableFunc(ctx, table)
}

func (m *mockTableServiceAPI) ListEntities(ctx context.Context, table, filter string, top int32) ([][]byte, error) {
	return m.listEntitiesFunc(ctx, table, filter, top)
}

type mockQueueServiceAPI struct {
	createQueueFunc   func(ctx context.Context, queue string) error
	enqueueFunc       func(ctx context.Context, queue, content string) (string, error)
	dequeueFunc       func(ctx context.Context, queue string, maxMessages int32) ([]dequeuedMessage, error)
	deleteMessageFunc func(ctx context.Context, queue, messageID, popReceipt string) error
}

func (m *mockQueueServiceAPI) CreateQueue(ctx context.Context, queue string) error {
	return m.createQueueFunc(ctx, queue)
}

func (m *mockQueueServiceAPI) Enqueue(ctx context.Context, queue, content string) (string, error) {
	return m.enqueueFunc(ctx, queue, content)
}

func (m *mockQueueServiceAPI) Dequeue(ctx context.Context, queue string, maxMessages int32) ([]dequeuedMessage, error) {
	return m.dequeueFunc(ctx, queue, maxMessages)
}

func (m *mockQueueServiceAPI) DeleteMessage(ctx context.Context, queue, messageID, popReceipt string) error {
	return m.deleteMessageFunc(ctx, queue, messageID, popReceipt)
}

func testConfig() *config.Config {
	return config.FromSettings(map[string]string{
		config.KeySubscriptionID: "00000000-0000-0000-0000-000000000000",
		config.KeyResourceGroup:  "cv-rg",
		config.KeyRegion:         "westeurope",
	})
}

// withAPIs injects mocks. Unset fields fall back to a mock that is never expected to be called.
func withAPIs(set func(o *options)) Option {
	return func(o *options) {
		o.logger = new(zerolog.Logger)
		*o.logger = zerolog.Nop()
		o.factories = &mockFactoriesAPI{}
		o.pipelines = &mockPipelinesAPI{}
		o.pipelineRuns = &mockPipelineRunsAPI{}
		o.accounts = &mockStorageAccountsAPI{}
		o.resourceGroups = &mockResourceGroupsAPI{}
		o.tables = &mockTableServiceAPI{}
		o.queues = &mockQueueServiceAPI{}
		o.pollInterval = time.Millisecond
		set(o)
	}
}
