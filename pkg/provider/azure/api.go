// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/datafactory/armdatafactory/v9"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
)

// The interfaces below are the only surface the adapters use from the Azure SDK.
// Each has a thin wrapper over the generated client; tests substitute their own.

type factoriesAPI interface {
	CreateOrUpdate(ctx context.Context, resourceGroup, factoryName string, factory armdatafactory.Factory) (armdatafactory.Factory, error)
	Get(ctx context.Context, resourceGroup, factoryName string) (armdatafactory.Factory, error)
	Delete(ctx context.Context, resourceGroup, factoryName string) error
	List(ctx context.Context, resourceGroup string) ([]*armdatafactory.Factory, error)
}

type pipelinesAPI interface {
	CreateOrUpdate(ctx context.Context, resourceGroup, factoryName, pipelineName string, pipeline armdatafactory.PipelineResource) (armdatafactory.PipelineResource, error)
	CreateRun(ctx context.Context, resourceGroup, factoryName, pipelineName string, parameters map[string]any) (string, error)
}

type pipelineRunsAPI interface {
	Get(ctx context.Context, resourceGroup, factoryName, runID string) (armdatafactory.PipelineRun, error)
	Cancel(ctx context.Context, resourceGroup, factoryName, runID string, recursive bool) error
}

type storageAccountsAPI interface {
	// Create blocks until the long-running create completes.
	Create(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountCreateParameters) (armstorage.Account, error)
	Update(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountUpdateParameters) (armstorage.Account, error)
	Delete(ctx context.Context, resourceGroup, accountName string) error
	Get(ctx context.Context, resourceGroup, accountName string) (armstorage.Account, error)
	List(ctx context.Context, resourceGroup string) ([]*armstorage.Account, error)
}

type resourceGroupsAPI interface {
	Exists(ctx context.Context, resourceGroup string) (bool, error)
	Create(ctx context.Context, resourceGroup, location string) error
}

type tableServiceAPI interface {
	CreateTable(ctx context.Context, table string) error
	// ListEntities returns at most top entities (all when top <= 0) as raw JSON.
	ListEntities(ctx context.Context, table, filter string, top int32) ([][]byte, error)
}

// dequeuedMessage is the part of a dequeued queue message the adapters use.
type dequeuedMessage struct {
	ID           string
	PopReceipt   string
	Text         string
	InsertedAt   time.Time
	ExpiresAt    time.Time
	DequeueCount int64
}

type queueServiceAPI interface {
	CreateQueue(ctx context.Context, queue string) error
	Enqueue(ctx context.Context, queue, content string) (string, error)
	Dequeue(ctx context.Context, queue string, maxMessages int32) ([]dequeuedMessage, error)
	DeleteMessage(ctx context.Context, queue, messageID, popReceipt string) error
}

// factoriesClientWrapper wraps the Data Factory factories client.
type factoriesClientWrapper struct {
	client *armdatafactory.FactoriesClient
}

func (w *factoriesClientWrapper) CreateOrUpdate(ctx context.Context, resourceGroup, factoryName string, factory armdatafactory.Factory) (armdatafactory.Factory, error) {
	resp, err := w.client.CreateOrUpdate(ctx, resourceGroup, factoryName, factory, nil)
	if err != nil {
		return armdatafactory.Factory{}, err
	}
	return resp.Factory, nil
}

func (w *factoriesClientWrapper) Get(ctx context.Context, resourceGroup, factoryName string) (armdatafactory.Factory, error) {
	resp, err := w.client.Get(ctx, resourceGroup, factoryName, nil)
	if err != nil {
		return armdatafactory.Factory{}, err
	}
	return resp.Factory, nil
}

func (w *factoriesClientWrapper) Delete(ctx context.Context, resourceGroup, factoryName string) error {
	_, err := w.client.Delete(ctx, resourceGroup, factoryName, nil)
	return err
}

func (w *factoriesClientWrapper) List(ctx context.Context, resourceGroup string) ([]*armdatafactory.Factory, error) {
	pager := w.client.NewListByResourceGroupPager(resourceGroup, nil)

	var factories []*armdatafactory.Factory
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		factories = append(factories, page.Value...)
	}
	return factories, nil
}

// pipelinesClientWrapper wraps the Data Factory pipelines client.
type pipelinesClientWrapper struct {
	client *armdatafactory.PipelinesClient
}

func (w *pipelinesClientWrapper) CreateOrUpdate(ctx context.Context, resourceGroup, factoryName, pipelineName string, pipeline armdatafactory.PipelineResource) (armdatafactory.PipelineResource, error) {
	resp, err := w.client.CreateOrUpdate(ctx, resourceGroup, factoryName, pipelineName, pipeline, nil)
	if err != nil {
		return armdatafactory.PipelineResource{}, err
	}
	return resp.PipelineResource, nil
}

func (w *pipelinesClientWrapper) CreateRun(ctx context.Context, resourceGroup, factoryName, pipelineName string, parameters map[string]any) (string, error) {
	resp, err := w.client.CreateRun(ctx, resourceGroup, factoryName, pipelineName, &armdatafactory.PipelinesClientCreateRunOptions{
		Parameters: parameters,
	})
	if err != nil {
		return "", err
	}
	if resp.RunID == nil {
		return "", nil
	}
	return *resp.RunID, nil
}

// pipelineRunsClientWrapper wraps the Data Factory pipeline runs client.
type pipelineRunsClientWrapper struct {
	client *armdatafactory.PipelineRunsClient
}

func (w *pipelineRunsClientWrapper) Get(ctx context.Context, resourceGroup, factoryName, runID string) (armdatafactory.PipelineRun, error) {
	resp, err := w.client.Get(ctx, resourceGroup, factoryName, runID, nil)
	if err != nil {
		return armdatafactory.PipelineRun{}, err
	}
	return resp.PipelineRun, nil
}

func (w *pipelineRunsClientWrapper) Cancel(ctx context.Context, resourceGroup, factoryName, runID string, recursive bool) error {
	_, err := w.client.Cancel(ctx, resourceGroup, factoryName, runID, &armdatafactory.PipelineRunsClientCancelOptions{
		IsRecursive: to.Ptr(recursive),
	})
	return err
}

// storageAccountsClientWrapper wraps the storage accounts client.
type storageAccountsClientWrapper struct {
	client *armstorage.AccountsClient
}

func (w *storageAccountsClientWrapper) Create(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountCreateParameters) (armstorage.Account, error) {
	poller, err := w.client.BeginCreate(ctx, resourceGroup, accountName, params, nil)
	if err != nil {
		return armstorage.Account{}, err
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return armstorage.Account{}, err
	}
	return resp.Account, nil
}

func (w *storageAccountsClientWrapper) Update(ctx context.Context, resourceGroup, accountName string, params armstorage.AccountUpdateParameters) (armstorage.Account, error) {
	resp, err := w.client.Update(ctx, resourceGroup, accountName, params, nil)
	if err != nil {
		return armstorage.Account{}, err
	}
	return resp.Account, nil
}

func (w *storageAccountsClientWrapper) Delete(ctx context.Context, resourceGroup, accountName string) error {
	_, err := w.client.Delete(ctx, resourceGroup, accountName, nil)
	return err
}

func (w *storageAccountsClientWrapper) Get(ctx context.Context, resourceGroup, accountName string) (armstorage.Account, error) {
	resp, err := w.client.GetProperties(ctx, resourceGroup, accountName, nil)
	if err != nil {
		return armstorage.Account{}, err
	}
	return resp.Account, nil
}

func (w *storageAccountsClientWrapper) List(ctx context.Context, resourceGroup string) ([]*armstorage.Account, error) {
	pager := w.client.NewListByResourceGroupPager(resourceGroup, nil)

	var accounts []*armstorage.Account
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, page.Value...)
	}
	return accounts, nil
}

// resourceGroupsClientWrapper wraps the resource groups client.
type resourceGroupsClientWrapper struct {
	client *armresources.ResourceGroupsClient
}

func (w *resourceGroupsClientWrapper) Exists(ctx context.Context, resourceGroup string) (bool, error) {
	resp, err := w.client.CheckExistence(ctx, resourceGroup, nil)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (w *resourceGroupsClientWrapper) Create(ctx context.Context, resourceGroup, location string) error {
	_, err := w.client.CreateOrUpdate(ctx, resourceGroup, armresources.ResourceGroup{
		Location: to.Ptr(location),
	}, nil)
	return err
}

// tableServiceClientWrapper wraps an Azure Table storage service client.
type tableServiceClientWrapper struct {
	client *aztables.ServiceClient
}

func (w *tableServiceClientWrapper) CreateTable(ctx context.Context, table string) error {
	_, err := w.client.CreateTable(ctx, table, nil)
	return err
}

func (w *tableServiceClientWrapper) ListEntities(ctx context.Context, table, filter string, top int32) ([][]byte, error) {
	opts := &aztables.ListEntitiesOptions{}
	if filter != "" {
		opts.Filter = to.Ptr(filter)
	}
	if top > 0 {
		opts.Top = to.Ptr(top)
	}

	pager := w.client.NewClient(table).NewListEntitiesPager(opts)

	var entities [][]byte
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		entities = append(entities, page.Entities...)
		if top > 0 && len(entities) >= int(top) {
			return entities[:top], nil
		}
	}
	return entities, nil
}

// queueServiceClientWrapper wraps an Azure Queue storage service client.
type queueServiceClientWrapper struct {
	client *azqueue.ServiceClient
}

func (w *queueServiceClientWrapper) CreateQueue(ctx context.Context, queue string) error {
	_, err := w.client.CreateQueue(ctx, queue, nil)
	return err
}

func (w *queueServiceClientWrapper) Enqueue(ctx context.Context, queue, content string) (string, error) {
	resp, err := w.client.NewQueueClient(queue).EnqueueMessage(ctx, content, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Messages) == 0 || resp.Messages[0].MessageID == nil {
		return "", errors.New("enqueue response did not include a message id")
	}
	return *resp.Messages[0].MessageID, nil
}

func (w *queueServiceClientWrapper) Dequeue(ctx context.Context, queue string, maxMessages int32) ([]dequeuedMessage, error) {
	resp, err := w.client.NewQueueClient(queue).DequeueMessages(ctx, &azqueue.DequeueMessagesOptions{
		NumberOfMessages: to.Ptr(maxMessages),
	})
	if err != nil {
		return nil, err
	}

	messages := make([]dequeuedMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m == nil || m.MessageID == nil {
			continue
		}
		msg := dequeuedMessage{ID: *m.MessageID}
		if m.PopReceipt != nil {
			msg.PopReceipt = *m.PopReceipt
		}
		if m.MessageText != nil {
			msg.Text = *m.MessageText
		}
		if m.InsertionTime != nil {
			msg.InsertedAt = *m.InsertionTime
		}
		if m.ExpirationTime != nil {
			msg.ExpiresAt = *m.ExpirationTime
		}
		if m.DequeueCount != nil {
			msg.DequeueCount = *m.DequeueCount
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (w *queueServiceClientWrapper) DeleteMessage(ctx context.Context, queue, messageID, popReceipt string) error {
	_, err := w.client.NewQueueClient(queue).DeleteMessage(ctx, messageID, popReceipt, nil)
	return err
}
