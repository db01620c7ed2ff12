// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package client

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/datafactory/armdatafactory/v9"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
)

// applicationID is sent as telemetry on every request.
const applicationID = "cloudvault"

// Client wraps the Azure SDK clients used by the Azure adapters.
//
// Management-plane clients are created eagerly for the configured subscription.
// Data-plane clients (tables, queues) are addressed per storage account and are
// created on demand through NewTableServiceClient / NewQueueServiceClient.
type Client struct {
	Config                *config.Config
	ResourceGroupsClient  *armresources.ResourceGroupsClient
	StorageAccountsClient *armstorage.AccountsClient
	FactoriesClient       *armdatafactory.FactoriesClient
	PipelinesClient       *armdatafactory.PipelinesClient
	PipelineRunsClient    *armdatafactory.PipelineRunsClient
	credential            azcore.TokenCredential
	clientOptions         *arm.ClientOptions
}

// NewClient creates a new Azure client wrapper
func NewClient(cfg *config.Config) (*Client, error) {
	ctx := context.Background()
	cred, err := cfg.ToAzureCredential(ctx)
	if err != nil {
		return nil, err
	}

	return NewClientWithCredential(cfg, cred)
}

// NewClientWithCredential creates the client wrapper from an existing credential.
func NewClientWithCredential(cfg *config.Config, cred azcore.TokenCredential) (*Client, error) {
	clientOptions := &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
		},
	}

	rgClient, err := armresources.NewResourceGroupsClient(cfg.SubscriptionId, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	storageAccountsClient, err := armstorage.NewAccountsClient(cfg.SubscriptionId, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	factoriesClient, err := armdatafactory.NewFactoriesClient(cfg.SubscriptionId, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	pipelinesClient, err := armdatafactory.NewPipelinesClient(cfg.SubscriptionId, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	pipelineRunsClient, err := armdatafactory.NewPipelineRunsClient(cfg.SubscriptionId, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	return &Client{
		Config:                cfg,
		ResourceGroupsClient:  rgClient,
		StorageAccountsClient: storageAccountsClient,
		FactoriesClient:       factoriesClient,
		PipelinesClient:       pipelinesClient,
		PipelineRunsClient:    pipelineRunsClient,
		credential:            cred,
		clientOptions:         clientOptions,
	}, nil
}

// TableServiceURL returns the table endpoint of a storage account.
func TableServiceURL(accountName string) string {
	return fmt.Sprintf("https://%s.table.core.windows.net/", accountName)
}

// QueueServiceURL returns the queue endpoint of a storage account.
func QueueServiceURL(accountName string) string {
	return fmt.Sprintf("https://%s.queue.core.windows.net/", accountName)
}

// NewTableServiceClient creates a Table storage client for serviceURL.
func (c *Client) NewTableServiceClient(serviceURL string) (*aztables.ServiceClient, error) {
	return aztables.NewServiceClient(serviceURL, c.credential, &aztables.ClientOptions{
		ClientOptions: c.clientOptions.ClientOptions,
	})
}

// NewQueueServiceClient creates a Queue storage client for serviceURL.
func (c *Client) NewQueueServiceClient(serviceURL string) (*azqueue.ServiceClient, error) {
	return azqueue.NewServiceClient(serviceURL, c.credential, &azqueue.ClientOptions{
		ClientOptions: c.clientOptions.ClientOptions,
	})
}
