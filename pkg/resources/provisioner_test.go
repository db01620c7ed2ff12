// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
	"github.com/platform-engineering-labs/cloudvault/pkg/registry"
)

const (
	fakeKind = "Test::Fake::Resource"
	fakeID   = "/subscriptions/00000000-0000-0000-0000-000000000000/resourceGroups/other-rg/providers/Microsoft.Fake/things/thing1"
)

// fakeResource records what the provisioner passed to it.
type fakeResource struct {
	*provider.Base

	createOpts provider.CreateOptions
	updateOpts provider.UpdateOptions
	deleted    bool

	createErr     error
	partialCreate bool
	updateErr     error
	deleteErr     error
	statusErr     error
	listIDs       []string
}

func (f *fakeResource) Create(_ context.Context, opts provider.CreateOptions) (string, error) {
	f.createOpts = opts
	if f.partialCreate {
		f.SetResourceID(fakeID)
	}
	if f.createErr != nil {
		return "", f.createErr
	}
	f.SetResourceID(fakeID)
	return fakeID, nil
}

func (f *fakeResource) Update(_ context.Context, opts provider.UpdateOptions) error {
	f.updateOpts = opts
	return f.updateErr
}

func (f *fakeResource) Delete(context.Context) error {
	f.deleted = true
	return f.deleteErr
}

func (f *fakeResource) GetStatus(context.Context) (provider.Status, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return provider.Status{
		provider.StatusID:                fakeID,
		provider.StatusName:              f.Name(),
		provider.StatusLocation:          f.Config().Region,
		provider.StatusProvisioningState: "Succeeded",
		provider.StatusCreatedTime:       nil,
		provider.StatusTags:              map[string]string{"b": "2", "a": "1"},
	}, nil
}

func (f *fakeResource) List(context.Context) ([]string, error) {
	return f.listIDs, nil
}

// current is the instance handed out by the fake kind's factory.
var current *fakeResource

func init() {
	registry.Register(fakeKind, func(name string, cfg *config.Config) (provider.CloudResource, error) {
		current.Base = provider.NewBase(name, cfg)
		return current, nil
	})
}

func newTestProvisioner(t *testing.T, f *fakeResource) *Provisioner {
	t.Helper()
	current = f
	p, err := NewProvisioner(fakeKind, config.FromSettings(map[string]string{
		config.KeySubscriptionID: "00000000-0000-0000-0000-000000000000",
		config.KeyResourceGroup:  "default-rg",
	}))
	require.NoError(t, err)
	return p
}

func TestNewProvisioner_UnknownKind(t *testing.T) {
	_, err := NewProvisioner("Azure::Compute::VirtualMachine", config.FromSettings(nil))

	var notSupported *provider.ProviderNotSupportedError
	assert.ErrorAs(t, err, &notSupported)
}

func TestProvisioner_Create(t *testing.T) {
	f := &fakeResource{}
	p := newTestProvisioner(t, f)

	result, err := p.Create(context.Background(), &resource.CreateRequest{
		ResourceType: fakeKind,
		Label:        "thing1",
		Properties: json.RawMessage(`{
			"resourceGroupName": "other-rg",
			"location": "northeurope",
			"ensureResourceGroup": true,
			"tables": ["orders"],
			"Tags": [{"Key": "team", "Value": "data"}]
		}`),
	})
	require.NoError(t, err)
	require.NotNil(t, result.ProgressResult)

	assert.Equal(t, resource.OperationCreate, result.ProgressResult.Operation)
	assert.Equal(t, resource.OperationStatusSuccess, result.ProgressResult.OperationStatus)
	assert.Equal(t, fakeID, result.ProgressResult.NativeID)

	assert.Equal(t, "thing1", f.Name())
	assert.Equal(t, "other-rg", f.Config().ResourceGroup)
	assert.Equal(t, "northeurope", f.Config().Region)
	assert.True(t, f.createOpts.EnsureResourceGroup)
	assert.Equal(t, map[string]string{"team": "data"}, f.createOpts.Tags)
	assert.Equal(t, map[string]any{"tables": []any{"orders"}}, f.createOpts.Properties)

	var props map[string]any
	require.NoError(t, json.Unmarshal(result.ProgressResult.ResourceProperties, &props))
	assert.Equal(t, fakeID, props[PropertyID])
	assert.Equal(t, "thing1", props[PropertyName])
	assert.Equal(t, "other-rg", props[PropertyResourceGroupName])
	assert.Equal(t, []any{
		map[string]any{"Key": "a", "Value": "1"},
		map[string]any{"Key": "b", "Value": "2"},
	}, props[PropertyTags])
	assert.Equal(t, map[string]any{provider.StatusProvisioningState: "Succeeded"}, props[PropertyStatus])
}

func TestProvisioner_CreateNameWinsOverLabel(t *testing.T) {
	f := &fakeResource{}
	p := newTestProvisioner(t, f)

	_, err := p.Create(context.Background(), &resource.CreateRequest{
		Label:      "label",
		Properties: json.RawMessage(`{"name":"explicit"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "explicit", f.Name())
	assert.Equal(t, "default-rg", f.Config().ResourceGroup)
}

func TestProvisioner_CreateFailure(t *testing.T) {
	f := &fakeResource{createErr: provider.NewProviderError("create resource", &azcore.ResponseError{StatusCode: http.StatusConflict})}
	p := newTestProvisioner(t, f)

	result, err := p.Create(context.Background(), &resource.CreateRequest{Label: "thing1"})
	require.Error(t, err)

	assert.Equal(t, resource.OperationStatusFailure, result.ProgressResult.OperationStatus)
	assert.Equal(t, resource.OperationErrorCodeResourceConflict, result.ProgressResult.ErrorCode)
	assert.Empty(t, result.ProgressResult.NativeID)
}

func TestProvisioner_CreatePartialFailureKeepsNativeID(t *testing.T) {
	f := &fakeResource{
		createErr:     provider.NewProviderError("create resource", errors.New("orders: TableBeingDeleted")),
		partialCreate: true,
	}
	p := newTestProvisioner(t, f)

	result, err := p.Create(context.Background(), &resource.CreateRequest{Label: "thing1"})
	assert.ErrorIs(t, err, provider.ErrProvider)

	assert.Equal(t, resource.OperationStatusFailure, result.ProgressResult.OperationStatus)
	assert.Equal(t, fakeID, result.ProgressResult.NativeID)
}

func TestProvisioner_CreateInvalidProperties(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{})

	_, err := p.Create(context.Background(), &resource.CreateRequest{Properties: json.RawMessage(`{bad`)})
	assert.Error(t, err)
}

func TestProvisioner_CreateStatusReadFails(t *testing.T) {
	f := &fakeResource{statusErr: errors.New("throttled")}
	p := newTestProvisioner(t, f)

	result, err := p.Create(context.Background(), &resource.CreateRequest{Label: "thing1"})
	require.NoError(t, err)

	var props map[string]any
	require.NoError(t, json.Unmarshal(result.ProgressResult.ResourceProperties, &props))
	assert.Equal(t, fakeID, props[PropertyID])
}

func TestProvisioner_Read(t *testing.T) {
	f := &fakeResource{}
	p := newTestProvisioner(t, f)

	result, err := p.Read(context.Background(), &resource.ReadRequest{NativeID: fakeID})
	require.NoError(t, err)

	assert.Equal(t, "thing1", f.Name())
	assert.Equal(t, "other-rg", f.Config().ResourceGroup)

	var props map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Properties), &props))
	assert.Equal(t, "other-rg", props[PropertyResourceGroupName])
}

func TestProvisioner_ReadNotFound(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{
		statusErr: provider.NewProviderError("get resource status", &azcore.ResponseError{StatusCode: http.StatusNotFound}),
	})

	result, err := p.Read(context.Background(), &resource.ReadRequest{NativeID: fakeID})
	require.Error(t, err)
	assert.Equal(t, resource.OperationErrorCodeNotFound, result.ErrorCode)
}

func TestProvisioner_ReadInvalidNativeID(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{})

	_, err := p.Read(context.Background(), &resource.ReadRequest{NativeID: "garbage"})
	assert.Error(t, err)
}

func TestProvisioner_Update(t *testing.T) {
	f := &fakeResource{}
	p := newTestProvisioner(t, f)

	result, err := p.Update(context.Background(), &resource.UpdateRequest{
		NativeID:          fakeID,
		DesiredProperties: json.RawMessage(`{"accessTier":"Cool","Tags":[]}`),
	})
	require.NoError(t, err)

	assert.Equal(t, resource.OperationStatusSuccess, result.ProgressResult.OperationStatus)
	assert.Equal(t, fakeID, result.ProgressResult.NativeID)
	assert.Equal(t, fakeID, f.ResourceID())
	assert.NotNil(t, f.updateOpts.Tags)
	assert.Empty(t, f.updateOpts.Tags)
	assert.Equal(t, map[string]any{"accessTier": "Cool"}, f.updateOpts.Properties)
}

func TestProvisioner_UpdateFailure(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{updateErr: errors.New("AuthorizationFailed: no write permission")})

	result, err := p.Update(context.Background(), &resource.UpdateRequest{NativeID: fakeID})
	require.Error(t, err)
	assert.Equal(t, resource.OperationStatusFailure, result.ProgressResult.OperationStatus)
	assert.Equal(t, resource.OperationErrorCodeAccessDenied, result.ProgressResult.ErrorCode)
}

func TestProvisioner_Delete(t *testing.T) {
	f := &fakeResource{}
	p := newTestProvisioner(t, f)

	result, err := p.Delete(context.Background(), &resource.DeleteRequest{NativeID: fakeID})
	require.NoError(t, err)
	assert.True(t, f.deleted)
	assert.Equal(t, resource.OperationStatusSuccess, result.ProgressResult.OperationStatus)
}

func TestProvisioner_DeleteAlreadyGone(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{
		deleteErr: provider.NewProviderError("delete resource", &azcore.ResponseError{StatusCode: http.StatusNotFound}),
	})

	result, err := p.Delete(context.Background(), &resource.DeleteRequest{NativeID: fakeID})
	require.NoError(t, err)
	assert.Equal(t, resource.OperationStatusSuccess, result.ProgressResult.OperationStatus)
}

func TestProvisioner_DeleteFailure(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{deleteErr: errors.New("ScopeLocked")})

	result, err := p.Delete(context.Background(), &resource.DeleteRequest{NativeID: fakeID})
	require.Error(t, err)
	assert.Equal(t, resource.OperationStatusFailure, result.ProgressResult.OperationStatus)
	assert.Equal(t, resource.OperationErrorCodeGeneralServiceException, result.ProgressResult.ErrorCode)
}

func TestProvisioner_StatusUnknownRequest(t *testing.T) {
	p := newTestProvisioner(t, &fakeResource{})

	result, err := p.Status(context.Background(), &resource.StatusRequest{RequestID: "req-1", NativeID: fakeID})
	require.Error(t, err)
	assert.Equal(t, resource.OperationStatusFailure, result.ProgressResult.OperationStatus)
	assert.Equal(t, "req-1", result.ProgressResult.RequestID)
}

func TestProvisioner_List(t *testing.T) {
	f := &fakeResource{listIDs: []string{fakeID}}
	p := newTestProvisioner(t, f)

	result, err := p.List(context.Background(), &resource.ListRequest{
		AdditionalProperties: map[string]string{ListResourceGroupKey: "other-rg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{fakeID}, result.NativeIDs)
	assert.Equal(t, "other-rg", f.Config().ResourceGroup)
}
