// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/nativeid"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
	"github.com/platform-engineering-labs/cloudvault/pkg/registry"
)

// ListResourceGroupKey selects the resource group to list in ListRequest.AdditionalProperties.
const ListResourceGroupKey = "resourceGroupName"

// Provisioner runs formae resource requests against the adapter registered for one kind.
//
// Native IDs seen by a Provisioner are raw ARM IDs; the plugin encodes and decodes
// them at the boundary. All operations complete synchronously.
type Provisioner struct {
	Kind   string
	Config *config.Config
}

// NewProvisioner returns a provisioner for kind, or a *provider.ProviderNotSupportedError.
func NewProvisioner(kind string, cfg *config.Config) (*Provisioner, error) {
	if !registry.Has(kind) {
		return nil, &provider.ProviderNotSupportedError{Kind: kind}
	}
	return &Provisioner{Kind: kind, Config: cfg}, nil
}

func (p *Provisioner) newResource(name, resourceGroup, location string) (provider.CloudResource, error) {
	cfg := p.Config
	if resourceGroup != "" {
		cfg = cfg.WithResourceGroup(resourceGroup)
	}
	if location != "" {
		cfg = cfg.WithRegion(location)
	}
	return registry.New(p.Kind, name, cfg)
}

// adopt records an existing ARM ID on adapters that track it.
func adopt(res provider.CloudResource, armID string) {
	if r, ok := res.(interface{ SetResourceID(string) }); ok {
		r.SetResourceID(armID)
	}
}

func (p *Provisioner) resourceFor(nativeID string) (provider.CloudResource, nativeid.Resource, error) {
	id, err := nativeid.Parse(nativeid.NativeID(nativeID))
	if err != nil {
		return nil, nativeid.Resource{}, err
	}
	res, err := p.newResource(id.Name, id.ResourceGroup, "")
	if err != nil {
		return nil, nativeid.Resource{}, err
	}
	return res, id, nil
}

// properties reads the resource back for the ProgressResult. A failed read falls back
// to the identity fields so a successful mutation is not reported as failed.
func (p *Provisioner) properties(ctx context.Context, res provider.CloudResource, resourceGroup, id string) json.RawMessage {
	status, err := res.GetStatus(ctx)
	if err != nil {
		status = provider.Status{
			provider.StatusID:   id,
			provider.StatusName: res.Name(),
		}
	}
	props, err := serializeStatus(status, resourceGroup)
	if err != nil {
		return nil
	}
	return props
}

func (p *Provisioner) Create(ctx context.Context, request *resource.CreateRequest) (*resource.CreateResult, error) {
	props, err := parseProperties(request.Properties)
	if err != nil {
		return nil, err
	}

	name := props.Name
	if name == "" {
		name = request.Label
	}

	res, err := p.newResource(name, props.ResourceGroup, props.Location)
	if err != nil {
		return createFailure(err, ""), err
	}

	id, err := res.Create(ctx, provider.CreateOptions{
		Tags:                props.Tags,
		Properties:          props.Extra,
		EnsureResourceGroup: props.EnsureResourceGroup,
	})
	if err != nil {
		// Report anything provisioned before the failure.
		if id == "" {
			id = res.ResourceID()
		}
		return createFailure(err, id), err
	}

	return &resource.CreateResult{
		ProgressResult: &resource.ProgressResult{
			Operation:       resource.OperationCreate,
			OperationStatus: resource.OperationStatusSuccess,
			NativeID:        id,

			ResourceProperties: p.properties(ctx, res, res.Config().ResourceGroup, id),
		},
	}, nil
}

func createFailure(err error, nativeID string) *resource.CreateResult {
	return &resource.CreateResult{
		ProgressResult: &resource.ProgressResult{
			Operation:       resource.OperationCreate,
			OperationStatus: resource.OperationStatusFailure,
			NativeID:        nativeID,

			ErrorCode: mapErrorToOperationErrorCode(err),
		},
	}
}

func (p *Provisioner) Read(ctx context.Context, request *resource.ReadRequest) (*resource.ReadResult, error) {
	res, id, err := p.resourceFor(request.NativeID)
	if err != nil {
		return nil, err
	}

	status, err := res.GetStatus(ctx)
	if err != nil {
		return &resource.ReadResult{
			ErrorCode: mapErrorToOperationErrorCode(err),
		}, err
	}

	props, err := serializeStatus(status, id.ResourceGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize resource properties: %w", err)
	}

	return &resource.ReadResult{
		Properties: string(props),
	}, nil
}

func (p *Provisioner) Update(ctx context.Context, request *resource.UpdateRequest) (*resource.UpdateResult, error) {
	res, id, err := p.resourceFor(request.NativeID)
	if err != nil {
		return nil, err
	}

	props, err := parseProperties(request.DesiredProperties)
	if err != nil {
		return nil, err
	}

	adopt(res, id.ID)
	if err := res.Update(ctx, provider.UpdateOptions{
		Tags:       props.Tags,
		Properties: props.Extra,
	}); err != nil {
		return &resource.UpdateResult{
			ProgressResult: &resource.ProgressResult{
				Operation:       resource.OperationUpdate,
				OperationStatus: resource.OperationStatusFailure,
				NativeID:        request.NativeID,

				ErrorCode: mapErrorToOperationErrorCode(err),
			},
		}, err
	}

	return &resource.UpdateResult{
		ProgressResult: &resource.ProgressResult{
			Operation:       resource.OperationUpdate,
			OperationStatus: resource.OperationStatusSuccess,
			NativeID:        request.NativeID,

			ResourceProperties: p.properties(ctx, res, id.ResourceGroup, id.ID),
		},
	}, nil
}

func (p *Provisioner) Delete(ctx context.Context, request *resource.DeleteRequest) (*resource.DeleteResult, error) {
	res, id, err := p.resourceFor(request.NativeID)
	if err != nil {
		return nil, err
	}

	adopt(res, id.ID)
	if err := res.Delete(ctx); err != nil && !isDeleteSuccessError(err) {
		return &resource.DeleteResult{
			ProgressResult: &resource.ProgressResult{
				Operation:       resource.OperationDelete,
				OperationStatus: resource.OperationStatusFailure,
				NativeID:        request.NativeID,

				ErrorCode: mapErrorToOperationErrorCode(err),
			},
		}, err
	}

	return &resource.DeleteResult{
		ProgressResult: &resource.ProgressResult{
			Operation:       resource.OperationDelete,
			OperationStatus: resource.OperationStatusSuccess,
			NativeID:        request.NativeID,
		},
	}, nil
}

// Status always fails: operations finish before Create, Update or Delete return,
// so no request ID is ever outstanding.
func (p *Provisioner) Status(_ context.Context, request *resource.StatusRequest) (*resource.StatusResult, error) {
	return &resource.StatusResult{
		ProgressResult: &resource.ProgressResult{
			OperationStatus: resource.OperationStatusFailure,
			RequestID:       request.RequestID,
			NativeID:        request.NativeID,

			ErrorCode: resource.OperationErrorCodeGeneralServiceException,
		},
	}, fmt.Errorf("unknown request id %q", request.RequestID)
}

func (p *Provisioner) List(ctx context.Context, request *resource.ListRequest) (*resource.ListResult, error) {
	res, err := p.newResource("", request.AdditionalProperties[ListResourceGroupKey], "")
	if err != nil {
		return nil, err
	}

	lister, ok := res.(provider.Lister)
	if !ok {
		return nil, fmt.Errorf("resource type %s does not support listing", p.Kind)
	}

	ids, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}
	return &resource.ListResult{
		NativeIDs: ids,
	}, nil
}
