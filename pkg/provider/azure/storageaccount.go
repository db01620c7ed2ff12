// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

// Storage account properties understood by Create and Update.
const (
	PropertySKU        = "sku"
	PropertyAccessTier = "accessTier"

	// SettingStorageSKU is the config key for the default storage SKU.
	SettingStorageSKU = "storage_sku"
	defaultStorageSKU = string(armstorage.SKUNameStandardLRS)

	// TagKind marks which adapter owns a storage account. List only returns accounts
	// carrying the adapter's own value.
	TagKind = "cloudvault-kind"
)

// storageAccount implements the CloudResource lifecycle on top of a StorageV2 account.
// TableStore and QueueStore embed it and add their data-plane operations.
type storageAccount struct {
	*provider.Base

	accounts       storageAccountsAPI
	resourceGroups resourceGroupsAPI
	logger         zerolog.Logger
	label          string
	kindTag        string
}

func newStorageAccount(name string, cfg *config.Config, o *options, kind, label, kindTag string) (*storageAccount, error) {
	s := &storageAccount{
		Base:           provider.NewBase(name, cfg),
		accounts:       o.accounts,
		resourceGroups: o.resourceGroups,
		logger:         o.resolveLogger(kind),
		label:          label,
		kindTag:        kindTag,
	}

	if err := s.Config().Validate(); err != nil {
		return nil, fail(s.logger, opInitializeClient, err)
	}

	if s.accounts == nil || s.resourceGroups == nil {
		c, err := o.azureClient(s.Config())
		if err != nil {
			return nil, fail(s.logger, opInitializeClient, err)
		}
		if s.accounts == nil {
			s.accounts = &storageAccountsClientWrapper{client: c.StorageAccountsClient}
		}
		if s.resourceGroups == nil {
			s.resourceGroups = &resourceGroupsClientWrapper{client: c.ResourceGroupsClient}
		}
	}
	return s, nil
}

// Create provisions the storage account and blocks until provisioning completes.
func (s *storageAccount) Create(ctx context.Context, opts provider.CreateOptions) (string, error) {
	cfg := s.Config()
	log := operationLogger(s.logger, opCreate, s.Name())

	if err := validateStorageAccountName(s.Name()); err != nil {
		return "", fail(log, opCreate, err)
	}

	if opts.EnsureResourceGroup {
		if err := ensureResourceGroup(ctx, s.resourceGroups, cfg, log); err != nil {
			return "", fail(log, opCreate, err)
		}
	}

	skuName := cfg.GetOr(SettingStorageSKU, defaultStorageSKU)
	if v, ok := opts.Properties[PropertySKU].(string); ok && v != "" {
		skuName = v
	}

	params := armstorage.AccountCreateParameters{
		Location: to.Ptr(cfg.Region),
		Kind:     to.Ptr(armstorage.KindStorageV2),
		SKU:      &armstorage.SKU{Name: to.Ptr(armstorage.SKUName(skuName))},
		Tags:     s.ownedTags(opts.Tags),
		Properties: &armstorage.AccountPropertiesCreateParameters{
			EnableHTTPSTrafficOnly: to.Ptr(true),
			MinimumTLSVersion:      to.Ptr(armstorage.MinimumTLSVersionTLS12),
			AllowBlobPublicAccess:  to.Ptr(false),
		},
	}
	if tier, ok := opts.Properties[PropertyAccessTier].(string); ok && tier != "" {
		params.Properties.AccessTier = to.Ptr(armstorage.AccessTier(tier))
	}

	result, err := s.accounts.Create(ctx, cfg.ResourceGroup, s.Name(), params)
	if err != nil {
		return "", fail(log, opCreate, err)
	}
	if result.ID == nil || *result.ID == "" {
		return "", fail(log, opCreate, errors.New("response did not include a resource id"))
	}

	s.SetResourceID(*result.ID)
	log.Info().Str("resourceId", *result.ID).Msgf("created %s", s.label)
	return *result.ID, nil
}

// Update changes tags and the access tier.
func (s *storageAccount) Update(ctx context.Context, opts provider.UpdateOptions) error {
	cfg := s.Config()
	log := operationLogger(s.logger, opUpdate, s.Name())

	params := armstorage.AccountUpdateParameters{}
	if opts.Tags != nil {
		// Replaces every tag except the kind marker.
		params.Tags = s.ownedTags(opts.Tags)
	}
	if tier, ok := opts.Properties[PropertyAccessTier].(string); ok && tier != "" {
		params.Properties = &armstorage.AccountPropertiesUpdateParameters{
			AccessTier: to.Ptr(armstorage.AccessTier(tier)),
		}
	}

	if _, err := s.accounts.Update(ctx, cfg.ResourceGroup, s.Name(), params); err != nil {
		return fail(log, opUpdate, err)
	}

	log.Info().Str("resourceId", s.ResourceID()).Msgf("updated %s", s.label)
	return nil
}

// Delete removes the storage account and everything in it.
func (s *storageAccount) Delete(ctx context.Context) error {
	cfg := s.Config()
	log := operationLogger(s.logger, opDelete, s.Name())

	if err := s.accounts.Delete(ctx, cfg.ResourceGroup, s.Name()); err != nil {
		return fail(log, opDelete, err)
	}

	log.Info().Str("resourceId", s.ResourceID()).Msgf("deleted %s", s.label)
	s.ClearResourceID()
	return nil
}

// GetStatus returns a snapshot of the storage account.
func (s *storageAccount) GetStatus(ctx context.Context) (provider.Status, error) {
	cfg := s.Config()
	log := operationLogger(s.logger, opGetStatus, s.Name())

	account, err := s.accounts.Get(ctx, cfg.ResourceGroup, s.Name())
	if err != nil {
		return nil, fail(log, opGetStatus, err)
	}
	return storageAccountStatus(account), nil
}

// ownedTags returns tags plus the kind marker in SDK form.
func (s *storageAccount) ownedTags(tags map[string]string) map[string]*string {
	azureTags := make(map[string]*string, len(tags)+1)
	for k, v := range toAzureTags(tags) {
		azureTags[k] = v
	}
	azureTags[TagKind] = to.Ptr(s.kindTag)
	return azureTags
}

// List returns the ARM IDs of the accounts in the configured resource group that
// were created by this kind of adapter.
func (s *storageAccount) List(ctx context.Context) ([]string, error) {
	log := operationLogger(s.logger, opList, s.Name())

	accounts, err := s.accounts.List(ctx, s.Config().ResourceGroup)
	if err != nil {
		return nil, fail(log, opList, err)
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a == nil || a.ID == nil {
			continue
		}
		if kind := a.Tags[TagKind]; kind == nil || *kind != s.kindTag {
			continue
		}
		ids = append(ids, *a.ID)
	}
	return ids, nil
}

func storageAccountStatus(a armstorage.Account) provider.Status {
	status := provider.Status{
		provider.StatusID:                deref(a.ID),
		provider.StatusName:              deref(a.Name),
		provider.StatusType:              deref(a.Type),
		provider.StatusLocation:          deref(a.Location),
		provider.StatusProvisioningState: nil,
		provider.StatusCreatedTime:       nil,
		provider.StatusTags:              userTags(a.Tags),
	}
	if a.Kind != nil {
		status["kind"] = string(*a.Kind)
	}
	if a.SKU != nil && a.SKU.Name != nil {
		status["sku"] = string(*a.SKU.Name)
	}
	if p := a.Properties; p != nil {
		if p.ProvisioningState != nil {
			status[provider.StatusProvisioningState] = string(*p.ProvisioningState)
		}
		status[provider.StatusCreatedTime] = formatTime(p.CreationTime)
		if p.PrimaryEndpoints != nil {
			endpoints := make(map[string]string)
			if p.PrimaryEndpoints.Table != nil {
				endpoints["table"] = *p.PrimaryEndpoints.Table
			}
			if p.PrimaryEndpoints.Queue != nil {
				endpoints["queue"] = *p.PrimaryEndpoints.Queue
			}
			status["endpoints"] = endpoints
		}
	}
	return status
}

// userTags drops the kind marker so it never shows up as drift.
func userTags(azureTags map[string]*string) map[string]string {
	tags := fromAzureTags(azureTags)
	delete(tags, TagKind)
	return tags
}

// createAll calls create for every name and stops at the first failure.
func createAll(ctx context.Context, names []string, create func(context.Context, string) error) error {
	for _, name := range names {
		if err := create(ctx, name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
