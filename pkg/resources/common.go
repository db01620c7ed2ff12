// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/platform-engineering-labs/formae/pkg/model"
	"github.com/platform-engineering-labs/formae/pkg/plugin/resource"

	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

// Property keys with a fixed meaning. Every other key is passed to the adapter.
const (
	PropertyName                = "name"
	PropertyResourceGroupName   = "resourceGroupName"
	PropertyLocation            = "location"
	PropertyTags                = "Tags"
	PropertyEnsureResourceGroup = "ensureResourceGroup"
	PropertyID                  = "id"
	PropertyStatus              = "status"
)

// resourceProperties is the parsed form of a formae properties document.
type resourceProperties struct {
	Name                string
	ResourceGroup       string
	Location            string
	EnsureResourceGroup bool
	Tags                map[string]string
	Extra               map[string]any
}

func parseProperties(raw json.RawMessage) (resourceProperties, error) {
	var props map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &props); err != nil {
			return resourceProperties{}, fmt.Errorf("failed to parse resource properties: %w", err)
		}
	}

	parsed := resourceProperties{
		Tags:  map[string]string{},
		Extra: map[string]any{},
	}
	for k, v := range props {
		switch k {
		case PropertyName:
			parsed.Name, _ = v.(string)
		case PropertyResourceGroupName:
			parsed.ResourceGroup, _ = v.(string)
		case PropertyLocation:
			parsed.Location, _ = v.(string)
		case PropertyEnsureResourceGroup:
			parsed.EnsureResourceGroup, _ = v.(bool)
		case PropertyTags, PropertyID, PropertyStatus:
		default:
			parsed.Extra[k] = v
		}
	}
	if len(raw) > 0 {
		for _, tag := range model.GetTagsFromProperties(raw) {
			parsed.Tags[tag.Key] = tag.Value
		}
	}
	return parsed, nil
}

// formaeTags converts a tag map to the formae tag list, sorted by key.
func formaeTags(tags map[string]string) []map[string]string {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]string{"Key": k, "Value": tags[k]})
	}
	return out
}

// serializeStatus converts an adapter status snapshot to formae properties.
func serializeStatus(status provider.Status, resourceGroup string) (json.RawMessage, error) {
	props := map[string]any{
		PropertyResourceGroupName: resourceGroup,
	}
	rest := make(map[string]any)
	for k, v := range status {
		switch k {
		case provider.StatusID:
			props[PropertyID] = v
		case provider.StatusName:
			props[PropertyName] = v
		case provider.StatusLocation:
			props[PropertyLocation] = v
		case provider.StatusTags:
			if tags, ok := v.(map[string]string); ok {
				if list := formaeTags(tags); list != nil {
					props[PropertyTags] = list
				}
			}
		default:
			if v != nil {
				rest[k] = v
			}
		}
	}
	if len(rest) > 0 {
		props[PropertyStatus] = rest
	}
	return json.Marshal(props)
}

// mapErrorToOperationErrorCode maps adapter errors to OperationErrorCode.
// HTTP status codes from the Azure SDK win; message patterns cover everything else.
func mapErrorToOperationErrorCode(err error) resource.OperationErrorCode {
	if err == nil {
		return ""
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if code, ok := statusCodeToOperationErrorCode(respErr.StatusCode); ok {
			return code
		}
	}

	switch {
	case errors.Is(err, provider.ErrProviderNotSupported):
		return resource.OperationErrorCodeInvalidRequest
	case errors.Is(err, context.DeadlineExceeded):
		return resource.OperationErrorCodeServiceTimeout
	}

	return matchErrorMessage(err.Error())
}

func statusCodeToOperationErrorCode(status int) (resource.OperationErrorCode, bool) {
	switch status {
	case http.StatusNotFound:
		return resource.OperationErrorCodeNotFound, true
	case http.StatusForbidden:
		return resource.OperationErrorCodeAccessDenied, true
	case http.StatusUnauthorized:
		return resource.OperationErrorCodeInvalidCredentials, true
	case http.StatusConflict:
		return resource.OperationErrorCodeResourceConflict, true
	case http.StatusTooManyRequests:
		return resource.OperationErrorCodeThrottling, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return resource.OperationErrorCodeServiceTimeout, true
	case http.StatusBadRequest:
		return resource.OperationErrorCodeInvalidRequest, true
	}
	if status >= http.StatusInternalServerError {
		return resource.OperationErrorCodeServiceInternalError, true
	}
	return "", false
}

func matchErrorMessage(msg string) resource.OperationErrorCode {
	switch {
	case strings.Contains(msg, "ResourceGroupNotFound"),
		strings.Contains(msg, "ResourceNotFound"),
		strings.Contains(msg, "NotFound"):
		return resource.OperationErrorCodeNotFound

	case strings.Contains(msg, "AuthorizationFailed"),
		strings.Contains(msg, "Forbidden"):
		return resource.OperationErrorCodeAccessDenied

	case strings.Contains(msg, "Unauthorized"),
		strings.Contains(msg, "AuthenticationFailed"),
		strings.Contains(msg, "InvalidAuthenticationToken"):
		return resource.OperationErrorCodeInvalidCredentials

	case strings.Contains(msg, "Conflict"),
		strings.Contains(msg, "AlreadyExists"),
		strings.Contains(msg, "ResourceExists"):
		return resource.OperationErrorCodeResourceConflict

	case strings.Contains(msg, "TooManyRequests"),
		strings.Contains(msg, "Throttling"):
		return resource.OperationErrorCodeThrottling

	case strings.Contains(msg, "InternalServerError"):
		return resource.OperationErrorCodeServiceInternalError

	case strings.Contains(msg, "Timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return resource.OperationErrorCodeServiceTimeout

	case strings.Contains(msg, "QuotaExceeded"),
		strings.Contains(msg, "LimitExceeded"):
		return resource.OperationErrorCodeServiceLimitExceeded

	case strings.Contains(msg, "InvalidParameter"),
		strings.Contains(msg, "InvalidRequest"),
		strings.Contains(msg, "BadRequest"):
		return resource.OperationErrorCodeInvalidRequest

	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "network"),
		strings.Contains(msg, "dial"):
		return resource.OperationErrorCodeNetworkFailure

	default:
		return resource.OperationErrorCodeGeneralServiceException
	}
}

// isDeleteSuccessError reports whether a delete failed only because the resource is already gone.
func isDeleteSuccessError(err error) bool {
	return err != nil && mapErrorToOperationErrorCode(err) == resource.OperationErrorCodeNotFound
}
