// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package nativeid

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/segmentio/ksuid"
)

const prefix = "azure:v1:"

// NativeID identifies one instance of a managed resource.
// Format: azure:v1:{ksuid}:{armID}
//
// ARM IDs are reused when a resource is deleted and created again under the
// same name. The KSUID keeps every instance distinct for formae.
type NativeID string

// Encode wraps an ARM ID with a fresh KSUID. Empty input gives an empty NativeID.
func Encode(armID string) NativeID {
	if armID == "" {
		return ""
	}
	return NativeID(prefix + ksuid.New().String() + ":" + armID)
}

// ReEncode wraps armID with the KSUID of previous so that updates keep the
// instance identity. A previous value without a KSUID gets a fresh one.
func ReEncode(previous NativeID, armID string) NativeID {
	if armID == "" {
		return ""
	}
	id, ok := previous.ksuid()
	if !ok {
		return Encode(armID)
	}
	return NativeID(prefix + id + ":" + armID)
}

// ArmID returns the wrapped ARM ID. Values that are not encoded are returned as-is.
func (n NativeID) ArmID() string {
	s := string(n)
	if !strings.HasPrefix(s, prefix) {
		return s
	}
	if parts := strings.SplitN(s, ":", 4); len(parts) == 4 {
		return parts[3]
	}
	return s
}

// String returns the encoded NativeID string.
func (n NativeID) String() string {
	return string(n)
}

func (n NativeID) ksuid() (string, bool) {
	s := string(n)
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return "", false
	}
	if _, err := ksuid.Parse(parts[2]); err != nil {
		return "", false
	}
	return parts[2], true
}

// Resource is the part of an ARM ID the provisioners need.
type Resource struct {
	ID            string
	ResourceGroup string
	Name          string
	Type          string
}

// Parse decodes n and splits its ARM ID. The ID must name a resource inside a resource group.
func Parse(n NativeID) (Resource, error) {
	armID := n.ArmID()
	parsed, err := arm.ParseResourceID(armID)
	if err != nil {
		return Resource{}, fmt.Errorf("invalid native id %q: %w", n, err)
	}
	if parsed.ResourceGroupName == "" || parsed.Name == "" {
		return Resource{}, fmt.Errorf("invalid native id %q: not a resource group scoped resource", n)
	}
	return Resource{
		ID:            armID,
		ResourceGroup: parsed.ResourceGroupName,
		Name:          parsed.Name,
		Type:          parsed.ResourceType.String(),
	}, nil
}
