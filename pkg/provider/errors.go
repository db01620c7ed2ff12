// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrCloudVault matches every error produced by this module.
	ErrCloudVault = errors.New("cloudvault error")
	// ErrProvider matches failures of a provider call.
	ErrProvider = fmt.Errorf("%w: provider error", ErrCloudVault)
	// ErrProviderNotSupported matches selection of an unknown provider kind.
	ErrProviderNotSupported = fmt.Errorf("%w: provider not supported", ErrCloudVault)
)

// ProviderError wraps any failure of a vendor call. Op names the operation,
// e.g. "create resource"; Err is the original error.
type ProviderError struct {
	Op  string
	Err error
}

// NewProviderError wraps err for operation op.
func NewProviderError(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to %s", e.Op)
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Err.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider || target == ErrCloudVault
}

// ProviderNotSupportedError reports a provider kind with no registered adapter.
type ProviderNotSupportedError struct {
	Kind string
}

func (e *ProviderNotSupportedError) Error() string {
	return fmt.Sprintf("provider not supported: %s", e.Kind)
}

func (e *ProviderNotSupportedError) Is(target error) bool {
	return target == ErrProviderNotSupported || target == ErrCloudVault
}
