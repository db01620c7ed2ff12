// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// CloudVault exposes the Azure Data Factory, Table storage and Queue storage
// adapters as a formae resource plugin. formae builds and loads this package
// as a plugin; main only satisfies regular builds.
package main

func main() {}
