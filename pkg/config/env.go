// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import "os"

// Environment holds process-level settings read once at startup.
type Environment struct {
	Env      string
	LogLevel string
}

// EnvironmentFromEnv loads the process environment.
func EnvironmentFromEnv() Environment {
	return Environment{
		Env:      envOrDefault("ENV", "dev"),
		LogLevel: envOrDefault("LOG_LEVEL", "INFO"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
