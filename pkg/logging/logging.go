// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/platform-engineering-labs/cloudvault/pkg/config"
)

// ParseLevel maps LOG_LEVEL values onto zerolog levels. Unknown values fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "WARNING":
		return zerolog.WarnLevel
	case "CRITICAL", "FATAL":
		return zerolog.FatalLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// New returns the process logger writing to stderr.
func New(env config.Environment) zerolog.Logger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr}, env)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(w io.Writer, env config.Environment) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(env.LogLevel)).
		With().Timestamp().
		Str("component", "cloudvault").
		Str("env", env.Env).
		Logger()
}

// FromEnv builds the logger from the process environment.
func FromEnv() zerolog.Logger {
	return New(config.EnvironmentFromEnv())
}
