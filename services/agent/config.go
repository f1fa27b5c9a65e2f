// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Client Configuration
// =============================================================================

// Defaults for the agent connection. Resolution order for every field:
// explicit value on Config, then environment variable, then default.
//
//	KODIAK_AGENT_BASE_URL          base URL of the agent API  (default http://localhost:8000)
//	KODIAK_AGENT_APP_NAME          agent application name     (default root_agent)
//	KODIAK_AGENT_TIMEOUT_SECONDS   per-call deadline, 20..30  (default 30)
//	KODIAK_AGENT_MAX_RPS           outbound request rate      (default 10)
const (
	defaultBaseURL        = "http://localhost:8000"
	defaultAppName        = "root_agent"
	defaultTimeoutSeconds = 30
	minTimeoutSeconds     = 20
	maxTimeoutSeconds     = 30
	defaultMaxRPS         = 10
)

// Config holds agent client settings.
type Config struct {
	BaseURL string        `validate:"required,url"`
	AppName string        `validate:"required"`
	Timeout time.Duration `validate:"required"`
	MaxRPS  int           `validate:"gt=0"`
}

var validate = validator.New()

// ConfigFromEnv builds a Config from the environment, applying defaults for
// anything unset. Out-of-band timeout values are clamped into the supported
// 20..30s window with a warning rather than rejected.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		BaseURL: envOr("KODIAK_AGENT_BASE_URL", defaultBaseURL),
		AppName: envOr("KODIAK_AGENT_APP_NAME", defaultAppName),
		Timeout: time.Duration(envIntOr("KODIAK_AGENT_TIMEOUT_SECONDS", defaultTimeoutSeconds)) * time.Second,
		MaxRPS:  envIntOr("KODIAK_AGENT_MAX_RPS", defaultMaxRPS),
	}

	if secs := int(cfg.Timeout / time.Second); secs < minTimeoutSeconds || secs > maxTimeoutSeconds {
		clamped := min(max(secs, minTimeoutSeconds), maxTimeoutSeconds)
		slog.Warn("Agent timeout outside supported window, clamping",
			slog.Int("requested_seconds", secs),
			slog.Int("clamped_seconds", clamped))
		cfg.Timeout = time.Duration(clamped) * time.Second
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid agent configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring non-integer environment value",
			slog.String("key", key),
			slog.String("value", v))
		return def
	}
	return n
}
