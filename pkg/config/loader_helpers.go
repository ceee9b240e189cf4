package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadAndMerge loads a YAML file and merges it into the config.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Strings and numbers override when
// non-zero; booleans override only when the key is present in the file.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	mergeString(&base.API.BaseURL, override.API.BaseURL)
	if fieldSet(raw, "api", "timeout") {
		base.API.Timeout = override.API.Timeout
	}
	if fieldSet(raw, "api", "rate_limit") {
		base.API.RateLimit = override.API.RateLimit
	}
	if override.API.Burst != 0 {
		base.API.Burst = override.API.Burst
	}
	if fieldSet(raw, "api", "network_logs") {
		base.API.NetworkLogs = override.API.NetworkLogs
	}

	mergeString(&base.Trip.DefaultCurrency, override.Trip.DefaultCurrency)
	mergeString(&base.Trip.BusyLabel, override.Trip.BusyLabel)
	mergeString(&base.Trip.FailureFallback, override.Trip.FailureFallback)

	mergeString(&base.Chat.WelcomeMessage, override.Chat.WelcomeMessage)
	mergeString(&base.Chat.FailureFallback, override.Chat.FailureFallback)
	mergeString(&base.Chat.SessionPrefix, override.Chat.SessionPrefix)
	if fieldSet(raw, "chat", "ordered_rendering") {
		base.Chat.OrderedRendering = override.Chat.OrderedRendering
	}

	mergeString(&base.Logging.Dir, override.Logging.Dir)
	mergeString(&base.Logging.Level, override.Logging.Level)

	if fieldSet(raw, "telemetry", "tracing") {
		base.Telemetry.Tracing = override.Telemetry.Tracing
	}
}

func mergeString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

func fieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}
