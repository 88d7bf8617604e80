package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}

	if cfg.Gateway.MaxClients < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.maxClients",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Gateway.MaxClients),
		})
	}

	validProviders := []string{"openai", "gemini"}
	if cfg.Provider.Name != "" && !slices.Contains(validProviders, cfg.Provider.Name) {
		issues = append(issues, ValidationIssue{
			Path:    "provider.name",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Provider.Name),
		})
	}

	if cfg.Provider.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "provider.timeoutSeconds",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Provider.TimeoutSeconds),
		})
	}

	if cfg.Limits.PromptMax < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "limits.promptMax",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Limits.PromptMax),
		})
	}
	if cfg.Limits.ImagePromptMax < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "limits.imagePromptMax",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Limits.ImagePromptMax),
		})
	}
	if cfg.Limits.AssetMaxKiB < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "limits.assetMaxKiB",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Limits.AssetMaxKiB),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
