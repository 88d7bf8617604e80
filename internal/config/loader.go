package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Provider.APIKey = expandEnvVars(cfg.Provider.APIKey)
	cfg.Provider.OrgID = expandEnvVars(cfg.Provider.OrgID)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only. A .env file in the
// working directory is read first, so keys placed there behave like real
// environment variables.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // best-effort; absence is fine

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 2500
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "loopback"
	}
	if cfg.Gateway.MaxClients == 0 {
		cfg.Gateway.MaxClients = 5000
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "openai"
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 60
	}
	if cfg.Limits.PromptMax == 0 {
		cfg.Limits.PromptMax = 150
	}
	if cfg.Limits.ImagePromptMax == 0 {
		cfg.Limits.ImagePromptMax = 100
	}
	if cfg.Limits.AssetMaxKiB == 0 {
		cfg.Limits.AssetMaxKiB = 512
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads CLEO_* (and provider key) environment variables
// and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLEO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("CLEO_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("CLEO_MAX_CLIENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.MaxClients = n
		}
	}
	if v := os.Getenv("CLEO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("CLEO_PROVIDER"); v != "" {
		cfg.Provider.Name = strings.ToLower(v)
	}
	if v := os.Getenv("OPEN_AI_API_KEY"); v != "" && cfg.Provider.Name == "openai" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("OPEN_AI_ORG_ID"); v != "" {
		cfg.Provider.OrgID = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.Provider.Name == "gemini" {
		cfg.Provider.APIKey = v
	}
}
