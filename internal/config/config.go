// Package config loads and validates Cleo's YAML configuration.
package config

// ConfigError indicates a problem reading or parsing configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Defaults returns the stock configuration.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port:       2500,
			Bind:       "loopback",
			MaxClients: 5000,
		},
		Provider: ProviderConfig{
			Name:           "openai",
			TimeoutSeconds: 60,
		},
		Limits: LimitsConfig{
			PromptMax:      150,
			ImagePromptMax: 100,
			AssetMaxKiB:    512,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
