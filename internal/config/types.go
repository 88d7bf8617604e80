package config

// Config is the root configuration for Cleo.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Provider  ProviderConfig  `yaml:"provider,omitempty"`
	Uploads   UploadsConfig   `yaml:"uploads,omitempty"`
	Limits    LimitsConfig    `yaml:"limits,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	MaxClients     int      `yaml:"maxClients,omitempty"` // session registry capacity
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// ProviderConfig selects and configures the generation provider.
type ProviderConfig struct {
	Name           string `yaml:"name,omitempty"` // "openai" | "gemini"
	APIKey         string `yaml:"apiKey,omitempty"`
	OrgID          string `yaml:"orgId,omitempty"`
	BaseURL        string `yaml:"baseUrl,omitempty"`
	Model          string `yaml:"model,omitempty"`
	ImageModel     string `yaml:"imageModel,omitempty"`
	SpeechModel    string `yaml:"speechModel,omitempty"`
	Voice          string `yaml:"voice,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // per-call ceiling
}

// UploadsConfig controls the asset upload endpoint and storage.
type UploadsConfig struct {
	Dir     string `yaml:"dir,omitempty"`     // asset bytes + index location (default <data>/uploads)
	BaseURL string `yaml:"baseUrl,omitempty"` // public prefix for returned asset URLs
}

// LimitsConfig holds the request size ceilings.
type LimitsConfig struct {
	PromptMax      int `yaml:"promptMax,omitempty"`
	ImagePromptMax int `yaml:"imagePromptMax,omitempty"`
	AssetMaxKiB    int `yaml:"assetMaxKiB,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`  // optional rotating log file
}

// TelemetryConfig controls the OpenTelemetry metrics exporter.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	File    string `yaml:"file,omitempty"` // metrics output file (default <logs>/cleo_metrics.log)
}
