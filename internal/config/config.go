package config

import "fmt"

const (
	// DefaultListenAddr is used when the host does not inject an explicit address.
	DefaultListenAddr = "127.0.0.1:50051"
	DefaultLogLevel   = "info"
)

// Config captures bootstrap configuration extracted from an optional YAML
// file, the JSON payload in NUPI_ADAPTER_CONFIG and environment variables.
type Config struct {
	ListenAddr    string `yaml:"listen_addr" json:"listen_addr"`
	MetricsAddr   string `yaml:"metrics_addr" json:"metrics_addr"`
	LogLevel      string `yaml:"log_level" json:"log_level"`
	ModelPath     string `yaml:"model_path" json:"model_path"`
	UseStubEngine bool   `yaml:"use_stub_engine" json:"use_stub_engine"`
	// Threads and AudioCtx override the fixed decoding profile. Nil keeps
	// the profile value.
	Threads  *int `yaml:"threads" json:"threads"`
	AudioCtx *int `yaml:"audio_ctx" json:"audio_ctx"`
}

// Validate applies defaults, checks required fields, and rejects out-of-range
// values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Threads != nil && *c.Threads < 0 {
		return fmt.Errorf("config: threads must be >= 0, got %d", *c.Threads)
	}
	if c.Threads != nil && *c.Threads == 0 {
		c.Threads = nil
	}
	if c.AudioCtx != nil && *c.AudioCtx < 0 {
		return fmt.Errorf("config: audio_ctx must be >= 0, got %d", *c.AudioCtx)
	}
	if c.AudioCtx != nil && *c.AudioCtx == 0 {
		c.AudioCtx = nil
	}
	return nil
}
