package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    Server    `toml:"server"`
	Registry  Registry  `toml:"registry"`
	Cache     Cache     `toml:"cache"`
	History   History   `toml:"history"`
	Watch     Watch     `toml:"watch"`
	Telemetry Telemetry `toml:"telemetry"`
}

type Server struct {
	Addr string `toml:"addr"`
}

type Registry struct {
	PyPIURL string        `toml:"pypi_url"`
	NPMURL  string        `toml:"npm_url"`
	Timeout time.Duration `toml:"timeout"`
	Rate    float64       `toml:"rate"`
	Burst   int           `toml:"burst"`
}

type Cache struct {
	Enabled bool          `toml:"enabled"`
	Addr    string        `toml:"addr"`
	TTL     time.Duration `toml:"ttl"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Paths    []string      `toml:"paths"`
	Debounce time.Duration `toml:"debounce"`
	Exclude  []string      `toml:"exclude"` // glob patterns
}

type Telemetry struct {
	TraceExporter string `toml:"trace_exporter"` // none, otlp, stdout
	OTLPEndpoint  string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Registry.Timeout == 0 {
		cfg.Registry.Timeout = 3 * time.Second
	}
	if cfg.Registry.Rate == 0 {
		cfg.Registry.Rate = 10
	}
	if cfg.Registry.Burst == 0 {
		cfg.Registry.Burst = 5
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "./weready.db"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if len(cfg.Watch.Paths) == 0 {
		cfg.Watch.Paths = []string{"."}
	}
	if cfg.Telemetry.TraceExporter == "" {
		cfg.Telemetry.TraceExporter = "none"
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = "localhost:4317"
	}
}
