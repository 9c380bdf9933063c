package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = "5000"
	DefaultAIServiceURL    = "http://ai-service:8000"
	DefaultCORSOrigin      = "*"
	DefaultHistoryCapacity = 100

	DefaultAnalyzeTimeout = 30 * time.Second
	DefaultBatchTimeout   = 60 * time.Second
	DefaultProbeTimeout   = 5 * time.Second
)

// Config holds the gateway settings. Values come from an optional YAML file
// and are then overridden by environment variables.
type Config struct {
	Server struct {
		Port       string `yaml:"port"`
		GinMode    string `yaml:"ginMode"`
		CORSOrigin string `yaml:"corsOrigin"`
	} `yaml:"server"`

	AIService struct {
		URL                   string `yaml:"url"`
		AnalyzeTimeoutSeconds int    `yaml:"analyzeTimeoutSeconds"`
		BatchTimeoutSeconds   int    `yaml:"batchTimeoutSeconds"`
		ProbeTimeoutSeconds   int    `yaml:"probeTimeoutSeconds"`
	} `yaml:"aiService"`

	History struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"history"`
}

// Load reads the YAML file at path (skipped when path is empty or missing),
// applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.GinMode = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		c.Server.CORSOrigin = v
	}
	if v := os.Getenv("AI_SERVICE_URL"); v != "" {
		c.AIService.URL = v
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"AI_ANALYZE_TIMEOUT_SECONDS", &c.AIService.AnalyzeTimeoutSeconds},
		{"AI_BATCH_TIMEOUT_SECONDS", &c.AIService.BatchTimeoutSeconds},
		{"AI_PROBE_TIMEOUT_SECONDS", &c.AIService.ProbeTimeoutSeconds},
		{"HISTORY_CAPACITY", &c.History.Capacity},
	}
	for _, e := range ints {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.env, v, err)
		}
		*e.dst = n
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = DefaultCORSOrigin
	}
	if c.AIService.URL == "" {
		c.AIService.URL = DefaultAIServiceURL
	}
	// history never holds more than DefaultHistoryCapacity entries
	if c.History.Capacity <= 0 || c.History.Capacity > DefaultHistoryCapacity {
		c.History.Capacity = DefaultHistoryCapacity
	}
}

// AnalyzeTimeout is the deadline for single-text analysis calls.
func (c *Config) AnalyzeTimeout() time.Duration {
	return seconds(c.AIService.AnalyzeTimeoutSeconds, DefaultAnalyzeTimeout)
}

// BatchTimeout is the deadline for batch analysis calls.
func (c *Config) BatchTimeout() time.Duration {
	return seconds(c.AIService.BatchTimeoutSeconds, DefaultBatchTimeout)
}

// ProbeTimeout is the deadline for the analysis service health probe.
func (c *Config) ProbeTimeout() time.Duration {
	return seconds(c.AIService.ProbeTimeoutSeconds, DefaultProbeTimeout)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
