// Package config loads the studio configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/lyrebird-studio/lyrebird/pkg/llm"
)

type Config struct {
	Server  Server     `yaml:"server"`
	Engine  Engine     `yaml:"engine"`
	LLM     llm.Config `yaml:"llm"`
	Voices  Voices     `yaml:"voices"`
	Storage Storage    `yaml:"storage"`
	Tasks   Tasks      `yaml:"tasks"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Engine struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`
}

type Voices struct {
	Dir string `yaml:"dir"`
}

type Storage struct {
	// Backend selects where artifacts live: "local" or "s3".
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	S3      S3     `yaml:"s3,omitempty"`
}

type S3 struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`
}

type Tasks struct {
	// Backend selects the task store: "memory" or "badger".
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:  Server{Addr: "127.0.0.1:8000"},
		Engine:  Engine{BaseURL: "http://127.0.0.1:7860"},
		Voices:  Voices{Dir: "data/voices"},
		Storage: Storage{Backend: "local", Dir: "data/outputs"},
		Tasks:   Tasks{Backend: "memory", Workers: 4},
	}
}

// Load reads path and overlays it on the defaults, then applies
// environment overrides for credentials. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.fromEnv()
	return cfg, cfg.validate()
}

// fromEnv overlays secrets and LLM settings from the environment so
// they never have to live in the config file.
func (c *Config) fromEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LYREBIRD_ENGINE_API_KEY"); v != "" {
		c.Engine.APIKey = v
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("config: s3 storage requires a bucket")
	}
	switch c.Tasks.Backend {
	case "memory", "badger":
	default:
		return fmt.Errorf("config: unknown tasks backend %q", c.Tasks.Backend)
	}
	if c.Tasks.Backend == "badger" && c.Tasks.Dir == "" {
		return fmt.Errorf("config: badger tasks require a dir")
	}
	return nil
}
