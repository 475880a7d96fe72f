package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version string        `yaml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// MaxUploadBytes caps multipart document uploads.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"max_upload_bytes"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend" json:"backend"`
	DataDir     string `yaml:"data_dir" json:"data_dir"`
	SQLitePath  string `yaml:"sqlite_path" json:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr" json:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix" json:"redis_prefix"`
	KeyPrefix   string `yaml:"key_prefix" json:"key_prefix"`

	// WriteTimeout bounds each mirror write to the backend.
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (s *ServerConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = ":42069"
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = 10 << 20
	}
}

func (s *StorageConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Backend) == "" {
		s.Backend = "file"
	}
	if strings.TrimSpace(s.DataDir) == "" {
		s.DataDir = "data"
	}
	if strings.TrimSpace(s.SQLitePath) == "" {
		s.SQLitePath = s.DataDir + "/todesk.db"
	}
	if strings.TrimSpace(s.RedisAddr) == "" {
		s.RedisAddr = "localhost:6379"
	}
	if s.RedisPrefix == "" {
		s.RedisPrefix = "todesk:"
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "todoDesk_"
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 5 * time.Second
	}
}

func (l *LogConfig) ApplyDefaults() {
	if strings.TrimSpace(l.Level) == "" {
		l.Level = "info"
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Log.ApplyDefaults()
}

// Load reads a YAML config file. A missing file yields the defaults.
// Environment overrides are applied on top either way.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, err
		}
	}
	r.ApplyEnv()
	r.ApplyDefaults()
	return &r, nil
}
