package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Network NetworkConfig `toml:"network"`
	Limits  LimitsConfig  `toml:"limits"`
	Data    DataConfig    `toml:"data"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
}

type NetworkConfig struct {
	BindAddress  string        `toml:"bind_address"`
	OutQueueSize int           `toml:"out_queue_size"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
}

type LimitsConfig struct {
	MaxGames int `toml:"max_games"` // 0 = unlimited
}

type DataConfig struct {
	MessagesPath string `toml:"messages_path"` // optional YAML message overrides
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Impostor",
		},
		Network: NetworkConfig{
			BindAddress:  "0.0.0.0:22023",
			OutQueueSize: 256,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  60 * time.Second,
		},
		Limits: LimitsConfig{
			MaxGames: 0,
		},
		Data: DataConfig{
			MessagesPath: "data/messages.yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
