// Package config loads IronKV's YAML configuration via Viper, mirroring
// the teacher's own Viper-based config loader.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the options named in SPEC_FULL.md §6.
type Config struct {
	Storage struct {
		Workdir      string `mapstructure:"workdir"`
		PageSize     int    `mapstructure:"page_size"`
		KeyMax       int    `mapstructure:"key_max"`
		BufferFrames int    `mapstructure:"buffer_frames"`
		WalRetries   int    `mapstructure:"wal_retries"`
		BlobCapacity int64  `mapstructure:"blob_capacity"`
	} `mapstructure:"storage"`
	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`
}

// Default returns the configuration defaults named in SPEC_FULL.md §6.
func Default() Config {
	var c Config
	c.Storage.Workdir = "."
	c.Storage.PageSize = 4096
	c.Storage.KeyMax = 256
	c.Storage.BufferFrames = 12288
	c.Storage.WalRetries = 5
	c.Storage.BlobCapacity = 100 * 1024 * 1024 * 1024
	c.Server.Addr = "127.0.0.1:8866"
	return c
}

// Load reads a YAML config file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
