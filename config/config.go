package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

type Config struct {
	DataDir   string    `toml:"DataDir"`
	Backend   string    `toml:"Backend"`
	Mining    Mining    `toml:"Mining"`
	Logging   Logging   `toml:"Logging"`
	Telemetry Telemetry `toml:"Telemetry"`
	Query     Query     `toml:"Query"`
	EventLog  EventLog  `toml:"EventLog"`
}

// Default returns the configuration written for a fresh node.
func Default() *Config {
	return &Config{
		DataDir: "./farm-data",
		Backend: BackendLevelDB,
		Mining: Mining{
			MaxFarmEntriesPerDeposit:  5,
			MinTotalFarmRewards:       "1000",
			MinPlannedYieldingPeriods: 100,
			NftClassID:                1,
			PalletID:                  "lm/xyk",
		},
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Telemetry: Telemetry{
			Endpoint: "localhost:4318",
			Traces:   true,
		},
		Query: Query{
			ListenAddress:     "127.0.0.1:8088",
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Load loads the configuration from the given path. A missing file is created
// with the defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0].String())
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
