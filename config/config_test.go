package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"farmchain/native/xykmining"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "farmd.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmd.toml")
	contents := `DataDir = "./state"
Backend = "Bolt"

[Mining]
MaxFarmEntriesPerDeposit = 3
MinTotalFarmRewards = "1000000000000000000000"
MinPlannedYieldingPeriods = 14400
NftClassID = 42
PalletID = "lm/xyk-test"

[Logging]
Level = "DEBUG"
File = "./logs/farmd.log"
MaxSizeMB = 10

[Telemetry]
Enabled = true
Endpoint = "collector:4318"
Traces = true

[Query]
ListenAddress = ":9000"
RequestsPerSecond = 5.5
Burst = 10

[EventLog]
Path = "./events.db"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendBolt, cfg.Backend)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 5, cfg.Logging.MaxBackups)
	require.Equal(t, "./events.db", cfg.EventLog.Path)
	require.Equal(t, 5.5, cfg.Query.RequestsPerSecond)

	params, err := cfg.Mining.Params()
	require.NoError(t, err)
	require.Equal(t, uint8(3), params.MaxFarmEntriesPerDeposit)
	require.Equal(t, uint64(14400), params.MinPlannedYieldingPeriods)
	require.Equal(t, "1000000000000000000000", params.MinTotalFarmRewards.Dec())
	require.Equal(t, xykmining.Config{PalletID: "lm/xyk-test", NFTClassID: 42}, cfg.Mining.Module())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farmd.toml")
	require.NoError(t, os.WriteFile(path, []byte("Backend = \"memory\"\nListenAddress = \":6001\"\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "ListenAddress"))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, "unknown backend"},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, "DataDir required"},
		{"zero entries", func(c *Config) { c.Mining.MaxFarmEntriesPerDeposit = 0 }, "max farm entries"},
		{"bad min rewards", func(c *Config) { c.Mining.MinTotalFarmRewards = "lots" }, "MinTotalFarmRewards"},
		{"class outside reserved range", func(c *Config) { c.Mining.NftClassID = 1000 }, "reserved range"},
		{"empty pallet", func(c *Config) { c.Mining.PalletID = "" }, "pallet id"},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, "unknown level"},
		{"file without size", func(c *Config) { c.Logging.File = "x.log"; c.Logging.MaxSizeMB = 0 }, "MaxSizeMB"},
		{"telemetry without signals", func(c *Config) { c.Telemetry.Enabled = true; c.Telemetry.Traces = false }, "telemetry"},
		{"rate without burst", func(c *Config) { c.Query.Burst = 0 }, "Burst"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}

	cfg := Default()
	cfg.Backend = BackendMemory
	cfg.DataDir = ""
	require.NoError(t, cfg.Validate())
}
