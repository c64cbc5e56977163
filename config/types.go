package config

// Mining carries the liquidity mining limits and the deposit NFT binding.
type Mining struct {
	MaxFarmEntriesPerDeposit  uint8  `toml:"MaxFarmEntriesPerDeposit"`
	MinTotalFarmRewards       string `toml:"MinTotalFarmRewards"`
	MinPlannedYieldingPeriods uint64 `toml:"MinPlannedYieldingPeriods"`
	NftClassID                uint64 `toml:"NftClassID"`
	PalletID                  string `toml:"PalletID"`
	Paused                    bool   `toml:"Paused"`
}

// Logging controls the structured logger. An empty File keeps logs on stdout.
type Logging struct {
	Level       string `toml:"Level"`
	Environment string `toml:"Environment"`
	File        string `toml:"File"`
	MaxSizeMB   int    `toml:"MaxSizeMB"`
	MaxBackups  int    `toml:"MaxBackups"`
	MaxAgeDays  int    `toml:"MaxAgeDays"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Enabled     bool    `toml:"Enabled"`
	Endpoint    string  `toml:"Endpoint"`
	Insecure    bool    `toml:"Insecure"`
	Headers     string  `toml:"Headers"`
	Traces      bool    `toml:"Traces"`
	Metrics     bool    `toml:"Metrics"`
	SampleRatio float64 `toml:"SampleRatio"`
}

// Query configures the read-only HTTP API.
type Query struct {
	ListenAddress     string  `toml:"ListenAddress"`
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Burst             int     `toml:"Burst"`
}

// EventLog configures the sqlite or postgres index of emitted events. An empty Path
// disables it.
type EventLog struct {
	Path string `toml:"Path"`
}
