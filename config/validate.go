package config

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	lm "farmchain/native/liquiditymining"
	"farmchain/native/xykmining"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the decoded configuration before any component starts.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendLevelDB, BackendBolt:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("node: DataDir required for %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("node: unknown backend %q", c.Backend)
	}
	if _, err := c.Mining.Params(); err != nil {
		return err
	}
	if err := c.Mining.Module().Validate(); err != nil {
		return fmt.Errorf("mining: %w", err)
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging: MaxSizeMB must be positive when File is set")
	}
	if c.Telemetry.Enabled && !c.Telemetry.Traces && !c.Telemetry.Metrics {
		return fmt.Errorf("telemetry: enabled without traces or metrics")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry: SampleRatio must be within [0,1]")
	}
	if c.Query.RequestsPerSecond < 0 || c.Query.Burst < 0 {
		return fmt.Errorf("query: rate limits must not be negative")
	}
	if c.Query.RequestsPerSecond > 0 && c.Query.Burst == 0 {
		return fmt.Errorf("query: Burst must be positive when RequestsPerSecond is set")
	}
	return nil
}

// Params converts the mining section into engine parameters.
func (m Mining) Params() (lm.Params, error) {
	params := lm.DefaultParams()
	params.MaxFarmEntriesPerDeposit = m.MaxFarmEntriesPerDeposit
	params.MinPlannedYieldingPeriods = m.MinPlannedYieldingPeriods
	if raw := strings.TrimSpace(m.MinTotalFarmRewards); raw != "" {
		value, err := uint256.FromDecimal(raw)
		if err != nil {
			return params, fmt.Errorf("invalid mining.MinTotalFarmRewards: %w", err)
		}
		params.MinTotalFarmRewards = value
	}
	if err := params.Validate(); err != nil {
		return params, fmt.Errorf("mining: %w", err)
	}
	return params, nil
}

// Module returns the xyk module binding of the mining section.
func (m Mining) Module() xykmining.Config {
	return xykmining.Config{PalletID: m.PalletID, NFTClassID: m.NftClassID}
}
