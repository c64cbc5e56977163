package clock

import (
	"fmt"
	"sync"
)

// Provider exposes the current block height to period based modules.
type Provider interface {
	CurrentBlock() uint64
}

// PeriodOf converts a block height into the period index for the given period
// length. A zero length is rejected because it has no meaningful period.
func PeriodOf(block, blocksPerPeriod uint64) (uint64, error) {
	if blocksPerPeriod == 0 {
		return 0, fmt.Errorf("clock: blocks per period must be greater than zero")
	}
	return block / blocksPerPeriod, nil
}

// Manual is a Provider driven explicitly by the caller. The simulator and the
// tests advance it block by block.
type Manual struct {
	mu     sync.RWMutex
	height uint64
}

// NewManual returns a manual clock positioned at the supplied height.
func NewManual(height uint64) *Manual {
	return &Manual{height: height}
}

// CurrentBlock implements Provider.
func (m *Manual) CurrentBlock() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.height
}

// Advance moves the clock forward by n blocks and returns the new height.
func (m *Manual) Advance(n uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += n
	return m.height
}

// Set positions the clock at height. Moving backwards is refused.
func (m *Manual) Set(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if height < m.height {
		return fmt.Errorf("clock: cannot rewind from %d to %d", m.height, height)
	}
	m.height = height
	return nil
}
