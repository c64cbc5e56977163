package common

import (
	"errors"
	"fmt"
	"sync"
)

var ErrModulePaused = errors.New("module paused")

type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects calls into a paused module. A nil view never pauses.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return fmt.Errorf("%w: %s", ErrModulePaused, module)
	}
	return nil
}

// PauseSet is an in-memory PauseView safe for concurrent use.
type PauseSet struct {
	mu     sync.RWMutex
	paused map[string]struct{}
}

func NewPauseSet(modules ...string) *PauseSet {
	s := &PauseSet{paused: make(map[string]struct{}, len(modules))}
	for _, module := range modules {
		s.paused[module] = struct{}{}
	}
	return s
}

func (s *PauseSet) Pause(module string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused[module] = struct{}{}
}

func (s *PauseSet) Resume(module string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paused, module)
}

func (s *PauseSet) IsPaused(module string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.paused[module]
	return ok
}
