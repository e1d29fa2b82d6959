// Package memory provides in-memory store implementations for
// development/testing.
package memory

import (
	"context"
	"sync"

	"github.com/cdoyle/beacon/internal/project"
)

// ProjectStore provides an in-memory project.Store.
type ProjectStore struct {
	mu       sync.RWMutex
	configs  map[string]project.Config
	argNames map[string][]string

	// FailWith, when set, is returned by every lookup.
	FailWith error
}

// NewProjectStore constructs an empty ProjectStore.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		configs:  make(map[string]project.Config),
		argNames: make(map[string][]string),
	}
}

// SetProject registers a project with its extra-arg names.
func (s *ProjectStore) SetProject(slug string, cfg project.Config, argNames []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[slug] = cfg
	s.argNames[slug] = append([]string(nil), argNames...)
}

// RemoveProject deletes a project, simulating a disable.
func (s *ProjectStore) RemoveProject(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, slug)
	delete(s.argNames, slug)
}

// GetProject returns a copy of the registered config, or nil when absent.
func (s *ProjectStore) GetProject(_ context.Context, slug string) (*project.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	cfg, ok := s.configs[slug]
	if !ok {
		return nil, nil
	}
	cp := cfg
	return &cp, nil
}

// ListExtraArgNames returns the registered names in order.
func (s *ProjectStore) ListExtraArgNames(_ context.Context, slug string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	return append([]string(nil), s.argNames[slug]...), nil
}
