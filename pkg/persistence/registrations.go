package persistence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Mauin/ReactiveAwareness/pkg/wire"
)

// LedgerVersion is the current version of the ledger file format.
const LedgerVersion = 1

// ErrUnsupportedVersion is returned when the ledger file was written by a
// newer format.
var ErrUnsupportedVersion = errors.New("unsupported ledger version")

// Registration is one persistent condition registration.
type Registration struct {
	// Name is the caller-chosen registration name.
	Name string `json:"name"`

	// Condition is the registered condition. Zero for names only seen
	// through deliveries.
	Condition wire.Condition `json:"condition"`

	// Payload is echoed in every delivery.
	Payload []byte `json:"payload,omitempty"`

	// RegisteredAt is when the registration was acknowledged.
	RegisteredAt time.Time `json:"registered_at,omitempty"`

	// LastState is the most recent state delivered for this name, if any.
	LastState *bool `json:"last_state,omitempty"`

	// LastUpdate is when LastState was received.
	LastUpdate time.Time `json:"last_update,omitempty"`
}

// Ledger is the on-disk format.
type Ledger struct {
	// Version is the ledger file format version.
	Version int `json:"version"`

	// SavedAt is when the ledger was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Registrations by name.
	Registrations map[string]Registration `json:"registrations,omitempty"`
}

// RegistrationStore manages the ledger. An empty path keeps the ledger in
// memory only.
type RegistrationStore struct {
	mu   sync.Mutex
	path string
	regs map[string]Registration
}

// NewRegistrationStore creates a store backed by path.
func NewRegistrationStore(path string) *RegistrationStore {
	return &RegistrationStore{path: path, regs: make(map[string]Registration)}
}

// Path returns the ledger file path.
func (s *RegistrationStore) Path() string {
	return s.path
}

// Load reads the ledger from disk, replacing the in-memory contents.
// A missing file yields an empty ledger.
func (s *RegistrationStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.regs = make(map[string]Registration)
		return nil
	}
	if err != nil {
		return err
	}

	ledger := &Ledger{}
	if err := json.Unmarshal(data, ledger); err != nil {
		return err
	}
	if ledger.Version > LedgerVersion {
		return ErrUnsupportedVersion
	}

	s.regs = ledger.Registrations
	if s.regs == nil {
		s.regs = make(map[string]Registration)
	}
	return nil
}

// Put records a registration. Same name replaces; replaced reports whether
// a registration with a condition was already known. The last delivered
// state survives replacement.
func (s *RegistrationStore) Put(reg Registration) (replaced bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg.RegisteredAt.IsZero() {
		reg.RegisteredAt = time.Now()
	}
	if prev, ok := s.regs[reg.Name]; ok {
		replaced = prev.Condition.Kind != 0
		if reg.LastState == nil {
			reg.LastState = prev.LastState
			reg.LastUpdate = prev.LastUpdate
		}
	}
	s.regs[reg.Name] = reg
	return replaced, s.saveLocked()
}

// Remove deletes a registration. Returns false if the name was unknown.
func (s *RegistrationStore) Remove(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regs[name]; !ok {
		return false, nil
	}
	delete(s.regs, name)
	return true, s.saveLocked()
}

// Get returns the registration for name.
func (s *RegistrationStore) Get(name string) (Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.regs[name]
	return reg, ok
}

// List returns all registrations sorted by name.
func (s *RegistrationStore) List() []Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RecordState stores the last delivered state for name. Names registered
// by other processes sharing the credentials are added without a condition.
func (s *RegistrationStore) RecordState(name string, state bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg := s.regs[name]
	reg.Name = name
	reg.LastState = &state
	reg.LastUpdate = at
	s.regs[name] = reg
	return s.saveLocked()
}

// Clear removes all registrations and the ledger file.
func (s *RegistrationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regs = make(map[string]Registration)
	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *RegistrationStore) saveLocked() error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	ledger := &Ledger{
		Version:       LedgerVersion,
		SavedAt:       time.Now(),
		Registrations: s.regs,
	}
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return err
	}

	// Write to a sibling file first so a crash never leaves a torn ledger.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
