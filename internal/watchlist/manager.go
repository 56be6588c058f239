package watchlist

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"StockPulse/internal/model"
)

// Manager holds the default symbol list with concurrency safety.
// An empty filePath keeps the list in memory only.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager loads the watchlist from disk, seeding it with defaults on first run.
func NewManager(filePath string, defaults []string) (*Manager, error) {
	var state *State
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load watchlist: %w", err)
		}
		state = loaded
	}
	if state == nil {
		state = &State{Symbols: model.NormalizeSymbols(defaults)}
	}
	state.Symbols = model.NormalizeSymbols(state.Symbols)

	m := &Manager{state: state, filePath: filePath}
	if _, err := m.commit(state.Symbols); err != nil {
		return nil, fmt.Errorf("save watchlist: %w", err)
	}
	return m, nil
}

// List returns a copy of the current symbols.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.state.Symbols))
	copy(out, m.state.Symbols)
	return out
}

// Add appends symbols not already present and returns the resulting list.
// The list is unchanged when it cannot be saved.
func (m *Manager) Add(symbols ...string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]string, 0, len(m.state.Symbols)+len(symbols))
	next = append(next, m.state.Symbols...)
	return m.commit(model.NormalizeSymbols(append(next, symbols...)))
}

// Remove drops symbols from the list and returns the resulting list.
// The list is unchanged when it cannot be saved.
func (m *Manager) Remove(symbols ...string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool)
	for _, s := range model.NormalizeSymbols(symbols) {
		drop[s] = true
	}
	next := make([]string, 0, len(m.state.Symbols))
	for _, s := range m.state.Symbols {
		if !drop[s] {
			next = append(next, s)
		}
	}
	return m.commit(next)
}

// commit persists symbols and only then makes them current. m.mu must be held.
func (m *Manager) commit(symbols []string) ([]string, error) {
	next := &State{Symbols: symbols, UpdatedAt: m.state.UpdatedAt}
	if m.filePath != "" {
		if err := SaveState(m.filePath, next); err != nil {
			log.Error().Err(err).Str("path", m.filePath).Msg("failed to save watchlist")
			return nil, err
		}
	}
	m.state = next
	return append([]string(nil), symbols...), nil
}
