package watchlist

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = []string{"RELIANCE.NS", "INFY.NS", "TCS.NS", "HDFCBANK.NS"}

func TestNewManager_SeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "watchlist.json")
	m, err := NewManager(path, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, m.List())

	state, err := LoadState(path)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, defaults, state.Symbols)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestManager_AddRemovePersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	m, err := NewManager(path, defaults)
	require.NoError(t, err)

	list, err := m.Add("wipro.ns", "INFY.NS")
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, defaults...), "WIPRO.NS"), list)

	list, err = m.Remove("tcs.ns", "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, []string{"RELIANCE.NS", "INFY.NS", "HDFCBANK.NS", "WIPRO.NS"}, list)

	reloaded, err := NewManager(path, []string{"IGNORED.NS"})
	require.NoError(t, err)
	assert.Equal(t, list, reloaded.List(), "saved list wins over defaults")
}

func TestManager_InMemory(t *testing.T) {
	m, err := NewManager("", []string{"a", "A", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, m.List())

	list := m.List()
	list[0] = "MUTATED"
	assert.Equal(t, "A", m.List()[0], "List returns a copy")
}

func TestManager_ConcurrentAdds(t *testing.T) {
	m, err := NewManager("", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, s := range []string{"A", "B", "C", "D", "E", "F"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Add(s)
		}()
	}
	wg.Wait()
	assert.ElementsMatch(t, []string{"A", "B", "C", "D", "E", "F"}, m.List())
}

func TestLoadState_Missing(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestManager_FailedSaveKeepsList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	m, err := NewManager(path, []string{"A.NS", "C.NS"})
	require.NoError(t, err)

	// A directory in place of the state file makes every write fail.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err = m.Add("B.NS")
	require.Error(t, err)
	assert.Equal(t, []string{"A.NS", "C.NS"}, m.List())

	_, err = m.Remove("A.NS")
	require.Error(t, err)
	assert.Equal(t, []string{"A.NS", "C.NS"}, m.List())
}
