package movefx

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightgroove/internal/logger"
)

func TestLoadMissing(t *testing.T) {
	s := NewStore(logger.Discard(), filepath.Join(t.TempDir(), "none.json"), 0, 0)
	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), st)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "move.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	st, err := NewStore(logger.Discard(), path, 0, 0).Load()
	assert.Error(t, err)
	assert.Equal(t, DefaultState(), st)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "move.json")
	s := NewStore(logger.Discard(), path, 0, 0)
	want := State{CenterPan: 0.3, CenterTilt: 0.6, Size: 0.8, BPM: 90, Phase: 0.25, Speed: 1.5}
	require.NoError(t, s.Save(want))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, k := range []string{"center_pan", "center_tilt", "fx_size", "bpm", "move_phase", "move_speed_multiplier"} {
		assert.Contains(t, keys, k)
	}

	got, err := NewStore(logger.Discard(), path, 0, 0).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left")
}

func TestAutosaveAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "move.json")
	s := NewStore(logger.Discard(), path, 10*time.Millisecond, 0)
	e := NewEngine(logger.Discard(), newFakeMovers(), DefaultState(), s)
	s.Start(context.Background(), e.Snapshot)

	e.SetBPM(150)
	assert.Eventually(t, func() bool {
		got, err := NewStore(logger.Discard(), path, 0, 0).Load()
		return err == nil && got.BPM == 150
	}, time.Second, 10*time.Millisecond)

	e.SetSize(0.1)
	require.NoError(t, s.Close())
	got, err := NewStore(logger.Discard(), path, 0, 0).Load()
	require.NoError(t, err)
	assert.Equal(t, 0.1, got.Size)
}

func TestAutosaveDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "move.json")
	s := NewStore(logger.Discard(), path, 10*time.Millisecond, time.Hour)
	require.NoError(t, s.Save(DefaultState()))

	st := DefaultState()
	st.BPM = 77
	s.Start(context.Background(), func() State { return st })
	s.MarkDirty()
	time.Sleep(60 * time.Millisecond)

	got, err := NewStore(logger.Discard(), path, 0, 0).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBPM, got.BPM, "debounce window holds the write")

	require.NoError(t, s.Close())
	got, err = NewStore(logger.Discard(), path, 0, 0).Load()
	require.NoError(t, err)
	assert.Equal(t, 77, got.BPM)
}
