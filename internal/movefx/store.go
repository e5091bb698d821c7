package movefx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"lightgroove/internal/logger"
)

const (
	DefaultAutosaveInterval = time.Second
	DefaultDebounce         = 2 * time.Second
)

// Store persists State as JSON and autosaves it in the background.
type Store struct {
	log      logger.Logger
	path     string
	interval time.Duration
	debounce time.Duration

	dirty atomic.Bool

	// mu guards the file and the last saved snapshot.
	mu       sync.Mutex
	last     State
	saved    bool
	lastSave time.Time

	cancel context.CancelFunc
	done   chan struct{}
	source func() State
}

// NewStore конструктор. Non-positive durations select the defaults.
func NewStore(log logger.Logger, path string, interval, debounce time.Duration) *Store {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	if debounce < 0 {
		debounce = DefaultDebounce
	}
	return &Store{log: log, path: path, interval: interval, debounce: debounce}
}

func (s *Store) logger() *logger.Log {
	return s.log.With(logger.Fields{"module": "movefx-store"})
}

// Load reads the saved state. A missing file yields DefaultState and no error.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultState(), nil
	}
	if err != nil {
		return DefaultState(), fmt.Errorf("read move state: %w", err)
	}

	st := DefaultState()
	if err := json.Unmarshal(data, &st); err != nil {
		return DefaultState(), fmt.Errorf("parse move state %s: %w", s.path, err)
	}
	st = st.normalize()

	s.mu.Lock()
	s.last, s.saved = st, true
	s.mu.Unlock()
	return st, nil
}

// MarkDirty flags the state for the next autosave tick.
func (s *Store) MarkDirty() {
	s.dirty.Store(true)
}

// Save writes st unless it equals what is already on disk.
func (s *Store) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved && s.last == st {
		return nil
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode move state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := atomicWrite(s.path, data, dir); err != nil {
		return fmt.Errorf("write move state: %w", err)
	}
	s.last, s.saved, s.lastSave = st, true, time.Now()
	return nil
}

// Start launches the autosave loop; source snapshots the current state.
func (s *Store) Start(ctx context.Context, source func() State) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.source = source
	go s.autosave(ctx)
	s.logger().Infof("Autosaving to %s every %s", s.path, s.interval)
}

func (s *Store) autosave(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick()
		}
	}
}

func (s *Store) tick() {
	if !s.dirty.Load() {
		return
	}
	s.mu.Lock()
	wait := s.debounce - time.Since(s.lastSave)
	s.mu.Unlock()
	if wait > 0 {
		return
	}
	s.dirty.Store(false)
	if err := s.Save(s.source()); err != nil {
		s.dirty.Store(true)
		s.logger().Errorf("Autosave failed: %v", err)
	}
}

// Close stops the autosave loop and forces a final save.
func (s *Store) Close() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.cancel = nil

	if err := s.Save(s.source()); err != nil {
		return err
	}
	s.logger().Infof("Move state saved to %s", s.path)
	return nil
}

func atomicWrite(path string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	success = true
	return nil
}
