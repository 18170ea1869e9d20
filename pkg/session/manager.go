package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// EditorFactory builds the Editor of a new session.
type EditorFactory func() *mango.Editor

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to editing sessions.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.DocumentStore
	factory EditorFactory

	mu      sync.Mutex // guards locks and editors
	locks   map[string]*lockEntry
	editors map[string]*mango.Editor

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorFactory sets how new session editors are built.
func WithEditorFactory(factory EditorFactory) Option {
	return func(m *Manager) {
		m.factory = factory
	}
}

// NewManager creates a Manager persisting to store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*mango.Editor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.factory == nil {
		logger := m.logger
		m.factory = func() *mango.Editor {
			return mango.New(
				mango.WithLogger(logger),
				mango.WithStdin(strings.NewReader("")),
				mango.WithStdout(io.Discard),
			)
		}
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(name) after unlocking.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

// WithLock executes fn while holding the lock for name.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := m.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(name)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"graph", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Edit runs fn against the editor of name, loading it from the store on
// first use. A name the store does not hold starts as an empty graph.
func (m *Manager) Edit(ctx context.Context, name string, fn func(*mango.Editor) error) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		ed, err := m.editor(ctx, name)
		if err != nil {
			return err
		}
		return fn(ed)
	})
}

// editor must be called with the lock of name held.
func (m *Manager) editor(ctx context.Context, name string) (*mango.Editor, error) {
	m.mu.Lock()
	ed, ok := m.editors[name]
	m.mu.Unlock()
	if ok {
		return ed, nil
	}

	ed = m.factory()
	data, err := m.store.Load(ctx, name)
	switch {
	case errors.Is(err, ports.ErrDocumentNotFound):
		m.logger.Debug("Starting new graph", "graph", name)
	case err != nil:
		return nil, fmt.Errorf("failed to load graph %q: %w", name, err)
	default:
		if err := ed.Load(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to open graph %q: %w", name, err)
		}
	}

	m.mu.Lock()
	m.editors[name] = ed
	m.mu.Unlock()
	return ed, nil
}

// Save persists the current document of name.
func (m *Manager) Save(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		ed, err := m.editor(ctx, name)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := ed.Save(&buf); err != nil {
			return err
		}
		return m.store.Save(ctx, name, buf.Bytes())
	})
}

// Delete removes the graph from the store and closes its session.
func (m *Manager) Delete(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		m.Close(name)
		return m.store.Delete(ctx, name)
	})
}

// Close drops the live editor of name without saving. Unsaved edits are lost.
func (m *Manager) Close(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.editors, name)
}

// List returns the stored graph names together with the open ones.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	stored, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(stored))
	names := append([]string{}, stored...)
	for _, name := range stored {
		seen[name] = true
	}

	m.mu.Lock()
	for name := range m.editors {
		if !seen[name] {
			names = append(names, name)
		}
	}
	m.mu.Unlock()

	sort.Strings(names)
	return names, nil
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}
