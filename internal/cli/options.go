package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/logging"
	"github.com/slipstream/mango/internal/metrics"
	"github.com/slipstream/mango/pkg/adapters/file"
	"github.com/slipstream/mango/pkg/adapters/redis"
	"github.com/slipstream/mango/pkg/persistence/middleware"
	"github.com/slipstream/mango/pkg/ports"
	"github.com/slipstream/mango/pkg/session"
)

// Options is the configuration resolved from the command line.
type Options struct {
	// Dir holds the YAML documents of the file store.
	Dir string
	// RedisAddr switches the document store to redis when set.
	RedisAddr string
	// Input feeds standard-in nodes. Empty means the process stdin.
	Input string
	// EncryptionKey, when set, encrypts stored documents with AES-256-GCM.
	EncryptionKey []byte
	Debug         bool
	Lenient       bool

	Stdout io.Writer
	Stderr io.Writer
}

// Storage bundles a document store with what the sessions need from it.
type Storage struct {
	Store  ports.DocumentStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connection, if any.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

// Logger configures the application logger on stderr, keeping stdout for
// graph output. Without --debug only load and wiring warnings show.
func (o Options) Logger() *slog.Logger {
	level := slog.LevelWarn
	if o.Debug {
		level = slog.LevelDebug
	}
	return logging.NewWithWriter(o.stderr(), level, logging.FormatText)
}

// OpenStorage opens the document store selected by the options.
func (o Options) OpenStorage() (*Storage, error) {
	storage := &Storage{Store: file.New(o.Dir)}
	if o.RedisAddr != "" {
		store := redis.New(o.RedisAddr)
		storage = &Storage{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), redis.DefaultPrefix),
			close:  store.Client().Close,
		}
	}
	if len(o.EncryptionKey) > 0 {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: o.EncryptionKey})
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		storage.Store = middleware.Chain(storage.Store, mw)
	}
	return storage, nil
}

// OpenInput opens the reader behind standard-in nodes.
func (o Options) OpenInput(fallback io.Reader) (io.Reader, func() error, error) {
	if o.Input == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.Open(o.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, f.Close, nil
}

// EditorOptions returns the editor options shared by every mode.
func (o Options) EditorOptions(stdin io.Reader, m *metrics.Metrics) []mango.Option {
	opts := []mango.Option{
		mango.WithLogger(o.Logger()),
		mango.WithStdin(stdin),
		mango.WithStdout(o.stdout()),
		mango.WithLenientLoad(o.Lenient),
	}
	if m != nil {
		opts = append(opts, mango.WithMetrics(m))
	}
	return opts
}

// NewSessions builds a session manager over storage. Editors of served
// graphs read standard-in nodes from the input file only.
func (o Options) NewSessions(storage *Storage, m *metrics.Metrics) (*session.Manager, error) {
	var input []byte
	if o.Input != "" {
		data, err := os.ReadFile(o.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		input = data
	}
	opts := []session.Option{
		session.WithLogger(o.Logger()),
		session.WithEditorFactory(func() *mango.Editor {
			editorOpts := o.EditorOptions(bytes.NewReader(input), m)
			editorOpts = append(editorOpts, mango.WithStdout(io.Discard))
			return mango.New(editorOpts...)
		}),
	}
	if storage.Locker != nil {
		opts = append(opts, session.WithLocker(storage.Locker))
	}
	return session.NewManager(storage.Store, opts...), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
