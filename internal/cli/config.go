package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/adapters/file"
	"github.com/aretw0/thicket/pkg/adapters/loam"
	"github.com/aretw0/thicket/pkg/adapters/memory"
	"github.com/aretw0/thicket/pkg/adapters/redis"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/persistence/middleware"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/session"
)

// Store backends accepted by --store.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Loader backends accepted by --loader.
const (
	LoaderFile = "file"
	LoaderLoam = "loam"
)

// Config is the resolved set of persistent CLI flags.
type Config struct {
	Dir       string
	Debug     bool
	Store     string
	RedisAddr string
	SessionID string
	Loader    string

	// StoreKey is a base64 AES-256 key. When set, item states are
	// encrypted before they reach the store.
	StoreKey string
}

// Logger returns a debug logger on stderr when Debug is set, a no-op otherwise.
func (c Config) Logger() *slog.Logger {
	if c.Debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// SessionsDir is where the file store keeps sessions: <dir>/.thicket/sessions.
func (c Config) SessionsDir() string {
	return filepath.Join(c.dir(), ".thicket", "sessions")
}

func (c Config) dir() string {
	if c.Dir == "" {
		return "."
	}
	return c.Dir
}

// NewLoader builds the tree catalog selected by --loader.
func NewLoader(c Config, logger *slog.Logger) (ports.TreeLoader, error) {
	switch c.Loader {
	case "", LoaderFile:
		return file.NewLoader(c.dir(), file.WithLogger(logger)), nil
	case LoaderLoam:
		l, err := loam.Open(c.dir())
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown loader %q (want %s or %s)", c.Loader, LoaderFile, LoaderLoam)
	}
}

// NewStore builds the session store selected by --store. The redis backend
// also returns a locker so concurrent servers serialize updates per session.
func NewStore(c Config) (ports.StateStore, ports.DistributedLocker, error) {
	store, locker, err := newBackend(c)
	if err != nil || c.StoreKey == "" {
		return store, locker, err
	}

	key, err := base64.StdEncoding.DecodeString(c.StoreKey)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid store key: %w", err)
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid store key: %w", err)
	}
	return middleware.Chain(store, mw), locker, nil
}

func newBackend(c Config) (ports.StateStore, ports.DistributedLocker, error) {
	switch c.Store {
	case "", StoreFile:
		return file.New(c.SessionsDir()), nil, nil
	case StoreMemory:
		return memory.NewStore(), nil, nil
	case StoreRedis:
		if c.RedisAddr == "" {
			return nil, nil, fmt.Errorf("--store redis requires --redis-addr")
		}
		st := redis.New(c.RedisAddr)
		return st, redis.NewLocker(st.Client(), "thicket:"), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreFile, StoreMemory, StoreRedis)
	}
}

// NewService wires loader, store and locker into a thicket.Service.
func NewService(c Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*thicket.Service, ports.TreeLoader, error) {
	loader, err := NewLoader(c, logger)
	if err != nil {
		return nil, nil, err
	}
	store, locker, err := NewStore(c)
	if err != nil {
		return nil, nil, err
	}

	var opts []session.Option
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	opts = append(opts, session.WithLogger(logger))

	svc := thicket.NewService(loader, session.NewManager(store, opts...),
		thicket.WithServiceHooks(hooks),
		thicket.WithServiceLogger(logger),
	)
	return svc, loader, nil
}

// MountTree loads treeID and mounts it on a thicket.Tree with the tree's own
// options, ready for the REPL or the renderers.
func MountTree(ctx context.Context, c Config, treeID string, logger *slog.Logger, opts ...thicket.Option) (*thicket.Tree, domain.Tree, error) {
	loader, err := NewLoader(c, logger)
	if err != nil {
		return nil, domain.Tree{}, err
	}
	return mount(loader, treeID, logger, opts...)
}

func mount(loader ports.TreeLoader, treeID string, logger *slog.Logger, opts ...thicket.Option) (*thicket.Tree, domain.Tree, error) {
	tr, err := loader.GetTree(treeID)
	if err != nil {
		return nil, domain.Tree{}, err
	}
	base := []thicket.Option{
		thicket.WithOptions(tr.ResolvedOptions()),
		thicket.WithTreeID(tr.ID),
		thicket.WithLogger(logger),
	}
	t, err := thicket.New(tr.Items, append(base, opts...)...)
	if err != nil {
		return nil, domain.Tree{}, fmt.Errorf("tree %q: %w", treeID, err)
	}
	return t, tr, nil
}
