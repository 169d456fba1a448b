package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/markov/pkg/adapters/bolt"
	"github.com/aretw0/markov/pkg/adapters/file"
	"github.com/aretw0/markov/pkg/adapters/memory"
	"github.com/aretw0/markov/pkg/adapters/redis"
	"github.com/aretw0/markov/pkg/persistence/middleware"
	"github.com/aretw0/markov/pkg/ports"
)

// Store bundles a session store with the resources it holds.
type Store struct {
	ports.SessionStore
	// Locker is set for backends shared between processes.
	Locker ports.DistributedLocker
	close  func() error
}

// EnvStoreKey holds a hex-encoded 32-byte key. When set, sessions are sealed at rest.
const EnvStoreKey = "MARKOV_STORE_KEY"

// StoreOptions decorate an opened backend.
type StoreOptions struct {
	// Key seals sessions with AES-256-GCM.
	Key []byte
	// FallbackKeys still open sessions sealed before a key rotation.
	FallbackKeys [][]byte
	// HistoryLimit bounds the steps kept per session. Zero keeps them all.
	HistoryLimit int
}

// StoreOptionsFromEnv reads the sealing key from MARKOV_STORE_KEY.
// Older keys may follow the active one, separated by commas.
func StoreOptionsFromEnv() (StoreOptions, error) {
	var opts StoreOptions
	v := strings.TrimSpace(os.Getenv(EnvStoreKey))
	if v == "" {
		return opts, nil
	}
	for i, part := range strings.Split(v, ",") {
		key, err := hex.DecodeString(strings.TrimSpace(part))
		if err != nil {
			return opts, fmt.Errorf("%s: key %d is not hex: %w", EnvStoreKey, i+1, err)
		}
		if i == 0 {
			opts.Key = key
		} else {
			opts.FallbackKeys = append(opts.FallbackKeys, key)
		}
	}
	return opts, nil
}

// Use wraps the backend with the middlewares selected by opts.
func (s *Store) Use(opts StoreOptions) error {
	mws := []middleware.Middleware{middleware.NewHistoryLimitMiddleware(opts.HistoryLimit)}
	if len(opts.Key) > 0 {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    opts.Key,
			FallbackKeys: opts.FallbackKeys,
		})
		if err != nil {
			return err
		}
		mws = append(mws, seal)
	}
	s.SessionStore = middleware.Chain(s.SessionStore, mws...)
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens a session store from a DSN:
//
//	memory                 in-process, lost on exit
//	file:DIR               one JSON file per session (default .markov/sessions)
//	bolt:PATH              embedded bbolt database
//	redis://host:port/db   shared Redis, with distributed locking
func OpenStore(dsn string) (*Store, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return &Store{SessionStore: memory.NewStore()}, nil

	case dsn == "file" || strings.HasPrefix(dsn, "file:"):
		dir := strings.TrimPrefix(strings.TrimPrefix(dsn, "file"), ":")
		return &Store{SessionStore: file.New(dir)}, nil

	case strings.HasPrefix(dsn, "bolt:"):
		path := strings.TrimPrefix(dsn, "bolt:")
		if path == "" {
			return nil, fmt.Errorf("bolt store needs a database path (bolt:PATH)")
		}
		db, err := bolt.Open(path)
		if err != nil {
			return nil, err
		}
		return &Store{SessionStore: db, close: db.Close}, nil

	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		rs, err := redis.NewFromURL(dsn)
		if err != nil {
			return nil, err
		}
		return &Store{
			SessionStore: rs,
			Locker:       redis.NewLocker(rs.Client(), rs.Prefix()),
			close:        rs.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported session store %q (use memory, file:DIR, bolt:PATH or redis://...)", dsn)
}
