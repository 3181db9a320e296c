package infoflex

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/nakagami/firebirdsql" // Firebird driver

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// DefaultDriver is the database/sql driver registered for Firebird.
const DefaultDriver = "firebirdsql"

// Ensure Opener implements the interface.
var _ driven.StoreOpener = (*Opener)(nil)

// Opener keeps one connection pool per environment and hands out a
// dedicated connection per Open.
type Opener struct {
	driver string

	mu    sync.Mutex
	pools map[string]*pool
}

type pool struct {
	dsn string
	db  *sql.DB
}

// NewOpener creates an opener for the given database/sql driver name.
// An empty name selects the Firebird driver.
func NewOpener(driver string) *Opener {
	if driver == "" {
		driver = DefaultDriver
	}
	return &Opener{driver: driver, pools: make(map[string]*pool)}
}

// Open acquires a connection to the environment's database. The caller
// must Close the returned store to give the connection back.
func (o *Opener) Open(ctx context.Context, env domain.Environment) (driven.OrderStore, error) {
	if env.DSN == "" {
		return nil, &domain.ConfigurationError{Environment: env.ID, Err: domain.ErrMissingConnection}
	}

	db, err := o.pool(env)
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newStore(conn), nil
}

// pool returns the pool for env, replacing it when the DSN has changed.
func (o *Opener) pool(env domain.Environment) (*sql.DB, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if p, ok := o.pools[env.ID]; ok {
		if p.dsn == env.DSN {
			return p.db, nil
		}
		if err := p.db.Close(); err != nil {
			logger.Warn("environment %s: closing stale pool: %v", env.ID, err)
		}
		delete(o.pools, env.ID)
	}

	db, err := sql.Open(o.driver, env.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	o.pools[env.ID] = &pool{dsn: env.DSN, db: db}
	return db, nil
}

// Close releases every pool.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var firstErr error
	for id, p := range o.pools {
		if err := p.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", id, err)
		}
		delete(o.pools, id)
	}
	return firstErr
}
