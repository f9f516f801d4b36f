package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Options configures backend creation.
type Options struct {
	// Backend is one of memory, sqlite, mysql, postgres, redis, s3.
	Backend string

	// SQLiteDB is the already opened and migrated application database,
	// used when Backend is sqlite.
	SQLiteDB *sql.DB

	// MySQLDSN is used when Backend is mysql.
	MySQLDSN string

	// PostgresDSN is used when Backend is postgres.
	PostgresDSN string

	// RedisURL is used when Backend is redis.
	RedisURL string

	// S3 is used when Backend is s3.
	S3 S3Options

	// Prefix namespaces keys in Redis and object names in S3.
	Prefix string
}

// Open creates the item storage backend described by opts. The returned
// close function releases resources owned by the backend (it never closes
// opts.SQLiteDB).
func Open(ctx context.Context, opts Options) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch opts.Backend {
	case BackendMemory:
		m := NewMemoryStorage()
		return m, m.Close, nil

	case BackendSQLite, "":
		if opts.SQLiteDB == nil {
			return nil, nil, fmt.Errorf("sqlite backend requires a database")
		}
		return NewSQLStorage(opts.SQLiteDB, DialectSQLite), noop, nil

	case BackendMySQL:
		db, err := OpenMySQL(opts.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(db, DialectMySQL); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return NewSQLStorage(db, DialectMySQL), db.Close, nil

	case BackendPostgres:
		db, err := OpenPostgres(opts.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(db, DialectPostgres); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return NewSQLStorage(db, DialectPostgres), db.Close, nil

	case BackendRedis:
		ro := DefaultRedisOptions()
		ro.URL = opts.RedisURL
		if opts.Prefix != "" {
			ro.Prefix = opts.Prefix
		}
		r, err := NewRedisStorage(ro)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil

	case BackendS3:
		so := opts.S3
		if so.Prefix == "" {
			so.Prefix = opts.Prefix
		}
		st, err := NewS3Storage(ctx, so)
		if err != nil {
			return nil, nil, err
		}
		return st, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
