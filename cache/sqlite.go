package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStorage keeps entries in an SQLite database.
type SQLiteStorage struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// memoryDBs numbers the in-memory databases so that each storage gets its own.
var memoryDBs atomic.Uint64

// NewSQLiteStorage opens the storage with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStorage(filename string) (*SQLiteStorage, error) {
	if filename == "" {
		// shared cache lets the pooled connections see the same db
		filename = fmt.Sprintf("file:accelerator-%d?mode=memory&cache=shared", memoryDBs.Add(1))
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, storageError("sqlite", "open", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS entries (
			url TEXT NOT NULL,
			discriminators TEXT NOT NULL,
			expires INTEGER,
			record BLOB,
			PRIMARY KEY (url, discriminators)
		)`,
		"CREATE INDEX IF NOT EXISTS expires_idx ON entries (expires)",
		"PRAGMA journal_mode=WAL",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, storageError("sqlite", "open", err)
		}
	}
	return &SQLiteStorage{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s *SQLiteStorage) Fetch(ctx context.Context, url string) ([]Entry, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT record FROM entries WHERE url = ?", url)
	if err != nil {
		return nil, false, storageError("sqlite", "fetch", err)
	}
	defer rows.Close()
	entries := make([]Entry, 0)
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, false, storageError("sqlite", "fetch", err)
		}
		e, err := decodeEntry(b)
		if err != nil {
			return nil, false, storageError("sqlite", "decode", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, storageError("sqlite", "fetch", err)
	}
	return entries, len(entries) > 0, nil
}

func (s *SQLiteStorage) Store(ctx context.Context, e Entry) (ChunkHandler, error) {
	return newBufferedHandler(ctx, e, s.commit), nil
}

func (s *SQLiteStorage) commit(ctx context.Context, e Entry) error {
	b, err := encodeEntry(e)
	if err != nil {
		return storageError("sqlite", "encode", err)
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO entries (url, discriminators, expires, record) VALUES (?, ?, ?, ?)",
		e.URL, e.Discriminators.Key(), e.Expires.Unix(), b)
	return storageError("sqlite", "commit", err)
}

func (s *SQLiteStorage) Close() error {
	return storageError("sqlite", "close", s.db.Close())
}
