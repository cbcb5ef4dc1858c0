package cache

import (
	"context"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	cachekey "github.com/always-cache/accelerator/pkg/cache-key"
)

// LevelDBStorage keeps entries in a LevelDB database,
// one key per variant, so that all variants of a URL share a key prefix.
type LevelDBStorage struct {
	db    *leveldb.DB
	keyer cachekey.Keyer
	mu    sync.Mutex
}

func NewLevelDBStorage(path string) (*LevelDBStorage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, storageError("leveldb", "open", err)
	}
	return &LevelDBStorage{
		db:    db,
		keyer: cachekey.NewKeyer("e"),
	}, nil
}

func (s *LevelDBStorage) Fetch(_ context.Context, url string) ([]Entry, bool, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte(s.keyer.Prefix(url))), nil)
	defer it.Release()

	entries := make([]Entry, 0)
	for it.Next() {
		e, err := decodeEntry(it.Value())
		if err != nil {
			return nil, false, storageError("leveldb", "decode", err)
		}
		entries = append(entries, e)
	}
	if err := it.Error(); err != nil {
		return nil, false, storageError("leveldb", "fetch", err)
	}
	return entries, len(entries) > 0, nil
}

func (s *LevelDBStorage) Store(ctx context.Context, e Entry) (ChunkHandler, error) {
	return newBufferedHandler(ctx, e, s.commit), nil
}

func (s *LevelDBStorage) commit(_ context.Context, e Entry) error {
	b, err := encodeEntry(e)
	if err != nil {
		return storageError("leveldb", "encode", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.db.Put([]byte(s.keyer.Key(e.URL, e.Discriminators.Key())), b, nil)
	return storageError("leveldb", "commit", err)
}

func (s *LevelDBStorage) Close() error {
	return storageError("leveldb", "close", s.db.Close())
}
