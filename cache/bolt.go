package cache

import (
	"context"
	"errors"
	"time"

	"github.com/boltdb/bolt"
)

var entriesBucket = []byte("entries")

// BoltStorage keeps entries in a Bolt database.
// Each URL has its own bucket inside the entries bucket, keyed by discriminators.
type BoltStorage struct {
	db *bolt.DB
}

func NewBoltStorage(filename string) (*BoltStorage, error) {
	db, err := bolt.Open(filename, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, storageError("bolt", "open", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, storageError("bolt", "open", err)
	}
	return &BoltStorage{db: db}, nil
}

func (s *BoltStorage) Fetch(_ context.Context, url string) ([]Entry, bool, error) {
	entries := make([]Entry, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(entriesBucket)
		if root == nil {
			return errors.New("missing entries bucket")
		}
		variants := root.Bucket([]byte(url))
		if variants == nil {
			return nil
		}
		// values are only valid inside the transaction; decoding copies them
		return variants.ForEach(func(_, v []byte) error {
			e, err := decodeEntry(v)
			if err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, false, storageError("bolt", "fetch", err)
	}
	return entries, len(entries) > 0, nil
}

func (s *BoltStorage) Store(ctx context.Context, e Entry) (ChunkHandler, error) {
	return newBufferedHandler(ctx, e, s.commit), nil
}

// commit relies on bolt allowing a single read-write transaction at a time.
func (s *BoltStorage) commit(_ context.Context, e Entry) error {
	b, err := encodeEntry(e)
	if err != nil {
		return storageError("bolt", "encode", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		variants, err := tx.Bucket(entriesBucket).CreateBucketIfNotExists([]byte(e.URL))
		if err != nil {
			return err
		}
		key := e.Discriminators.Key()
		if key == "" {
			// bolt does not accept empty keys
			key = "&"
		}
		return variants.Put([]byte(key), b)
	})
	return storageError("bolt", "commit", err)
}

func (s *BoltStorage) Close() error {
	return storageError("bolt", "close", s.db.Close())
}
