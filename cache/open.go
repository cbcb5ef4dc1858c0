package cache

import (
	"fmt"

	"github.com/always-cache/accelerator/config"
)

// Open creates the storage selected by the "storage.type" setting.
//
//	memory   (default)
//	sqlite   storage.filename
//	leveldb  storage.path
//	bolt     storage.filename
//	redis    storage.addr, storage.password, storage.db, storage.prefix
func Open(settings config.Settings) (Storage, error) {
	var (
		s   Storage
		err error
	)
	settings = settings.Sub("storage")
	switch typ := settings.String("type", "memory"); typ {
	case "memory", "":
		return NewMemoryStorage(), nil
	case "sqlite":
		var sqlite *SQLiteStorage
		if sqlite, err = NewSQLiteStorage(settings.String("filename", "")); err == nil {
			s = sqlite
		}
	case "leveldb":
		var level *LevelDBStorage
		if level, err = NewLevelDBStorage(settings.String("path", "accelerator.leveldb")); err == nil {
			s = level
		}
	case "bolt":
		var bolt *BoltStorage
		if bolt, err = NewBoltStorage(settings.String("filename", "accelerator.bolt")); err == nil {
			s = bolt
		}
	case "redis":
		var db int
		if db, err = settings.Int("db", 0); err != nil {
			return nil, err
		}
		var redis *RedisStorage
		redis, err = NewRedisStorage(RedisStorageConfig{
			Addr:     settings.String("addr", "localhost:6379"),
			Password: settings.String("password", ""),
			DB:       db,
			Prefix:   settings.String("prefix", ""),
		})
		if err == nil {
			s = redis
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, typ)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
