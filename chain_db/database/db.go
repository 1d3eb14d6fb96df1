package database

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func NewLevelDb(dbDir string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(dbDir, nil)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewMemoryDb backs the store with an in-memory storage, for tests and
// for replaying blocks without touching disk.
func NewMemoryDb() (*leveldb.DB, error) {
	return leveldb.Open(storage.NewMemStorage(), nil)
}
