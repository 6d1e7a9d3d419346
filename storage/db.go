package storage

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	ethleveldb "github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb"
)

// ErrNotFound is returned by Get when the key is absent from the store.
var ErrNotFound = errors.New("storage: key not found")

const (
	levelDBCacheMB   = 16
	levelDBHandles   = 16
	levelDBNamespace = "dropchain/db/"
)

// Database is a generic interface for a key-value store. Raw keys written
// through Put/Get live next to the trie nodes, so callers must keep their own
// keys out of the 32-byte hash space (prefix them).
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	// TrieDB exposes the node database the state trie is built on.
	TrieDB() *triedb.Database
	Close()
}

type backend struct {
	disk   ethdb.Database
	trieDB *triedb.Database
}

func newBackend(disk ethdb.Database) backend {
	return backend{
		disk:   disk,
		trieDB: triedb.NewDatabase(disk, triedb.HashDefaults),
	}
}

func (b backend) Put(key []byte, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("storage: key must not be empty")
	}
	return b.disk.Put(key, value)
}

func (b backend) get(key []byte) ([]byte, error) {
	has, err := b.disk.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrNotFound
	}
	return b.disk.Get(key)
}

func (b backend) TrieDB() *triedb.Database { return b.trieDB }

// --- In-Memory DB (for testing) ---

type MemDB struct {
	backend
}

func NewMemDB() *MemDB {
	return &MemDB{backend: newBackend(rawdb.NewMemoryDatabase())}
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	return db.get(key)
}

func (db *MemDB) Close() {
	_ = db.trieDB.Close()
	_ = db.disk.Close()
}

// --- Persistent DB ---

// LevelDB is a persistent key-value store backed by goleveldb through
// go-ethereum's ethdb adapter so the trie database can share the handle.
type LevelDB struct {
	backend
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	kv, err := ethleveldb.New(path, levelDBCacheMB, levelDBHandles, levelDBNamespace, false)
	if err != nil {
		return nil, fmt.Errorf("storage: open leveldb %s: %w", path, err)
	}
	return &LevelDB{backend: newBackend(rawdb.NewDatabase(kv))}, nil
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := ldb.disk.Get(key)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

// Close flushes the trie cache and closes the database connection.
func (ldb *LevelDB) Close() {
	_ = ldb.trieDB.Close()
	_ = ldb.disk.Close()
}
