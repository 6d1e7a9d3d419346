package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"dropchain/core/genesis"
	"dropchain/core/state"
	nativecommon "dropchain/native/common"
	"dropchain/storage"
	"dropchain/storage/trie"
)

var headKey = []byte("meta/head")

// Node is the aggregate root owning storage and the state trie. Every mutation
// runs as one serialized transaction against a copy of the trie which replaces
// the canonical trie only if the operation succeeds.
type Node struct {
	db storage.Database

	stateMu sync.Mutex
	trie    *trie.Trie
	seq     uint64

	pauses nativecommon.PauseView
	sink   eventSink
	logger *slog.Logger

	nowFn func() int64
	idFn  func() string

	mintMu  sync.RWMutex
	minting *MintDispatcher
}

// NewNode opens the state persisted in db. When db holds no state yet and spec
// is non-nil, the genesis spec is applied and committed first.
func NewNode(db storage.Database, spec *genesis.GenesisSpec) (*Node, error) {
	if db == nil {
		return nil, fmt.Errorf("core: database must not be nil")
	}
	n := &Node{db: db, logger: slog.Default()}
	n.sink = eventSink{logger: n.logger}

	head, err := db.Get(headKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		head = nil
	case err != nil:
		return nil, fmt.Errorf("core: read head: %w", err)
	}

	tr, err := trie.NewTrie(db, head)
	if err != nil {
		return nil, fmt.Errorf("core: open state at %x: %w", head, err)
	}
	n.trie = tr

	if head == nil && spec != nil {
		n.stateMu.Lock()
		err := n.apply(func(m *modules) error {
			return genesis.Apply(spec, m.genesis())
		})
		n.stateMu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("core: apply genesis: %w", err)
		}
		n.logger.Info("genesis applied", "root", n.trie.Root().Hex())
	}
	return n, nil
}

// SetLogger replaces the logger used for committed events and mint results.
func (n *Node) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.logger = logger
	n.sink = eventSink{logger: logger}
}

// log returns the current logger. Callers must not hold stateMu.
func (n *Node) log() *slog.Logger {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.logger
}

// SetPauses installs the module pause switches.
func (n *Node) SetPauses(p nativecommon.PauseView) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.pauses = p
}

// SetNowFunc overrides the clock stamped on mint requests.
func (n *Node) SetNowFunc(now func() int64) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.nowFn = now
}

// SetIDFunc overrides the mint request id generator.
func (n *Node) SetIDFunc(id func() string) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.idFn = id
}

// StateRoot returns the committed state root.
func (n *Node) StateRoot() common.Hash {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.trie.Root()
}

// apply executes fn as one transaction. The caller must hold stateMu.
func (n *Node) apply(fn func(m *modules) error) error {
	working := n.trie.Copy()
	mods := n.newModules(state.NewManager(working))
	if err := fn(mods); err != nil {
		return err
	}
	root, err := working.Commit(n.seq + 1)
	if err != nil {
		return fmt.Errorf("core: commit state: %w", err)
	}
	if err := n.db.Put(headKey, root.Bytes()); err != nil {
		return fmt.Errorf("core: persist head: %w", err)
	}
	n.trie = working
	n.seq++
	mods.events.Flush(n.sink)
	return nil
}

// view runs a read-only fn against the committed state. The caller must hold
// stateMu.
func (n *Node) view(fn func(m *modules) error) error {
	return fn(n.newModules(state.NewManager(n.trie.Copy())))
}

func (n *Node) transact(fn func(m *modules) error) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.apply(fn)
}

func (n *Node) read(fn func(m *modules) error) error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	return n.view(fn)
}
