package trie

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"dropchain/storage"
)

func TestTrieCommitPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db1, err := storage.NewLevelDB(dir)
	require.NoError(t, err)

	tr, err := NewTrie(db1, nil)
	require.NoError(t, err)

	key := crypto.Keccak256Hash([]byte("drop:D1"))
	value := []byte("payload")

	require.NoError(t, tr.Update(key.Bytes(), value))
	root, err := tr.Commit(1)
	require.NoError(t, err)
	require.Equal(t, root, tr.Root())

	db1.Close()

	db2, err := storage.NewLevelDB(dir)
	require.NoError(t, err)
	defer db2.Close()

	restored, err := NewTrie(db2, root.Bytes())
	require.NoError(t, err)

	got, err := restored.Get(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, value, got)
}

func TestTrieCopyIsolatesMutations(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	tr, err := NewTrie(db, nil)
	require.NoError(t, err)

	key := crypto.Keccak256([]byte("balance:alice"))
	require.NoError(t, tr.Update(key, []byte{0x01}))
	_, err = tr.Commit(1)
	require.NoError(t, err)

	working := tr.Copy()
	require.NoError(t, working.Update(key, []byte{0x02}))

	got, err := tr.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, got)

	got, err = working.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02}, got)
}

func TestTrieResetDiscardsPending(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	tr, err := NewTrie(db, nil)
	require.NoError(t, err)

	key := crypto.Keccak256([]byte("claim:x"))
	require.NoError(t, tr.Update(key, []byte("pending")))
	require.NoError(t, tr.Reset(tr.Root()))

	got, err := tr.Get(key)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestTrieDelete(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	tr, err := NewTrie(db, nil)
	require.NoError(t, err)

	key := crypto.Keccak256([]byte("mint:req"))
	require.NoError(t, tr.Update(key, []byte("x")))
	require.NoError(t, tr.Delete(key))
	got, err := tr.Get(key)
	require.NoError(t, err)
	require.Empty(t, got)
}
