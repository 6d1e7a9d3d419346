package state

import (
	"bytes"
	"math/big"
	"reflect"
	"testing"

	"dropchain/storage"
	"dropchain/storage/trie"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := trie.NewTrie(db, nil)
	if err != nil {
		t.Fatalf("create trie: %v", err)
	}
	return NewManager(tr)
}

type testRecord struct {
	Name  string
	Count uint64
	Tags  []string
}

func TestKVPutGetDelete(t *testing.T) {
	mgr := newTestManager(t)
	key := DropKey("D1")

	found, err := mgr.KVGet(key, new(testRecord))
	if err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}

	rec := &testRecord{Name: "welcome", Count: 3, Tags: []string{"a", "b"}}
	if err := mgr.KVPut(key, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out testRecord
	found, err = mgr.KVGet(key, &out)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(*rec, out) {
		t.Fatalf("round trip mismatch: %+v != %+v", out, *rec)
	}

	if found, err = mgr.KVGet(key, nil); err != nil || !found {
		t.Fatalf("existence probe: found=%v err=%v", found, err)
	}

	if err := mgr.KVDelete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found, err = mgr.KVGet(key, nil); err != nil || found {
		t.Fatalf("expected deleted key, got found=%v err=%v", found, err)
	}
}

func TestKVRejectsEmptyKey(t *testing.T) {
	mgr := newTestManager(t)
	if err := mgr.KVPut(nil, uint64(1)); err == nil {
		t.Fatalf("put accepted empty key")
	}
	if _, err := mgr.KVGet(nil, nil); err == nil {
		t.Fatalf("get accepted empty key")
	}
	if err := mgr.KVDelete(nil); err == nil {
		t.Fatalf("delete accepted empty key")
	}
	if err := mgr.KVAppend(nil, []byte("x")); err == nil {
		t.Fatalf("append accepted empty key")
	}
}

func equalLists(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestKVListAppendRemove(t *testing.T) {
	mgr := newTestManager(t)
	key := ClaimedDropsKey("alice")

	var empty [][]byte
	if err := mgr.KVGetList(key, &empty); err != nil {
		t.Fatalf("get empty list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", empty)
	}

	for _, v := range []string{"D1", "D2", "D1"} {
		if err := mgr.KVAppend(key, []byte(v)); err != nil {
			t.Fatalf("append %s: %v", v, err)
		}
	}

	var list [][]byte
	if err := mgr.KVGetList(key, &list); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if !equalLists(list, [][]byte{[]byte("D1"), []byte("D2")}) {
		t.Fatalf("unexpected list %q", list)
	}

	if err := mgr.KVRemove(key, []byte("D1")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := mgr.KVGetList(key, &list); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if !equalLists(list, [][]byte{[]byte("D2")}) {
		t.Fatalf("unexpected list after remove %q", list)
	}

	if err := mgr.KVRemove(key, []byte("D2")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if found, err := mgr.KVGet(key, nil); err != nil || found {
		t.Fatalf("emptied list should be deleted, got found=%v err=%v", found, err)
	}
}

func TestKVGetListDestinationValidation(t *testing.T) {
	mgr := newTestManager(t)
	var notSlice int
	if err := mgr.KVGetList(MintIndexKey(), &notSlice); err == nil {
		t.Fatalf("expected error for non-slice destination")
	}
	if err := mgr.KVGetList(MintIndexKey(), nil); err == nil {
		t.Fatalf("expected error for nil destination")
	}
}

func TestTokenBalance(t *testing.T) {
	mgr := newTestManager(t)

	bal, found, err := mgr.TokenBalance("alice")
	if err != nil || found || bal.Sign() != 0 {
		t.Fatalf("expected zero unwritten balance, got %v found=%v err=%v", bal, found, err)
	}

	if err := mgr.SetTokenBalance("alice", big.NewInt(250)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	bal, found, err = mgr.TokenBalance("alice")
	if err != nil || !found || bal.Int64() != 250 {
		t.Fatalf("expected 250, got %v found=%v err=%v", bal, found, err)
	}

	if err := mgr.SetTokenBalance("alice", big.NewInt(-1)); err == nil {
		t.Fatalf("negative balance accepted")
	}
	if err := mgr.SetTokenBalance("", big.NewInt(1)); err == nil {
		t.Fatalf("empty account accepted")
	}
}

func TestMaxTokenAmount(t *testing.T) {
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	if MaxTokenAmount.Cmp(want) != 0 {
		t.Fatalf("unexpected ceiling %s", MaxTokenAmount)
	}
}
