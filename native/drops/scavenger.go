package drops

import (
	"dropchain/core/state"
)

// Phase is the stored part of a claim. The finer grained Status is derived
// from it together with the found-set.
type Phase uint8

const (
	PhaseOpen Phase = iota
	PhaseMinting
	PhaseClaimed
)

type claimRecord struct {
	Phase       uint8
	Found       []string
	MintRequest string
}

func (c *claimRecord) phase() Phase { return Phase(c.Phase) }

func (c *claimRecord) hasFound(id string) bool {
	for _, f := range c.Found {
		if f == id {
			return true
		}
	}
	return false
}

type trackerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Tracker stores the scavenger ids each account has found per drop, along with
// the claim phase of that pair.
type Tracker struct {
	st trackerState
}

func NewTracker(st trackerState) *Tracker {
	return &Tracker{st: st}
}

func (t *Tracker) load(account, dropID string) (*claimRecord, error) {
	rec := new(claimRecord)
	ok, err := t.st.KVGet(state.ClaimRecordKey(account, dropID), rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &claimRecord{}, nil
	}
	return rec, nil
}

func (t *Tracker) save(account, dropID string, rec *claimRecord) error {
	return t.st.KVPut(state.ClaimRecordKey(account, dropID), rec)
}

// Found returns the scavenger ids account has found for dropID in the order
// they were marked.
func (t *Tracker) Found(account, dropID string) ([]string, error) {
	rec, err := t.load(account, dropID)
	if err != nil {
		return nil, err
	}
	return append([]string{}, rec.Found...), nil
}

// mark adds id to the found-set. It reports whether the set changed.
func (t *Tracker) mark(account, dropID string, rec *claimRecord, id string) (bool, error) {
	if rec.hasFound(id) {
		return false, nil
	}
	rec.Found = append(rec.Found, id)
	return true, t.save(account, dropID, rec)
}

// complete reports whether every scavenger id of drop has been found.
func complete(drop *Drop, rec *claimRecord) bool {
	for _, id := range drop.ScavengerIDs {
		if !rec.hasFound(id) {
			return false
		}
	}
	return true
}
