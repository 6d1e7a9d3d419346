package drops

import (
	"fmt"
	"math/big"
	"strings"

	"dropchain/core/events"
	"dropchain/core/state"
	"dropchain/native/access"
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

type authority interface {
	Require(account string, capability access.Capability) error
}

// Registry is the durable catalog of drop definitions.
type Registry struct {
	st      registryState
	auth    authority
	emitter events.Emitter
}

func NewRegistry(st registryState, auth authority) *Registry {
	return &Registry{st: st, auth: auth, emitter: events.NoopEmitter{}}
}

func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// Create stores a new drop. The caller must hold CapSponsor.
func (r *Registry) Create(caller string, drop *Drop) (*Drop, error) {
	if r.auth == nil {
		return nil, fmt.Errorf("%w: drop registry has no authority", access.ErrUnauthorized)
	}
	if err := r.auth.Require(caller, access.CapSponsor); err != nil {
		return nil, err
	}
	return r.create(access.NormalizeAccount(caller), drop)
}

// Seed stores a drop without authorisation, for genesis.
func (r *Registry) Seed(drop *Drop) (*Drop, error) {
	return r.create("", drop)
}

func (r *Registry) create(creator string, drop *Drop) (*Drop, error) {
	normalized, err := drop.Normalize()
	if err != nil {
		return nil, err
	}
	key := state.DropKey(normalized.ID)
	exists, err := r.st.KVGet(key, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDropExists, normalized.ID)
	}
	if err := r.st.KVPut(key, toStored(normalized)); err != nil {
		return nil, err
	}
	if err := r.st.KVAppend(state.DropIndexKey(), []byte(normalized.ID)); err != nil {
		return nil, err
	}
	r.emitter.Emit(events.DropCreated{
		DropID:       normalized.ID,
		Kind:         normalized.Kind.String(),
		Creator:      creator,
		ScavengerIDs: normalized.ScavengerIDs,
	})
	return normalized.Clone(), nil
}

// Get returns the drop with the given id.
func (r *Registry) Get(id string) (*Drop, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrDropNotFound)
	}
	stored := new(storedDrop)
	ok, err := r.st.KVGet(state.DropKey(id), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDropNotFound, id)
	}
	return stored.toDrop(id), nil
}

// List returns every drop in creation order.
func (r *Registry) List() ([]*Drop, error) {
	var ids []string
	if err := r.st.KVGetList(state.DropIndexKey(), &ids); err != nil {
		return nil, err
	}
	out := make([]*Drop, 0, len(ids))
	for _, id := range ids {
		drop, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, drop)
	}
	return out, nil
}

// ClaimAmount returns the per-claim amount of a token drop. NFT drops mint no
// fungible tokens and are reported as not found.
func (r *Registry) ClaimAmount(dropID string) (*big.Int, error) {
	drop, err := r.Get(dropID)
	if err != nil {
		return nil, err
	}
	if drop.Kind != KindToken {
		return nil, fmt.Errorf("%w: %s is not a token drop", ErrDropNotFound, drop.ID)
	}
	return new(big.Int).Set(drop.Token.Amount), nil
}
