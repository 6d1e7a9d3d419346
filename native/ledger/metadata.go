package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"dropchain/core/events"
	"dropchain/core/state"
	"dropchain/native/access"
)

// DefaultSpec is the metadata standard version reported when none was set.
const DefaultSpec = "ft-1.0.0"

// Metadata describes the fungible token. MintedPerClaim is never stored; it is
// filled in on read for a specific drop.
type Metadata struct {
	Spec           string   `json:"spec"`
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Icon           *string  `json:"icon,omitempty"`
	Reference      *string  `json:"reference,omitempty"`
	ReferenceHash  []byte   `json:"reference_hash,omitempty"`
	Decimals       uint8    `json:"decimals"`
	MintedPerClaim *big.Int `json:"minted_per_claim,omitempty"`
}

// DefaultMetadata is served until an admin stores a record.
func DefaultMetadata() Metadata {
	return Metadata{Spec: DefaultSpec, Name: "Drop Token", Symbol: "DROP", Decimals: 24}
}

type storedMetadata struct {
	Spec          string
	Name          string
	Symbol        string
	Icon          string
	Reference     string
	ReferenceHash []byte
	Decimals      uint8
}

type metadataState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// ClaimAmounts resolves the per-claim token amount of a drop.
type ClaimAmounts interface {
	ClaimAmount(dropID string) (*big.Int, error)
}

type authority interface {
	Require(account string, capability access.Capability) error
}

// MetadataStore serves and replaces the token metadata record.
type MetadataStore struct {
	st      metadataState
	amounts ClaimAmounts
	admins  authority
	emitter events.Emitter
}

func NewMetadataStore(st metadataState, amounts ClaimAmounts, admins authority) *MetadataStore {
	return &MetadataStore{st: st, amounts: amounts, admins: admins, emitter: events.NoopEmitter{}}
}

func (m *MetadataStore) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		m.emitter = events.NoopEmitter{}
		return
	}
	m.emitter = emitter
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	s := v
	return &s
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// Get returns the token metadata. When dropID is set, MintedPerClaim carries
// that drop's claim amount and unknown or non-token drops fail with
// ErrDropNotFound.
func (m *MetadataStore) Get(dropID *string) (*Metadata, error) {
	meta := DefaultMetadata()
	stored := new(storedMetadata)
	ok, err := m.st.KVGet(state.TokenMetadataKey(), stored)
	if err != nil {
		return nil, err
	}
	if ok {
		meta = Metadata{
			Spec:      stored.Spec,
			Name:      stored.Name,
			Symbol:    stored.Symbol,
			Icon:      optional(stored.Icon),
			Reference: optional(stored.Reference),
			Decimals:  stored.Decimals,
		}
		if len(stored.ReferenceHash) > 0 {
			meta.ReferenceHash = append([]byte(nil), stored.ReferenceHash...)
		}
	}
	if dropID != nil {
		if m.amounts == nil {
			return nil, fmt.Errorf("%w: %s", ErrDropNotFound, *dropID)
		}
		amount, err := m.amounts.ClaimAmount(strings.TrimSpace(*dropID))
		if err != nil {
			return nil, err
		}
		meta.MintedPerClaim = new(big.Int).Set(amount)
	}
	return &meta, nil
}

// Update replaces the stored metadata wholesale. Only admins may call it.
func (m *MetadataStore) Update(caller string, meta Metadata) error {
	if m.admins == nil {
		return fmt.Errorf("%w: metadata store has no authority", access.ErrUnauthorized)
	}
	if err := m.admins.Require(caller, access.CapAdmin); err != nil {
		return err
	}
	return m.write(access.NormalizeAccount(caller), meta)
}

// Seed writes the metadata record without authorisation, for genesis.
func (m *MetadataStore) Seed(meta Metadata) error {
	return m.write("", meta)
}

func (m *MetadataStore) write(caller string, meta Metadata) error {
	stored := &storedMetadata{
		Spec:          strings.TrimSpace(meta.Spec),
		Name:          strings.TrimSpace(meta.Name),
		Symbol:        strings.TrimSpace(meta.Symbol),
		Icon:          deref(meta.Icon),
		Reference:     deref(meta.Reference),
		ReferenceHash: append([]byte(nil), meta.ReferenceHash...),
		Decimals:      meta.Decimals,
	}
	if stored.Spec == "" || stored.Name == "" || stored.Symbol == "" {
		return fmt.Errorf("%w: spec, name and symbol are required", ErrInvalidMetadata)
	}
	if err := m.st.KVPut(state.TokenMetadataKey(), stored); err != nil {
		return err
	}
	m.emitter.Emit(events.MetadataUpdated{Caller: caller, Symbol: stored.Symbol})
	return nil
}
