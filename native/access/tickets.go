package access

import (
	"fmt"
	"math/big"
	"strings"

	"dropchain/core/events"
	"dropchain/core/state"
)

// TicketType is the template applied once when an account is created.
type TicketType struct {
	ID                   string
	StartingNearBalance  *big.Int
	StartingTokenBalance *big.Int
	AccountType          AccountStatus
}

type storedTicket struct {
	StartingNear  *big.Int
	StartingToken *big.Int
	AccountType   uint8
}

// Catalog stores ticket types. Definitions are immutable once written.
type Catalog struct {
	st      registryState
	admins  *Registry
	emitter events.Emitter
}

func NewCatalog(st registryState) *Catalog {
	return &Catalog{st: st, emitter: events.NoopEmitter{}}
}

// SetAuthority wires the registry used to authorise Define calls.
func (c *Catalog) SetAuthority(reg *Registry) { c.admins = reg }

func (c *Catalog) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		c.emitter = events.NoopEmitter{}
		return
	}
	c.emitter = emitter
}

func normalizeTicketID(id string) string {
	return strings.TrimSpace(id)
}

func sanitizeTicket(t TicketType) (*TicketType, error) {
	id := normalizeTicketID(t.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidTicket)
	}
	if !t.AccountType.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(t.AccountType))
	}
	near := cloneAmount(t.StartingNearBalance)
	token := cloneAmount(t.StartingTokenBalance)
	if near.Sign() < 0 || token.Sign() < 0 {
		return nil, fmt.Errorf("%w: starting balances must not be negative", ErrInvalidTicket)
	}
	if token.Cmp(state.MaxTokenAmount) > 0 {
		return nil, fmt.Errorf("%w: starting token balance exceeds %s", ErrInvalidTicket, state.MaxTokenAmount)
	}
	return &TicketType{
		ID:                   id,
		StartingNearBalance:  near,
		StartingTokenBalance: token,
		AccountType:          t.AccountType,
	}, nil
}

// Define stores a new ticket type. The caller must hold CapAdmin.
func (c *Catalog) Define(caller string, t TicketType) (*TicketType, error) {
	if c.admins == nil {
		return nil, fmt.Errorf("%w: ticket catalog has no authority", ErrUnauthorized)
	}
	if err := c.admins.Require(caller, CapAdmin); err != nil {
		return nil, err
	}
	return c.define(t)
}

// Seed stores a ticket type without authorisation, for genesis.
func (c *Catalog) Seed(t TicketType) (*TicketType, error) {
	return c.define(t)
}

func (c *Catalog) define(t TicketType) (*TicketType, error) {
	sanitized, err := sanitizeTicket(t)
	if err != nil {
		return nil, err
	}
	key := state.TicketDataKey(sanitized.ID)
	exists, err := c.st.KVGet(key, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrTicketExists, sanitized.ID)
	}
	stored := &storedTicket{
		StartingNear:  sanitized.StartingNearBalance,
		StartingToken: sanitized.StartingTokenBalance,
		AccountType:   uint8(sanitized.AccountType),
	}
	if err := c.st.KVPut(key, stored); err != nil {
		return nil, err
	}
	if c.emitter != nil {
		c.emitter.Emit(events.TicketDefined{TicketType: sanitized.ID, Status: sanitized.AccountType.String()})
	}
	return sanitized, nil
}

// Resolve returns the ticket type with the given id.
func (c *Catalog) Resolve(id string) (*TicketType, error) {
	normalized := normalizeTicketID(id)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty id", ErrTicketNotFound)
	}
	stored := new(storedTicket)
	ok, err := c.st.KVGet(state.TicketDataKey(normalized), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, normalized)
	}
	return &TicketType{
		ID:                   normalized,
		StartingNearBalance:  cloneAmount(stored.StartingNear),
		StartingTokenBalance: cloneAmount(stored.StartingToken),
		AccountType:          AccountStatus(stored.AccountType),
	}, nil
}
