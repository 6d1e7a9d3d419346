package access

import (
	"fmt"
	"math/big"
	"strings"

	"dropchain/core/events"
	"dropchain/core/state"
)

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Account is the registered identity of a participant.
type Account struct {
	ID                   string
	Status               AccountStatus
	TicketType           string
	StartingNearBalance  *big.Int
	StartingTokenBalance *big.Int
	PublicKey            string
}

// Registration describes an account to be created from a ticket type.
type Registration struct {
	Account    string
	TicketType string
	// PublicKey is optional. When set it is bound to the account so off-ledger
	// services can resolve key holders.
	PublicKey string
}

type storedAccount struct {
	Status        uint8
	TicketType    string
	StartingNear  *big.Int
	StartingToken *big.Int
	PublicKey     string
}

func (s *storedAccount) toAccount(id string) *Account {
	return &Account{
		ID:                   id,
		Status:               AccountStatus(s.Status),
		TicketType:           s.TicketType,
		StartingNearBalance:  cloneAmount(s.StartingNear),
		StartingTokenBalance: cloneAmount(s.StartingToken),
		PublicKey:            s.PublicKey,
	}
}

// Registry resolves account roles and owns account registration.
type Registry struct {
	st      registryState
	tickets *Catalog
	emitter events.Emitter
}

func NewRegistry(st registryState, tickets *Catalog) *Registry {
	return &Registry{st: st, tickets: tickets, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(e events.Event) {
	if r.emitter != nil {
		r.emitter.Emit(e)
	}
}

func validAccountID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return !strings.ContainsAny(id, " \t\r\n")
}

func (r *Registry) load(account string) (*storedAccount, error) {
	stored := new(storedAccount)
	ok, err := r.st.KVGet(state.AccountStatusKey(account), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	return stored, nil
}

// Register creates an account on behalf of an admin caller.
func (r *Registry) Register(caller string, reg Registration) (*Account, error) {
	if err := r.Require(caller, CapAdmin); err != nil {
		return nil, err
	}
	return r.register(reg)
}

// Seed creates an account without an authorising caller. It exists for
// genesis, where the first admin has to come from somewhere.
func (r *Registry) Seed(reg Registration) (*Account, error) {
	return r.register(reg)
}

func (r *Registry) register(reg Registration) (*Account, error) {
	id := NormalizeAccount(reg.Account)
	if !validAccountID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccount, reg.Account)
	}
	exists, err := r.st.KVGet(state.AccountStatusKey(id), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, id)
	}
	ticket, err := r.tickets.Resolve(reg.TicketType)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(reg.PublicKey)
	if key != "" {
		var bound string
		taken, err := r.st.KVGet(state.AccountKeyKey(key), &bound)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: bound to %s", ErrKeyBound, bound)
		}
		if err := r.st.KVPut(state.AccountKeyKey(key), id); err != nil {
			return nil, err
		}
	}
	stored := &storedAccount{
		Status:        uint8(ticket.AccountType),
		TicketType:    ticket.ID,
		StartingNear:  cloneAmount(ticket.StartingNearBalance),
		StartingToken: cloneAmount(ticket.StartingTokenBalance),
		PublicKey:     key,
	}
	if err := r.st.KVPut(state.AccountStatusKey(id), stored); err != nil {
		return nil, err
	}
	r.emit(events.AccountRegistered{
		Account:         id,
		TicketType:      ticket.ID,
		Status:          ticket.AccountType.String(),
		StartingBalance: cloneAmount(ticket.StartingTokenBalance),
	})
	return stored.toAccount(id), nil
}

// Account returns the registered account.
func (r *Registry) Account(account string) (*Account, error) {
	id := NormalizeAccount(account)
	stored, err := r.load(id)
	if err != nil {
		return nil, err
	}
	return stored.toAccount(id), nil
}

// AccountByKey resolves the account a public key was bound to.
func (r *Registry) AccountByKey(publicKey string) (string, error) {
	key := strings.TrimSpace(publicKey)
	if key == "" {
		return "", ErrKeyNotFound
	}
	var id string
	ok, err := r.st.KVGet(state.AccountKeyKey(key), &id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrKeyNotFound
	}
	return id, nil
}

// RoleOf returns the stored status of account.
func (r *Registry) RoleOf(account string) (AccountStatus, error) {
	stored, err := r.load(NormalizeAccount(account))
	if err != nil {
		return 0, err
	}
	return AccountStatus(stored.Status), nil
}

// Require fails with ErrUnauthorized when account lacks capability, or with
// ErrAccountNotFound when the account is unknown.
func (r *Registry) Require(account string, capability Capability) error {
	status, err := r.RoleOf(account)
	if err != nil {
		return err
	}
	if !status.Has(capability) {
		return fmt.Errorf("%w: %s is %s, needs %s", ErrUnauthorized, NormalizeAccount(account), status, capability)
	}
	return nil
}

// Exists reports whether account is registered.
func (r *Registry) Exists(account string) error {
	_, err := r.load(NormalizeAccount(account))
	return err
}

// SetRole changes the status of account. Only admins may call it.
func (r *Registry) SetRole(caller, account string, status AccountStatus) error {
	if err := r.Require(caller, CapAdmin); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(status))
	}
	id := NormalizeAccount(account)
	stored, err := r.load(id)
	if err != nil {
		return err
	}
	previous := AccountStatus(stored.Status)
	if previous == status {
		return nil
	}
	stored.Status = uint8(status)
	if err := r.st.KVPut(state.AccountStatusKey(id), stored); err != nil {
		return err
	}
	r.emit(events.RoleUpdated{
		Caller:  NormalizeAccount(caller),
		Account: id,
		From:    previous.String(),
		To:      status.String(),
	})
	return nil
}

// StartingTokenBalance returns the token balance granted by the account's
// ticket type.
func (r *Registry) StartingTokenBalance(account string) (*big.Int, error) {
	stored, err := r.load(NormalizeAccount(account))
	if err != nil {
		return nil, err
	}
	return cloneAmount(stored.StartingToken), nil
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
