package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"dropchain/core/state"
)

// MaxBalance is the largest balance an account may hold (2^128 - 1).
var MaxBalance = uint256.MustFromBig(state.MaxTokenAmount)

type ledgerState interface {
	TokenBalance(account string) (*big.Int, bool, error)
	SetTokenBalance(account string, amount *big.Int) error
}

// StartingBalances supplies the balance an account holds before its first
// ledger mutation.
type StartingBalances interface {
	StartingTokenBalance(account string) (*big.Int, error)
}

// Ledger tracks fungible token balances in the smallest indivisible unit.
type Ledger struct {
	st       ledgerState
	starting StartingBalances
}

func New(st ledgerState, starting StartingBalances) *Ledger {
	return &Ledger{st: st, starting: starting}
}

func toUint(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	v, overflow := uint256.FromBig(amount)
	if overflow || v.Gt(MaxBalance) {
		return nil, ErrOverflow
	}
	return v, nil
}

func (l *Ledger) current(account string) (*uint256.Int, error) {
	stored, ok, err := l.st.TokenBalance(account)
	if err != nil {
		return nil, err
	}
	if !ok {
		if l.starting == nil {
			return new(uint256.Int), nil
		}
		stored, err = l.starting.StartingTokenBalance(account)
		if err != nil {
			return nil, err
		}
	}
	v, err := toUint(stored)
	if err != nil {
		return nil, fmt.Errorf("ledger: corrupt balance for %s: %w", account, err)
	}
	return v, nil
}

// Balance returns the balance of account. Accounts that were never credited or
// debited report their ticket's starting token balance.
func (l *Ledger) Balance(account string) (*big.Int, error) {
	v, err := l.current(strings.TrimSpace(account))
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// Credit adds amount to the balance of account. It only fails when the result
// would exceed MaxBalance.
func (l *Ledger) Credit(account string, amount *big.Int) (*big.Int, error) {
	account = strings.TrimSpace(account)
	delta, err := toUint(amount)
	if err != nil {
		return nil, err
	}
	balance, err := l.current(account)
	if err != nil {
		return nil, err
	}
	next, overflow := new(uint256.Int).AddOverflow(balance, delta)
	if overflow || next.Gt(MaxBalance) {
		return nil, fmt.Errorf("%w: crediting %s to %s", ErrOverflow, amount, account)
	}
	updated := next.ToBig()
	if err := l.st.SetTokenBalance(account, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Debit removes amount from the balance of account, failing with
// ErrInsufficientBalance without mutation when the balance is too low. An
// amount above MaxBalance can never be covered and is reported the same way.
func (l *Ledger) Debit(account string, amount *big.Int) (*big.Int, error) {
	account = strings.TrimSpace(account)
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	balance, err := l.current(account)
	if err != nil {
		return nil, err
	}
	if balance.ToBig().Cmp(amount) < 0 {
		return nil, fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, account, balance.Dec(), amount)
	}
	delta, err := toUint(amount)
	if err != nil {
		return nil, err
	}
	updated := new(uint256.Int).Sub(balance, delta).ToBig()
	if err := l.st.SetTokenBalance(account, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
