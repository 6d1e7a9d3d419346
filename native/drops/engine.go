package drops

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"dropchain/core/events"
	"dropchain/core/state"
	"dropchain/native/access"
	"dropchain/native/common"
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	KVAppend(key []byte, value []byte) error
	KVRemove(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

type creditor interface {
	Credit(account string, amount *big.Int) (*big.Int, error)
}

type accountDirectory interface {
	Exists(account string) error
}

// Engine drives the claim state machine of every (account, drop) pair.
type Engine struct {
	st       engineState
	drops    *Registry
	tracker  *Tracker
	ledger   creditor
	accounts accountDirectory
	pauses   common.PauseView
	emitter  events.Emitter
	nowFn    func() int64
	idFn     func() string
}

func NewEngine(st engineState, drops *Registry, tracker *Tracker, ledger creditor, accounts accountDirectory) *Engine {
	return &Engine{
		st:       st,
		drops:    drops,
		tracker:  tracker,
		ledger:   ledger,
		accounts: accounts,
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
		idFn:     func() string { return uuid.NewString() },
	}
}

func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the clock used to stamp mint requests. Passing nil
// restores the wall clock.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetIDFunc overrides the mint request id generator. Passing nil restores
// random UUIDs.
func (e *Engine) SetIDFunc(id func() string) {
	if id == nil {
		e.idFn = func() string { return uuid.NewString() }
		return
	}
	e.idFn = id
}

func (e *Engine) now() uint64 {
	ts := e.nowFn()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) prepare(account, dropID string) (string, *Drop, *claimRecord, error) {
	account = access.NormalizeAccount(account)
	if err := e.accounts.Exists(account); err != nil {
		return "", nil, nil, err
	}
	drop, err := e.drops.Get(dropID)
	if err != nil {
		return "", nil, nil, err
	}
	rec, err := e.tracker.load(account, drop.ID)
	if err != nil {
		return "", nil, nil, err
	}
	return account, drop, rec, nil
}

// MarkFound records scavengerID as found by account for a gated drop.
// Re-marking an id that was already found changes nothing.
func (e *Engine) MarkFound(account, dropID, scavengerID string) (*ClaimState, error) {
	if err := common.Guard(e.pauses, common.ModuleDrops); err != nil {
		return nil, err
	}
	account, drop, rec, err := e.prepare(account, dropID)
	if err != nil {
		return nil, err
	}
	if !drop.Gated() {
		return nil, fmt.Errorf("%w: %s", ErrNotGated, drop.ID)
	}
	scavengerID = strings.TrimSpace(scavengerID)
	if !drop.HasScavenger(scavengerID) {
		return nil, fmt.Errorf("%w: %q is not part of %s", ErrScavengerNotFound, scavengerID, drop.ID)
	}
	if rec.phase() == PhaseClaimed {
		return nil, fmt.Errorf("%w: %s already claimed %s", ErrAlreadyClaimed, account, drop.ID)
	}
	changed, err := e.tracker.mark(account, drop.ID, rec, scavengerID)
	if err != nil {
		return nil, err
	}
	if changed {
		e.emitter.Emit(events.ScavengerFound{
			Account:     account,
			DropID:      drop.ID,
			ScavengerID: scavengerID,
			Found:       uint64(len(rec.Found)),
			Required:    uint64(len(drop.ScavengerIDs)),
		})
	}
	return newClaimState(account, drop, rec), nil
}

// Claim finalises the reward of dropID for account. Token drops are paid out
// immediately. NFT drops move to minting and return the mint request the
// caller has to dispatch after the transaction commits.
func (e *Engine) Claim(account, dropID string) (*ClaimResult, error) {
	if err := common.Guard(e.pauses, common.ModuleDrops); err != nil {
		return nil, err
	}
	account, drop, rec, err := e.prepare(account, dropID)
	if err != nil {
		return nil, err
	}
	switch rec.phase() {
	case PhaseClaimed:
		return nil, fmt.Errorf("%w: %s already claimed %s", ErrAlreadyClaimed, account, drop.ID)
	case PhaseMinting:
		return nil, fmt.Errorf("%w: %s for %s", ErrMintInProgress, drop.ID, account)
	}
	if drop.Gated() && !complete(drop, rec) {
		return nil, fmt.Errorf("%w: %d of %d found", ErrScavengerIncomplete, len(rec.Found), len(drop.ScavengerIDs))
	}

	switch drop.Kind {
	case KindToken:
		return e.claimToken(account, drop, rec)
	case KindNFT:
		return e.claimNFT(account, drop, rec)
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidDrop, uint8(drop.Kind))
	}
}

func (e *Engine) claimToken(account string, drop *Drop, rec *claimRecord) (*ClaimResult, error) {
	amount := new(big.Int).Set(drop.Token.Amount)
	balance, err := e.ledger.Credit(account, amount)
	if err != nil {
		return nil, err
	}
	if err := e.finalise(account, drop, rec); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.DropClaimed{Account: account, DropID: drop.ID, Kind: drop.Kind.String(), Amount: amount})
	return &ClaimResult{
		State:    newClaimState(account, drop, rec),
		Credited: amount,
		Balance:  balance,
	}, nil
}

func (e *Engine) claimNFT(account string, drop *Drop, rec *claimRecord) (*ClaimResult, error) {
	requestID := e.idFn()
	if requestID == "" {
		return nil, fmt.Errorf("drops: empty mint request id")
	}
	exists, err := e.st.KVGet(state.MintPendingKey(requestID), nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("drops: mint request %s already issued", requestID)
	}
	rec.Phase = uint8(PhaseMinting)
	rec.MintRequest = requestID
	if err := e.tracker.save(account, drop.ID, rec); err != nil {
		return nil, err
	}
	pending := &PendingMint{
		RequestID:   requestID,
		Account:     account,
		DropID:      drop.ID,
		ContractID:  drop.NFT.ContractID,
		Method:      drop.NFT.Method,
		Args:        drop.NFT.Args,
		RequestedAt: e.now(),
	}
	if err := e.st.KVPut(state.MintPendingKey(requestID), pending); err != nil {
		return nil, err
	}
	if err := e.st.KVAppend(state.MintIndexKey(), []byte(requestID)); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.MintRequested{
		RequestID:  requestID,
		Account:    account,
		DropID:     drop.ID,
		ContractID: pending.ContractID,
		Method:     pending.Method,
	})
	copied := *pending
	return &ClaimResult{State: newClaimState(account, drop, rec), Mint: &copied}, nil
}

func (e *Engine) finalise(account string, drop *Drop, rec *claimRecord) error {
	rec.Phase = uint8(PhaseClaimed)
	rec.MintRequest = ""
	if err := e.tracker.save(account, drop.ID, rec); err != nil {
		return err
	}
	return e.st.KVAppend(state.ClaimedDropsKey(account), []byte(drop.ID))
}

// ResolveMint applies the outcome of a mint request. It is the only path out
// of the minting phase: success marks the claim as claimed, failure returns it
// to ready-to-claim. Unknown, already resolved or superseded requests fail with
// ErrMintNotFound and change nothing.
func (e *Engine) ResolveMint(requestID string, success bool, reason string) (*ClaimState, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrMintNotFound)
	}
	pending := new(PendingMint)
	ok, err := e.st.KVGet(state.MintPendingKey(requestID), pending)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, requestID)
	}
	drop, err := e.drops.Get(pending.DropID)
	if err != nil {
		return nil, err
	}
	rec, err := e.tracker.load(pending.Account, drop.ID)
	if err != nil {
		return nil, err
	}
	if rec.phase() != PhaseMinting || rec.MintRequest != requestID {
		return nil, fmt.Errorf("%w: %s is stale", ErrMintNotFound, requestID)
	}

	if success {
		if err := e.finalise(pending.Account, drop, rec); err != nil {
			return nil, err
		}
	} else {
		rec.Phase = uint8(PhaseOpen)
		rec.MintRequest = ""
		if err := e.tracker.save(pending.Account, drop.ID, rec); err != nil {
			return nil, err
		}
	}
	if err := e.st.KVDelete(state.MintPendingKey(requestID)); err != nil {
		return nil, err
	}
	if err := e.st.KVRemove(state.MintIndexKey(), []byte(requestID)); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.MintResolved{
		RequestID: requestID,
		Account:   pending.Account,
		DropID:    drop.ID,
		Success:   success,
		Reason:    reason,
	})
	if success {
		e.emitter.Emit(events.DropClaimed{Account: pending.Account, DropID: drop.ID, Kind: drop.Kind.String()})
	}
	return newClaimState(pending.Account, drop, rec), nil
}

// PendingMints returns every unresolved mint request in issue order.
func (e *Engine) PendingMints() ([]*PendingMint, error) {
	var ids []string
	if err := e.st.KVGetList(state.MintIndexKey(), &ids); err != nil {
		return nil, err
	}
	out := make([]*PendingMint, 0, len(ids))
	for _, id := range ids {
		pending := new(PendingMint)
		ok, err := e.st.KVGet(state.MintPendingKey(id), pending)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, pending)
	}
	return out, nil
}

// ClaimState reports the progress of account on dropID.
func (e *Engine) ClaimState(account, dropID string) (*ClaimState, error) {
	account, drop, rec, err := e.prepare(account, dropID)
	if err != nil {
		return nil, err
	}
	return newClaimState(account, drop, rec), nil
}

// ClaimedBy lists the drops account has fully claimed, oldest first.
func (e *Engine) ClaimedBy(account string) ([]string, error) {
	account = access.NormalizeAccount(account)
	if err := e.accounts.Exists(account); err != nil {
		return nil, err
	}
	var ids []string
	if err := e.st.KVGetList(state.ClaimedDropsKey(account), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NFTsForAccount lists every NFT drop and whether account has claimed it.
func (e *Engine) NFTsForAccount(account string) ([]NFTOwnership, error) {
	account = access.NormalizeAccount(account)
	if err := e.accounts.Exists(account); err != nil {
		return nil, err
	}
	all, err := e.drops.List()
	if err != nil {
		return nil, err
	}
	out := make([]NFTOwnership, 0)
	for _, drop := range all {
		if drop.Kind != KindNFT {
			continue
		}
		rec, err := e.tracker.load(account, drop.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, NFTOwnership{Drop: drop, Owned: rec.phase() == PhaseClaimed})
	}
	return out, nil
}

// ScavengerHuntsForAccount lists every gated drop with the ids account has
// found so far.
func (e *Engine) ScavengerHuntsForAccount(account string) ([]HuntProgress, error) {
	account = access.NormalizeAccount(account)
	if err := e.accounts.Exists(account); err != nil {
		return nil, err
	}
	all, err := e.drops.List()
	if err != nil {
		return nil, err
	}
	out := make([]HuntProgress, 0)
	for _, drop := range all {
		if !drop.Gated() {
			continue
		}
		found, err := e.tracker.Found(account, drop.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, HuntProgress{
			DropID:       drop.ID,
			Name:         drop.Name,
			Image:        drop.Image,
			ScavengerIDs: append([]string(nil), drop.ScavengerIDs...),
			Found:        found,
		})
	}
	return out, nil
}
