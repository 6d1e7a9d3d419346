package drops

import "math/big"

// Status is the derived claim state of an (account, drop) pair.
type Status uint8

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusReadyToClaim
	StatusMinting
	StatusClaimed
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusReadyToClaim:
		return "ready_to_claim"
	case StatusMinting:
		return "minting"
	case StatusClaimed:
		return "claimed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ClaimState is the view of one account's progress on one drop.
type ClaimState struct {
	Account       string
	DropID        string
	Status        Status
	Found         []string
	Required      []string
	MintRequestID string
}

func deriveStatus(drop *Drop, rec *claimRecord) Status {
	switch rec.phase() {
	case PhaseClaimed:
		return StatusClaimed
	case PhaseMinting:
		return StatusMinting
	}
	if !drop.Gated() {
		return StatusReadyToClaim
	}
	if complete(drop, rec) {
		return StatusReadyToClaim
	}
	if len(rec.Found) == 0 {
		return StatusNotStarted
	}
	return StatusInProgress
}

func newClaimState(account string, drop *Drop, rec *claimRecord) *ClaimState {
	return &ClaimState{
		Account:       account,
		DropID:        drop.ID,
		Status:        deriveStatus(drop, rec),
		Found:         append([]string{}, rec.Found...),
		Required:      append([]string{}, drop.ScavengerIDs...),
		MintRequestID: rec.MintRequest,
	}
}

// PendingMint is an NFT mint issued by a claim and not yet resolved.
type PendingMint struct {
	RequestID   string
	Account     string
	DropID      string
	ContractID  string
	Method      string
	Args        string
	RequestedAt uint64
}

// ClaimResult describes the effect of a successful Claim call. Exactly one of
// Credited or Mint is set.
type ClaimResult struct {
	State *ClaimState
	// Credited is the amount paid out for a token drop.
	Credited *big.Int
	// Balance is the claimant's balance after a token payout.
	Balance *big.Int
	// Mint must be dispatched to the mint service once the claim commits.
	Mint *PendingMint
}

// NFTOwnership pairs an NFT drop with whether the account holds it.
type NFTOwnership struct {
	Drop  *Drop
	Owned bool
}

// HuntProgress summarises one scavenger hunt for an account.
type HuntProgress struct {
	DropID       string
	Name         string
	Image        string
	ScavengerIDs []string
	Found        []string
}
