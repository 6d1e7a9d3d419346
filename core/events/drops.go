package events

import "math/big"

const (
	TypeDropCreated     = "drop.created"
	TypeScavengerFound  = "drop.scavenger_found"
	TypeDropClaimed     = "drop.claimed"
	TypeMintRequested   = "drop.mint_requested"
	TypeMintResolved    = "drop.mint_resolved"
	TypeMetadataUpdated = "ft.metadata_updated"
)

type DropCreated struct {
	DropID       string
	Kind         string
	Creator      string
	ScavengerIDs []string
}

func (DropCreated) EventType() string { return TypeDropCreated }

func (e DropCreated) Record() Record {
	return Record{
		Type: TypeDropCreated,
		Attributes: map[string]string{
			"drop":       e.DropID,
			"kind":       e.Kind,
			"creator":    e.Creator,
			"scavengers": joinIDs(e.ScavengerIDs),
		},
	}
}

type ScavengerFound struct {
	Account     string
	DropID      string
	ScavengerID string
	Found       uint64
	Required    uint64
}

func (ScavengerFound) EventType() string { return TypeScavengerFound }

func (e ScavengerFound) Record() Record {
	return Record{
		Type: TypeScavengerFound,
		Attributes: map[string]string{
			"account":   e.Account,
			"drop":      e.DropID,
			"scavenger": e.ScavengerID,
			"found":     formatUint(e.Found),
			"required":  formatUint(e.Required),
		},
	}
}

// DropClaimed is raised when a claim reaches its terminal state. Amount is
// nil for NFT drops.
type DropClaimed struct {
	Account string
	DropID  string
	Kind    string
	Amount  *big.Int
}

func (DropClaimed) EventType() string { return TypeDropClaimed }

func (e DropClaimed) Record() Record {
	return Record{
		Type: TypeDropClaimed,
		Attributes: map[string]string{
			"account": e.Account,
			"drop":    e.DropID,
			"kind":    e.Kind,
			"amount":  formatAmount(e.Amount),
		},
	}
}

type MintRequested struct {
	RequestID  string
	Account    string
	DropID     string
	ContractID string
	Method     string
}

func (MintRequested) EventType() string { return TypeMintRequested }

func (e MintRequested) Record() Record {
	return Record{
		Type: TypeMintRequested,
		Attributes: map[string]string{
			"request":  e.RequestID,
			"account":  e.Account,
			"drop":     e.DropID,
			"contract": e.ContractID,
			"method":   e.Method,
		},
	}
}

type MintResolved struct {
	RequestID string
	Account   string
	DropID    string
	Success   bool
	Reason    string
}

func (MintResolved) EventType() string { return TypeMintResolved }

func (e MintResolved) Record() Record {
	return Record{
		Type: TypeMintResolved,
		Attributes: map[string]string{
			"request": e.RequestID,
			"account": e.Account,
			"drop":    e.DropID,
			"success": formatBool(e.Success),
			"reason":  e.Reason,
		},
	}
}

type MetadataUpdated struct {
	Caller string
	Symbol string
}

func (MetadataUpdated) EventType() string { return TypeMetadataUpdated }

func (e MetadataUpdated) Record() Record {
	return Record{
		Type: TypeMetadataUpdated,
		Attributes: map[string]string{
			"caller": e.Caller,
			"symbol": e.Symbol,
		},
	}
}
