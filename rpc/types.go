package rpc

import (
	"math/big"
	"strings"

	"dropchain/native/access"
	"dropchain/native/drops"
	"dropchain/native/vendor"
)

// Amounts cross the wire as base-10 strings.

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(field, raw string) (*big.Int, *RPCError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, invalidParams("%s required", field)
	}
	v, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || v.Sign() < 0 {
		return nil, invalidParams("%s must be a non-negative integer", field)
	}
	return v, nil
}

type AccountResult struct {
	ID                   string `json:"id"`
	Status               string `json:"status"`
	TicketType           string `json:"ticketType"`
	StartingNearBalance  string `json:"startingNearBalance"`
	StartingTokenBalance string `json:"startingTokenBalance"`
	PublicKey            string `json:"publicKey,omitempty"`
}

func newAccountResult(a *access.Account) AccountResult {
	return AccountResult{
		ID:                   a.ID,
		Status:               a.Status.String(),
		TicketType:           a.TicketType,
		StartingNearBalance:  formatAmount(a.StartingNearBalance),
		StartingTokenBalance: formatAmount(a.StartingTokenBalance),
		PublicKey:            a.PublicKey,
	}
}

type TicketResult struct {
	ID                   string `json:"id"`
	AccountType          string `json:"accountType"`
	StartingNearBalance  string `json:"startingNearBalance"`
	StartingTokenBalance string `json:"startingTokenBalance"`
}

func newTicketResult(t *access.TicketType) TicketResult {
	return TicketResult{
		ID:                   t.ID,
		AccountType:          t.AccountType.String(),
		StartingNearBalance:  formatAmount(t.StartingNearBalance),
		StartingTokenBalance: formatAmount(t.StartingTokenBalance),
	}
}

type BalanceResult struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

// DropResult flattens the token/NFT union with an explicit kind tag.
type DropResult struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Image        string   `json:"image,omitempty"`
	ScavengerIDs []string `json:"scavengerIds,omitempty"`
	Amount       string   `json:"amount,omitempty"`
	ContractID   string   `json:"contractId,omitempty"`
	Method       string   `json:"method,omitempty"`
	Args         string   `json:"args,omitempty"`
}

func newDropResult(d *drops.Drop) DropResult {
	out := DropResult{
		ID:           d.ID,
		Kind:         d.Kind.String(),
		Name:         d.Name,
		Image:        d.Image,
		ScavengerIDs: d.ScavengerIDs,
	}
	if d.Token != nil {
		out.Amount = formatAmount(d.Token.Amount)
	}
	if d.NFT != nil {
		out.ContractID = d.NFT.ContractID
		out.Method = d.NFT.Method
		out.Args = d.NFT.Args
	}
	return out
}

type ClaimStateResult struct {
	Account       string   `json:"account"`
	DropID        string   `json:"dropId"`
	Status        string   `json:"status"`
	Found         []string `json:"found"`
	Required      []string `json:"required"`
	MintRequestID string   `json:"mintRequestId,omitempty"`
}

func newClaimStateResult(cs *drops.ClaimState) ClaimStateResult {
	return ClaimStateResult{
		Account:       cs.Account,
		DropID:        cs.DropID,
		Status:        cs.Status.String(),
		Found:         cs.Found,
		Required:      cs.Required,
		MintRequestID: cs.MintRequestID,
	}
}

type ClaimResult struct {
	State    ClaimStateResult `json:"state"`
	Credited string           `json:"credited,omitempty"`
	Balance  string           `json:"balance,omitempty"`
}

type NFTOwnershipResult struct {
	Drop  DropResult `json:"drop"`
	Owned bool       `json:"owned"`
}

type HuntResult struct {
	DropID       string   `json:"dropId"`
	Name         string   `json:"name"`
	Image        string   `json:"image,omitempty"`
	ScavengerIDs []string `json:"scavengerIds"`
	Found        []string `json:"found"`
}

type ItemResult struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	Price   string `json:"price"`
	InStock bool   `json:"in_stock"`
}

func newItemResult(i vendor.ExtItem) ItemResult {
	return ItemResult{Name: i.Name, Image: i.Image, Price: formatAmount(i.Price), InStock: i.InStock}
}

type ReceiptResult struct {
	Buyer   string `json:"buyer"`
	Vendor  string `json:"vendor"`
	ItemID  uint64 `json:"itemId"`
	Price   string `json:"price"`
	Balance string `json:"balance"`
	InStock bool   `json:"inStock"`
}

type MetadataResult struct {
	Spec           string  `json:"spec"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Icon           *string `json:"icon,omitempty"`
	Reference      *string `json:"reference,omitempty"`
	ReferenceHash  []byte  `json:"reference_hash,omitempty"`
	Decimals       uint8   `json:"decimals"`
	MintedPerClaim *string `json:"minted_per_claim,omitempty"`
}
