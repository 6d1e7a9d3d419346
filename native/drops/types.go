package drops

import (
	"fmt"
	"math/big"
	"strings"

	"dropchain/core/state"
)

// Kind discriminates the drop payload. It is persisted with the drop so the
// payload type is never inferred from which fields happen to be set.
type Kind uint8

const (
	KindToken Kind = iota + 1
	KindNFT
)

func (k Kind) Valid() bool { return k == KindToken || k == KindNFT }

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindNFT:
		return "nft"
	default:
		return "unknown"
	}
}

func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "token":
		return KindToken, nil
	case "nft":
		return KindNFT, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidDrop, raw)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidDrop, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// TokenPayload pays Amount fungible tokens per claim.
type TokenPayload struct {
	Amount *big.Int
}

// NFTPayload is handed verbatim to the mint service on claim.
type NFTPayload struct {
	ContractID string
	Method     string
	Args       string
}

// Drop is a claimable allocation. Exactly one of Token or NFT is set, matching
// Kind. A nil or empty ScavengerIDs means the drop is not gated.
type Drop struct {
	ID           string
	Kind         Kind
	Name         string
	Image        string
	ScavengerIDs []string
	Token        *TokenPayload
	NFT          *NFTPayload
}

// Gated reports whether claiming requires a completed scavenger hunt.
func (d *Drop) Gated() bool {
	return d != nil && len(d.ScavengerIDs) > 0
}

// HasScavenger reports whether id is part of the drop's hunt.
func (d *Drop) HasScavenger(id string) bool {
	for _, s := range d.ScavengerIDs {
		if s == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (d *Drop) Clone() *Drop {
	if d == nil {
		return nil
	}
	out := *d
	if d.ScavengerIDs != nil {
		out.ScavengerIDs = append([]string(nil), d.ScavengerIDs...)
	}
	if d.Token != nil {
		amount := new(big.Int)
		if d.Token.Amount != nil {
			amount.Set(d.Token.Amount)
		}
		out.Token = &TokenPayload{Amount: amount}
	}
	if d.NFT != nil {
		nft := *d.NFT
		out.NFT = &nft
	}
	return &out
}

// Normalize trims identifiers and returns a validated copy of the drop.
func (d *Drop) Normalize() (*Drop, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil drop", ErrInvalidDrop)
	}
	out := d.Clone()
	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return nil, fmt.Errorf("%w: id required", ErrInvalidDrop)
	}
	out.Name = strings.TrimSpace(out.Name)
	out.Image = strings.TrimSpace(out.Image)
	if len(out.ScavengerIDs) == 0 {
		out.ScavengerIDs = nil
	}
	seen := make(map[string]struct{}, len(out.ScavengerIDs))
	for i, raw := range out.ScavengerIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, fmt.Errorf("%w: empty scavenger id", ErrInvalidDrop)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate scavenger id %q", ErrInvalidDrop, id)
		}
		seen[id] = struct{}{}
		out.ScavengerIDs[i] = id
	}
	switch out.Kind {
	case KindToken:
		if out.Token == nil || out.NFT != nil {
			return nil, fmt.Errorf("%w: token drop needs a token payload only", ErrInvalidDrop)
		}
		if out.Token.Amount.Sign() <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidDrop)
		}
		if out.Token.Amount.Cmp(state.MaxTokenAmount) > 0 {
			return nil, fmt.Errorf("%w: amount exceeds %s", ErrInvalidDrop, state.MaxTokenAmount)
		}
	case KindNFT:
		if out.NFT == nil || out.Token != nil {
			return nil, fmt.Errorf("%w: nft drop needs an nft payload only", ErrInvalidDrop)
		}
		out.NFT.ContractID = strings.TrimSpace(out.NFT.ContractID)
		out.NFT.Method = strings.TrimSpace(out.NFT.Method)
		if out.NFT.ContractID == "" || out.NFT.Method == "" {
			return nil, fmt.Errorf("%w: contract id and method required", ErrInvalidDrop)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidDrop, uint8(out.Kind))
	}
	return out, nil
}

type storedDrop struct {
	Kind         uint8
	Name         string
	Image        string
	ScavengerIDs []string
	Amount       *big.Int
	ContractID   string
	Method       string
	Args         string
}

func toStored(d *Drop) *storedDrop {
	s := &storedDrop{
		Kind:         uint8(d.Kind),
		Name:         d.Name,
		Image:        d.Image,
		ScavengerIDs: d.ScavengerIDs,
		Amount:       new(big.Int),
	}
	if d.Token != nil {
		s.Amount.Set(d.Token.Amount)
	}
	if d.NFT != nil {
		s.ContractID = d.NFT.ContractID
		s.Method = d.NFT.Method
		s.Args = d.NFT.Args
	}
	return s
}

func (s *storedDrop) toDrop(id string) *Drop {
	d := &Drop{
		ID:    id,
		Kind:  Kind(s.Kind),
		Name:  s.Name,
		Image: s.Image,
	}
	if len(s.ScavengerIDs) > 0 {
		d.ScavengerIDs = append([]string(nil), s.ScavengerIDs...)
	}
	switch d.Kind {
	case KindToken:
		amount := new(big.Int)
		if s.Amount != nil {
			amount.Set(s.Amount)
		}
		d.Token = &TokenPayload{Amount: amount}
	case KindNFT:
		d.NFT = &NFTPayload{ContractID: s.ContractID, Method: s.Method, Args: s.Args}
	}
	return d
}
