package genesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dropchain/native/access"
	"dropchain/native/drops"
)

// GenesisSpec seeds an empty state. Amounts are decimal strings in the token's
// smallest unit.
type GenesisSpec struct {
	Tickets       []TicketSpec  `json:"tickets" yaml:"tickets"`
	Accounts      []AccountSpec `json:"accounts" yaml:"accounts"`
	Drops         []DropSpec    `json:"drops" yaml:"drops"`
	Vendors       []VendorSpec  `json:"vendors" yaml:"vendors"`
	TokenMetadata *MetadataSpec `json:"tokenMetadata,omitempty" yaml:"tokenMetadata,omitempty"`
}

type TicketSpec struct {
	ID                   string `json:"id" yaml:"id"`
	AccountType          string `json:"accountType" yaml:"accountType"`
	StartingNearBalance  string `json:"startingNearBalance,omitempty" yaml:"startingNearBalance,omitempty"`
	StartingTokenBalance string `json:"startingTokenBalance,omitempty" yaml:"startingTokenBalance,omitempty"`
}

type AccountSpec struct {
	ID         string `json:"id" yaml:"id"`
	TicketType string `json:"ticketType" yaml:"ticketType"`
	PublicKey  string `json:"publicKey,omitempty" yaml:"publicKey,omitempty"`
}

type DropSpec struct {
	ID           string   `json:"id" yaml:"id"`
	Kind         string   `json:"kind" yaml:"kind"`
	Name         string   `json:"name" yaml:"name"`
	Image        string   `json:"image,omitempty" yaml:"image,omitempty"`
	ScavengerIDs []string `json:"scavengerIds,omitempty" yaml:"scavengerIds,omitempty"`
	Amount       string   `json:"amount,omitempty" yaml:"amount,omitempty"`
	ContractID   string   `json:"contractId,omitempty" yaml:"contractId,omitempty"`
	Method       string   `json:"method,omitempty" yaml:"method,omitempty"`
	Args         string   `json:"args,omitempty" yaml:"args,omitempty"`
}

type VendorSpec struct {
	Account     string     `json:"account" yaml:"account"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty" yaml:"coverImage,omitempty"`
	Items       []ItemSpec `json:"items,omitempty" yaml:"items,omitempty"`
}

type ItemSpec struct {
	Name      string `json:"name" yaml:"name"`
	Image     string `json:"image,omitempty" yaml:"image,omitempty"`
	Price     string `json:"price" yaml:"price"`
	InStock   bool   `json:"inStock" yaml:"inStock"`
	Unlimited bool   `json:"unlimited,omitempty" yaml:"unlimited,omitempty"`
}

type MetadataSpec struct {
	Spec          string  `json:"spec" yaml:"spec"`
	Name          string  `json:"name" yaml:"name"`
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Icon          *string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Reference     *string `json:"reference,omitempty" yaml:"reference,omitempty"`
	ReferenceHash string  `json:"referenceHash,omitempty" yaml:"referenceHash,omitempty"`
	Decimals      uint8   `json:"decimals" yaml:"decimals"`
}

// LoadGenesisSpec reads a genesis file. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. Unknown fields are rejected.
func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	var spec GenesisSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("decode genesis spec %q: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return nil, fmt.Errorf("decode genesis spec %q: %w", path, err)
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis spec %q: %w", path, err)
	}
	return &spec, nil
}

// Validate checks the spec for internal consistency. State-dependent checks
// (ticket references, duplicates against existing records) happen on Apply.
func (s *GenesisSpec) Validate() error {
	tickets := make(map[string]struct{}, len(s.Tickets))
	for i, t := range s.Tickets {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return fmt.Errorf("tickets[%d]: id must be provided", i)
		}
		if _, dup := tickets[id]; dup {
			return fmt.Errorf("tickets[%d]: duplicate id %q", i, id)
		}
		tickets[id] = struct{}{}
		if _, err := access.ParseStatus(t.AccountType); err != nil {
			return fmt.Errorf("tickets[%d]: %w", i, err)
		}
		if _, err := parseAmountString(t.StartingNearBalance); err != nil {
			return fmt.Errorf("tickets[%d]: startingNearBalance: %w", i, err)
		}
		if _, err := parseAmountString(t.StartingTokenBalance); err != nil {
			return fmt.Errorf("tickets[%d]: startingTokenBalance: %w", i, err)
		}
	}
	accounts := make(map[string]struct{}, len(s.Accounts))
	for i, a := range s.Accounts {
		id := access.NormalizeAccount(a.ID)
		if id == "" {
			return fmt.Errorf("accounts[%d]: id must be provided", i)
		}
		if _, dup := accounts[id]; dup {
			return fmt.Errorf("accounts[%d]: duplicate id %q", i, id)
		}
		accounts[id] = struct{}{}
		if _, ok := tickets[strings.TrimSpace(a.TicketType)]; !ok {
			return fmt.Errorf("accounts[%d]: unknown ticket type %q", i, a.TicketType)
		}
	}
	for i := range s.Drops {
		if _, err := s.Drops[i].Drop(); err != nil {
			return fmt.Errorf("drops[%d]: %w", i, err)
		}
	}
	for i, v := range s.Vendors {
		if _, ok := accounts[access.NormalizeAccount(v.Account)]; !ok {
			return fmt.Errorf("vendors[%d]: account %q is not seeded", i, v.Account)
		}
		for j, item := range v.Items {
			if _, err := parseAmountString(item.Price); err != nil {
				return fmt.Errorf("vendors[%d].items[%d]: price: %w", i, j, err)
			}
		}
	}
	return nil
}

// Drop converts the spec into a drop definition.
func (d DropSpec) Drop() (*drops.Drop, error) {
	kind, err := drops.ParseKind(d.Kind)
	if err != nil {
		return nil, err
	}
	out := &drops.Drop{
		ID:           d.ID,
		Kind:         kind,
		Name:         d.Name,
		Image:        d.Image,
		ScavengerIDs: append([]string(nil), d.ScavengerIDs...),
	}
	switch kind {
	case drops.KindToken:
		amount, err := parseAmountString(d.Amount)
		if err != nil {
			return nil, fmt.Errorf("amount: %w", err)
		}
		out.Token = &drops.TokenPayload{Amount: amount}
	case drops.KindNFT:
		out.NFT = &drops.NFTPayload{ContractID: d.ContractID, Method: d.Method, Args: d.Args}
	}
	return out.Normalize()
}

func parseAmountString(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}
