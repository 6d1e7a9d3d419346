package genesis

import (
	"encoding/base64"
	"fmt"

	"dropchain/native/access"
	"dropchain/native/drops"
	"dropchain/native/ledger"
	"dropchain/native/vendor"
)

// Modules are the seeders genesis writes through. All of them must operate on
// the same state.
type Modules struct {
	Tickets  *access.Catalog
	Accounts *access.Registry
	Drops    *drops.Registry
	Vendors  *vendor.Store
	Metadata *ledger.MetadataStore
}

// Apply seeds tickets, accounts, drops, vendors and token metadata in that
// order. The caller is expected to discard the state on error.
func Apply(spec *GenesisSpec, m Modules) error {
	if spec == nil {
		return fmt.Errorf("genesis spec must not be nil")
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	for i, t := range spec.Tickets {
		status, _ := access.ParseStatus(t.AccountType)
		near, _ := parseAmountString(t.StartingNearBalance)
		token, _ := parseAmountString(t.StartingTokenBalance)
		if _, err := m.Tickets.Seed(access.TicketType{
			ID:                   t.ID,
			AccountType:          status,
			StartingNearBalance:  near,
			StartingTokenBalance: token,
		}); err != nil {
			return fmt.Errorf("tickets[%d]: %w", i, err)
		}
	}
	for i, a := range spec.Accounts {
		if _, err := m.Accounts.Seed(access.Registration{Account: a.ID, TicketType: a.TicketType, PublicKey: a.PublicKey}); err != nil {
			return fmt.Errorf("accounts[%d]: %w", i, err)
		}
	}
	for i := range spec.Drops {
		drop, err := spec.Drops[i].Drop()
		if err != nil {
			return fmt.Errorf("drops[%d]: %w", i, err)
		}
		if _, err := m.Drops.Seed(drop); err != nil {
			return fmt.Errorf("drops[%d]: %w", i, err)
		}
	}
	for i, v := range spec.Vendors {
		if err := m.Vendors.SeedVendor(v.Account, vendor.Metadata{Name: v.Name, Description: v.Description, CoverImage: v.CoverImage}); err != nil {
			return fmt.Errorf("vendors[%d]: %w", i, err)
		}
		for j, item := range v.Items {
			price, _ := parseAmountString(item.Price)
			if _, err := m.Vendors.SeedItem(v.Account, vendor.Listing{
				Name:      item.Name,
				Image:     item.Image,
				Price:     price,
				InStock:   item.InStock,
				Unlimited: item.Unlimited,
			}); err != nil {
				return fmt.Errorf("vendors[%d].items[%d]: %w", i, j, err)
			}
		}
	}
	if md := spec.TokenMetadata; md != nil {
		meta := ledger.Metadata{
			Spec:      md.Spec,
			Name:      md.Name,
			Symbol:    md.Symbol,
			Icon:      md.Icon,
			Reference: md.Reference,
			Decimals:  md.Decimals,
		}
		if md.ReferenceHash != "" {
			hash, err := base64.StdEncoding.DecodeString(md.ReferenceHash)
			if err != nil {
				return fmt.Errorf("tokenMetadata: referenceHash: %w", err)
			}
			meta.ReferenceHash = hash
		}
		if err := m.Metadata.Seed(meta); err != nil {
			return fmt.Errorf("tokenMetadata: %w", err)
		}
	}
	return nil
}
