package events

import "math/big"

const (
	TypeVendorRegistered = "vendor.registered"
	TypeItemListed       = "vendor.item_listed"
	TypeItemUpdated      = "vendor.item_updated"
	TypeItemPurchased    = "vendor.item_purchased"
)

type VendorRegistered struct {
	Vendor string
	Name   string
}

func (VendorRegistered) EventType() string { return TypeVendorRegistered }

func (e VendorRegistered) Record() Record {
	return Record{
		Type: TypeVendorRegistered,
		Attributes: map[string]string{
			"vendor": e.Vendor,
			"name":   e.Name,
		},
	}
}

type ItemListed struct {
	Vendor string
	ItemID uint64
	Price  *big.Int
}

func (ItemListed) EventType() string { return TypeItemListed }

func (e ItemListed) Record() Record {
	return Record{
		Type: TypeItemListed,
		Attributes: map[string]string{
			"vendor": e.Vendor,
			"item":   formatUint(e.ItemID),
			"price":  formatAmount(e.Price),
		},
	}
}

type ItemUpdated struct {
	Vendor  string
	ItemID  uint64
	InStock bool
	Removed bool
}

func (ItemUpdated) EventType() string { return TypeItemUpdated }

func (e ItemUpdated) Record() Record {
	return Record{
		Type: TypeItemUpdated,
		Attributes: map[string]string{
			"vendor":  e.Vendor,
			"item":    formatUint(e.ItemID),
			"inStock": formatBool(e.InStock),
			"removed": formatBool(e.Removed),
		},
	}
}

type ItemPurchased struct {
	Buyer   string
	Vendor  string
	ItemID  uint64
	Price   *big.Int
	InStock bool
}

func (ItemPurchased) EventType() string { return TypeItemPurchased }

func (e ItemPurchased) Record() Record {
	return Record{
		Type: TypeItemPurchased,
		Attributes: map[string]string{
			"buyer":   e.Buyer,
			"vendor":  e.Vendor,
			"item":    formatUint(e.ItemID),
			"price":   formatAmount(e.Price),
			"inStock": formatBool(e.InStock),
		},
	}
}
