package state

import (
	"encoding/binary"
)

// Namespaces partition the key space. No namespace is a prefix of another and
// every variable component is length-prefixed, so keys from different
// namespaces (or different component splits) can never collide.
const (
	nsVendor        = "vendor/"
	nsVendorItem    = "vendor-item/"
	nsAccountKey    = "account-key/"
	nsClaimedDrops  = "claimed-drops/"
	nsClaimRecord   = "claim/"
	nsDrop          = "drop/"
	nsDropIndex     = "drop-index"
	nsAccountStatus = "account-status/"
	nsBalance       = "balance/"
	nsTicketData    = "ticket/"
	nsMintPending   = "mint-pending/"
	nsMintIndex     = "mint-index"
	nsTokenMetadata = "ft-metadata"
)

// Namespaces lists every namespace prefix in use.
func Namespaces() []string {
	return []string{
		nsVendor, nsVendorItem, nsAccountKey, nsClaimedDrops, nsClaimRecord,
		nsDrop, nsDropIndex, nsAccountStatus, nsBalance, nsTicketData,
		nsMintPending, nsMintIndex, nsTokenMetadata,
	}
}

func buildKey(ns string, parts ...[]byte) []byte {
	size := len(ns)
	for _, p := range parts {
		size += binary.MaxVarintLen64 + len(p)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, ns...)
	for _, p := range parts {
		buf = binary.AppendUvarint(buf, uint64(len(p)))
		buf = append(buf, p...)
	}
	return buf
}

func uint64Bytes(v uint64) []byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], v)
	return out[:]
}

// VendorKey addresses the storefront record of vendor.
func VendorKey(vendor string) []byte {
	return buildKey(nsVendor, []byte(vendor))
}

// VendorItemKey addresses one slot of vendor's item arena.
func VendorItemKey(vendor string, itemID uint64) []byte {
	return buildKey(nsVendorItem, []byte(vendor), uint64Bytes(itemID))
}

// AccountKeyKey maps a public key to the account that registered it.
func AccountKeyKey(publicKey string) []byte {
	return buildKey(nsAccountKey, []byte(publicKey))
}

// ClaimedDropsKey holds the ordered list of drop ids account has claimed.
func ClaimedDropsKey(account string) []byte {
	return buildKey(nsClaimedDrops, []byte(account))
}

// ClaimRecordKey addresses the claim progress of account for dropID.
func ClaimRecordKey(account, dropID string) []byte {
	return buildKey(nsClaimRecord, []byte(account), []byte(dropID))
}

func DropKey(dropID string) []byte {
	return buildKey(nsDrop, []byte(dropID))
}

func DropIndexKey() []byte {
	return []byte(nsDropIndex)
}

func AccountStatusKey(account string) []byte {
	return buildKey(nsAccountStatus, []byte(account))
}

func BalanceKey(account string) []byte {
	return buildKey(nsBalance, []byte(account))
}

func TicketDataKey(ticketType string) []byte {
	return buildKey(nsTicketData, []byte(ticketType))
}

// MintPendingKey addresses an in-flight mint request.
func MintPendingKey(requestID string) []byte {
	return buildKey(nsMintPending, []byte(requestID))
}

// MintIndexKey lists the ids of every in-flight mint request.
func MintIndexKey() []byte {
	return []byte(nsMintIndex)
}

func TokenMetadataKey() []byte {
	return []byte(nsTokenMetadata)
}
