package core

import (
	"context"
	"errors"
	"math/big"

	"dropchain/native/access"
	"dropchain/native/drops"
	"dropchain/native/ledger"
	"dropchain/native/vendor"
)

// StartMinting attaches d to the node, starts its workers and re-dispatches
// every mint request left pending by a previous run under its original id.
func (n *Node) StartMinting(ctx context.Context, d *MintDispatcher) error {
	n.mintMu.Lock()
	n.minting = d
	n.mintMu.Unlock()
	d.Start(ctx, func(requestID string, success bool, reason string) error {
		_, err := n.ResolveMint(requestID, success, reason)
		return err
	})

	pending, err := n.PendingMints()
	if err != nil {
		return err
	}
	for _, req := range pending {
		n.dispatchMint(req)
	}
	if len(pending) > 0 {
		n.log().Info("re-dispatched pending mints", "count", len(pending))
	}
	return nil
}

// StopMinting detaches and stops the dispatcher. Outstanding requests stay
// pending until the next StartMinting.
func (n *Node) StopMinting() {
	n.mintMu.Lock()
	d := n.minting
	n.minting = nil
	n.mintMu.Unlock()
	if d != nil {
		d.Stop()
	}
}

// dispatchMint must be called without stateMu held. Without a dispatcher the
// request waits for an explicit ResolveMint. A full queue fails the mint right
// away so the claim can be retried.
func (n *Node) dispatchMint(req *drops.PendingMint) {
	n.mintMu.RLock()
	d := n.minting
	n.mintMu.RUnlock()
	if d == nil {
		return
	}
	err := d.Submit(req)
	if err == nil {
		return
	}
	if errors.Is(err, ErrMintDispatcherClosed) {
		return
	}
	logger := n.log()
	logger.Warn("mint not dispatched", "request", req.RequestID, "error", err)
	if _, rerr := n.ResolveMint(req.RequestID, false, err.Error()); rerr != nil {
		logger.Warn("mint resolution rejected", "request", req.RequestID, "error", rerr)
	}
}

// Require fails unless account holds capability.
func (n *Node) Require(account string, capability access.Capability) error {
	return n.read(func(m *modules) error {
		return m.accounts.Require(account, capability)
	})
}

func (n *Node) RegisterAccount(caller string, reg access.Registration) (*access.Account, error) {
	var out *access.Account
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.accounts.Register(caller, reg)
		return err
	})
	return out, err
}

func (n *Node) SetRole(caller, account string, status access.AccountStatus) error {
	return n.transact(func(m *modules) error {
		return m.accounts.SetRole(caller, account, status)
	})
}

func (n *Node) Account(account string) (*access.Account, error) {
	var out *access.Account
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.accounts.Account(account)
		return err
	})
	return out, err
}

func (n *Node) AccountByKey(publicKey string) (string, error) {
	var out string
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.accounts.AccountByKey(publicKey)
		return err
	})
	return out, err
}

func (n *Node) DefineTicket(caller string, ticket access.TicketType) (*access.TicketType, error) {
	var out *access.TicketType
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.tickets.Define(caller, ticket)
		return err
	})
	return out, err
}

func (n *Node) Ticket(id string) (*access.TicketType, error) {
	var out *access.TicketType
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.tickets.Resolve(id)
		return err
	})
	return out, err
}

// Balance returns the token balance of account.
func (n *Node) Balance(account string) (*big.Int, error) {
	var out *big.Int
	err := n.read(func(m *modules) error {
		if err := m.accounts.Exists(account); err != nil {
			return err
		}
		var err error
		out, err = m.ledger.Balance(access.NormalizeAccount(account))
		return err
	})
	return out, err
}

func (n *Node) CreateDrop(caller string, drop *drops.Drop) (*drops.Drop, error) {
	var out *drops.Drop
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.drops.Create(caller, drop)
		return err
	})
	return out, err
}

func (n *Node) Drop(id string) (*drops.Drop, error) {
	var out *drops.Drop
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.drops.Get(id)
		return err
	})
	return out, err
}

func (n *Node) Drops() ([]*drops.Drop, error) {
	var out []*drops.Drop
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.drops.List()
		return err
	})
	return out, err
}

func (n *Node) MarkFound(account, dropID, scavengerID string) (*drops.ClaimState, error) {
	var out *drops.ClaimState
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.engine.MarkFound(account, dropID, scavengerID)
		return err
	})
	return out, err
}

// Claim runs the claim transaction. For NFT drops the mint request is handed
// to the dispatcher only after the minting phase has been committed.
func (n *Node) Claim(account, dropID string) (*drops.ClaimResult, error) {
	var out *drops.ClaimResult
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.engine.Claim(account, dropID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Mint != nil {
		n.dispatchMint(out.Mint)
	}
	return out, nil
}

// ResolveMint finalises or rolls back a minting claim.
func (n *Node) ResolveMint(requestID string, success bool, reason string) (*drops.ClaimState, error) {
	var out *drops.ClaimState
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.engine.ResolveMint(requestID, success, reason)
		return err
	})
	return out, err
}

func (n *Node) PendingMints() ([]*drops.PendingMint, error) {
	var out []*drops.PendingMint
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.engine.PendingMints()
		return err
	})
	return out, err
}

func (n *Node) ClaimState(account, dropID string) (*drops.ClaimState, error) {
	var out *drops.ClaimState
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.engine.ClaimState(account, dropID)
		return err
	})
	return out, err
}

func (n *Node) ClaimedBy(account string) ([]string, error) {
	var out []string
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.engine.ClaimedBy(account)
		return err
	})
	return out, err
}

func (n *Node) NFTsForAccount(account string) ([]drops.NFTOwnership, error) {
	var out []drops.NFTOwnership
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.engine.NFTsForAccount(account)
		return err
	})
	return out, err
}

func (n *Node) ScavengerHuntsForAccount(account string) ([]drops.HuntProgress, error) {
	var out []drops.HuntProgress
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.engine.ScavengerHuntsForAccount(account)
		return err
	})
	return out, err
}

func (n *Node) RegisterVendor(caller, vendorID string, meta vendor.Metadata) error {
	return n.transact(func(m *modules) error {
		return m.vendors.Register(caller, vendorID, meta)
	})
}

func (n *Node) AddItem(caller, vendorID string, listing vendor.Listing) (uint64, error) {
	var out uint64
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.vendors.AddItem(caller, vendorID, listing)
		return err
	})
	return out, err
}

func (n *Node) UpdateItem(caller, vendorID string, itemID uint64, listing vendor.Listing) error {
	return n.transact(func(m *modules) error {
		return m.vendors.UpdateItem(caller, vendorID, itemID, listing)
	})
}

func (n *Node) RemoveItem(caller, vendorID string, itemID uint64) error {
	return n.transact(func(m *modules) error {
		return m.vendors.RemoveItem(caller, vendorID, itemID)
	})
}

func (n *Node) VendorMetadata(vendorID string) (*vendor.Metadata, error) {
	var out *vendor.Metadata
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.vendors.Metadata(vendorID)
		return err
	})
	return out, err
}

func (n *Node) VendorItems(vendorID string, offset uint64, limit *uint64) ([]vendor.ExtItem, error) {
	var out []vendor.ExtItem
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.vendors.Items(vendorID, offset, limit)
		return err
	})
	return out, err
}

func (n *Node) VendorItem(vendorID string, itemID uint64) (*vendor.ExtItem, error) {
	var out *vendor.ExtItem
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.vendors.Item(vendorID, itemID)
		return err
	})
	return out, err
}

// Purchase debits buyer and updates stock in one transaction.
func (n *Node) Purchase(buyer, vendorID string, itemID uint64) (*vendor.Receipt, error) {
	var out *vendor.Receipt
	err := n.transact(func(m *modules) error {
		var err error
		out, err = m.vendors.Purchase(buyer, vendorID, itemID)
		return err
	})
	return out, err
}

func (n *Node) TokenMetadata(dropID *string) (*ledger.Metadata, error) {
	var out *ledger.Metadata
	err := n.read(func(m *modules) error {
		var err error
		out, err = m.metadata.Get(dropID)
		return err
	})
	return out, err
}

func (n *Node) UpdateTokenMetadata(caller string, meta ledger.Metadata) error {
	return n.transact(func(m *modules) error {
		return m.metadata.Update(caller, meta)
	})
}
