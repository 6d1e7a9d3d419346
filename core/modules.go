package core

import (
	"dropchain/core/events"
	"dropchain/core/genesis"
	"dropchain/core/state"
	"dropchain/native/access"
	"dropchain/native/drops"
	"dropchain/native/ledger"
	"dropchain/native/vendor"
)

// modules is the set of native modules bound to one transaction's state.
// Events raised by any of them are buffered until the transaction commits.
type modules struct {
	events   *events.Buffer
	tickets  *access.Catalog
	accounts *access.Registry
	ledger   *ledger.Ledger
	metadata *ledger.MetadataStore
	drops    *drops.Registry
	engine   *drops.Engine
	vendors  *vendor.Store
}

func (n *Node) newModules(manager *state.Manager) *modules {
	buf := &events.Buffer{}

	tickets := access.NewCatalog(manager)
	accounts := access.NewRegistry(manager, tickets)
	tickets.SetAuthority(accounts)
	tickets.SetEmitter(buf)
	accounts.SetEmitter(buf)

	l := ledger.New(manager, accounts)

	registry := drops.NewRegistry(manager, accounts)
	registry.SetEmitter(buf)

	engine := drops.NewEngine(manager, registry, drops.NewTracker(manager), l, accounts)
	engine.SetEmitter(buf)
	engine.SetPauses(n.pauses)
	if n.nowFn != nil {
		engine.SetNowFunc(n.nowFn)
	}
	if n.idFn != nil {
		engine.SetIDFunc(n.idFn)
	}

	metadata := ledger.NewMetadataStore(manager, registry, accounts)
	metadata.SetEmitter(buf)

	store := vendor.NewStore(manager, accounts, l)
	store.SetEmitter(buf)
	store.SetPauses(n.pauses)

	return &modules{
		events:   buf,
		tickets:  tickets,
		accounts: accounts,
		ledger:   l,
		metadata: metadata,
		drops:    registry,
		engine:   engine,
		vendors:  store,
	}
}

func (m *modules) genesis() genesis.Modules {
	return genesis.Modules{
		Tickets:  m.tickets,
		Accounts: m.accounts,
		Drops:    m.drops,
		Vendors:  m.vendors,
		Metadata: m.metadata,
	}
}
