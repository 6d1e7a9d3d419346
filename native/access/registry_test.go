package access_test

import (
	"errors"
	"math/big"
	"testing"

	coreerrors "dropchain/core/errors"
	"dropchain/core/events"
	"dropchain/core/state"
	"dropchain/native/access"
	"dropchain/storage"
	statetrie "dropchain/storage/trie"
)

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(e events.Event) {
	c.events = append(c.events, e)
}

func newTestRegistry(t *testing.T) (*access.Registry, *access.Catalog) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := statetrie.NewTrie(db, nil)
	if err != nil {
		t.Fatalf("create trie: %v", err)
	}
	manager := state.NewManager(tr)
	catalog := access.NewCatalog(manager)
	registry := access.NewRegistry(manager, catalog)
	catalog.SetAuthority(registry)

	for _, ticket := range []access.TicketType{
		{ID: "admin", AccountType: access.StatusAdmin},
		{ID: "sponsor", AccountType: access.StatusSponsor, StartingTokenBalance: big.NewInt(500)},
		{ID: "vendor", AccountType: access.StatusVendor},
		{ID: "basic", AccountType: access.StatusBasic, StartingNearBalance: big.NewInt(3), StartingTokenBalance: big.NewInt(25)},
	} {
		if _, err := catalog.Seed(ticket); err != nil {
			t.Fatalf("seed ticket %s: %v", ticket.ID, err)
		}
	}
	if _, err := registry.Seed(access.Registration{Account: "root", TicketType: "admin"}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return registry, catalog
}

func TestCapabilitiesFollowHierarchy(t *testing.T) {
	cases := []struct {
		status                   access.AccountStatus
		admin, sponsor, isVendor bool
	}{
		{access.StatusBasic, false, false, false},
		{access.StatusVendor, false, false, true},
		{access.StatusSponsor, false, true, false},
		{access.StatusAdmin, true, true, true},
	}
	for _, tc := range cases {
		if tc.status.IsAdmin() != tc.admin || tc.status.IsSponsor() != tc.sponsor || tc.status.IsVendor() != tc.isVendor {
			t.Fatalf("%s: unexpected capability set", tc.status)
		}
	}
	if access.AccountStatus(9).Has(0) {
		t.Fatalf("unknown status must not grant anything")
	}
}

func TestParseStatusRoundTrip(t *testing.T) {
	for _, name := range []string{"basic", "Vendor", " SPONSOR ", "admin"} {
		status, err := access.ParseStatus(name)
		if err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
		text, err := status.MarshalText()
		if err != nil {
			t.Fatalf("marshal %s: %v", status, err)
		}
		var decoded access.AccountStatus
		if err := decoded.UnmarshalText(text); err != nil || decoded != status {
			t.Fatalf("round trip %q: got %v, %v", name, decoded, err)
		}
	}
	if _, err := access.ParseStatus("owner"); !errors.Is(err, coreerrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRegisterAppliesTicket(t *testing.T) {
	registry, _ := newTestRegistry(t)
	emitter := &capturingEmitter{}
	registry.SetEmitter(emitter)

	acct, err := registry.Register("root", access.Registration{Account: " Alice ", TicketType: "basic", PublicKey: "ed25519:abc"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if acct.ID != "alice" || acct.Status != access.StatusBasic {
		t.Fatalf("unexpected account %+v", acct)
	}
	if acct.StartingTokenBalance.Cmp(big.NewInt(25)) != 0 || acct.StartingNearBalance.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("unexpected starting balances %+v", acct)
	}
	starting, err := registry.StartingTokenBalance("ALICE")
	if err != nil || starting.Cmp(big.NewInt(25)) != 0 {
		t.Fatalf("starting balance: %v %v", starting, err)
	}
	owner, err := registry.AccountByKey("ed25519:abc")
	if err != nil || owner != "alice" {
		t.Fatalf("account by key: %q %v", owner, err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	registered, ok := emitter.events[0].(events.AccountRegistered)
	if !ok || registered.Account != "alice" || registered.TicketType != "basic" {
		t.Fatalf("unexpected event %+v", emitter.events[0])
	}
}

func TestRegisterRejections(t *testing.T) {
	registry, _ := newTestRegistry(t)
	if _, err := registry.Register("root", access.Registration{Account: "bob", TicketType: "basic", PublicKey: "k1"}); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	if _, err := registry.Register("bob", access.Registration{Account: "carol", TicketType: "basic"}); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := registry.Register("root", access.Registration{Account: "BOB", TicketType: "basic"}); !errors.Is(err, access.ErrAccountExists) {
		t.Fatalf("expected exists, got %v", err)
	}
	if _, err := registry.Register("root", access.Registration{Account: "carol", TicketType: "missing"}); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Fatalf("expected ticket not found, got %v", err)
	}
	if _, err := registry.Register("root", access.Registration{Account: "carol", TicketType: "basic", PublicKey: "k1"}); !errors.Is(err, access.ErrKeyBound) {
		t.Fatalf("expected key bound, got %v", err)
	}
	if _, err := registry.Register("root", access.Registration{Account: "has space", TicketType: "basic"}); !errors.Is(err, access.ErrInvalidAccount) {
		t.Fatalf("expected invalid account, got %v", err)
	}
	if err := registry.Exists("carol"); !errors.Is(err, access.ErrAccountNotFound) {
		t.Fatalf("rejected registrations must not create carol: %v", err)
	}
}

func TestRequireAndSetRole(t *testing.T) {
	registry, _ := newTestRegistry(t)
	if _, err := registry.Seed(access.Registration{Account: "dave", TicketType: "basic"}); err != nil {
		t.Fatalf("seed dave: %v", err)
	}
	if err := registry.Require("dave", access.CapSponsor); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := registry.Require("ghost", access.CapSponsor); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := registry.SetRole("dave", "dave", access.StatusAdmin); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Fatalf("basic accounts must not promote themselves: %v", err)
	}

	emitter := &capturingEmitter{}
	registry.SetEmitter(emitter)
	if err := registry.SetRole("root", "dave", access.StatusSponsor); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := registry.Require("dave", access.CapSponsor); err != nil {
		t.Fatalf("sponsor capability: %v", err)
	}
	if err := registry.Require("dave", access.CapVendor); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Fatalf("sponsor must not imply vendor: %v", err)
	}
	if err := registry.SetRole("root", "dave", access.AccountStatus(42)); !errors.Is(err, access.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one role event, got %d", len(emitter.events))
	}
}

func TestCatalogDefine(t *testing.T) {
	registry, catalog := newTestRegistry(t)
	if _, err := registry.Seed(access.Registration{Account: "erin", TicketType: "sponsor"}); err != nil {
		t.Fatalf("seed erin: %v", err)
	}
	ticket := access.TicketType{ID: "vip", AccountType: access.StatusVendor, StartingTokenBalance: big.NewInt(10)}
	if _, err := catalog.Define("erin", ticket); !errors.Is(err, coreerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := catalog.Define("root", ticket); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := catalog.Define("root", ticket); !errors.Is(err, access.ErrTicketExists) {
		t.Fatalf("expected exists, got %v", err)
	}
	resolved, err := catalog.Resolve("vip")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.AccountType != access.StatusVendor || resolved.StartingTokenBalance.Cmp(big.NewInt(10)) != 0 || resolved.StartingNearBalance.Sign() != 0 {
		t.Fatalf("unexpected ticket %+v", resolved)
	}
	if _, err := catalog.Define("root", access.TicketType{ID: "neg", StartingTokenBalance: big.NewInt(-1)}); !errors.Is(err, access.ErrInvalidTicket) {
		t.Fatalf("expected invalid ticket, got %v", err)
	}
	if _, err := catalog.Resolve("nope"); !errors.Is(err, access.ErrTicketNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogStartingBalanceCeiling(t *testing.T) {
	_, catalog := newTestRegistry(t)
	tooHigh := new(big.Int).Add(state.MaxTokenAmount, big.NewInt(1))
	if _, err := catalog.Define("root", access.TicketType{ID: "whale", AccountType: access.StatusBasic, StartingTokenBalance: tooHigh}); !errors.Is(err, access.ErrInvalidTicket) {
		t.Fatalf("expected invalid ticket, got %v", err)
	}
	if _, err := catalog.Define("root", access.TicketType{ID: "cap", AccountType: access.StatusBasic, StartingTokenBalance: new(big.Int).Set(state.MaxTokenAmount)}); err != nil {
		t.Fatalf("define at ceiling: %v", err)
	}
}
