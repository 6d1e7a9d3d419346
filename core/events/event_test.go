package events

import (
	"math/big"
	"testing"
)

type capture struct {
	got []Event
}

func (c *capture) Emit(e Event) { c.got = append(c.got, e) }

func TestBufferFlushPreservesOrder(t *testing.T) {
	var buf Buffer
	buf.Emit(ScavengerFound{Account: "alice", DropID: "D2", ScavengerID: "s1", Found: 1, Required: 2})
	buf.Emit(nil)
	buf.Emit(DropClaimed{Account: "alice", DropID: "D2", Kind: "token", Amount: big.NewInt(5)})

	if len(buf.Events()) != 2 {
		t.Fatalf("expected two buffered events, got %d", len(buf.Events()))
	}
	sink := &capture{}
	buf.Flush(sink)
	if len(sink.got) != 2 {
		t.Fatalf("expected two flushed events, got %d", len(sink.got))
	}
	if sink.got[0].EventType() != TypeScavengerFound || sink.got[1].EventType() != TypeDropClaimed {
		t.Fatalf("unexpected order: %s, %s", sink.got[0].EventType(), sink.got[1].EventType())
	}
	if len(buf.Events()) != 0 {
		t.Fatalf("expected buffer to be empty after flush")
	}
}

func TestDropClaimedRecordFormatsAmount(t *testing.T) {
	rec := DropClaimed{Account: "bob", DropID: "nft-1", Kind: "nft"}.Record()
	if rec.Attributes["amount"] != "0" {
		t.Fatalf("expected zero amount for nft claim, got %q", rec.Attributes["amount"])
	}
	rec = ItemPurchased{Buyer: "bob", Vendor: "shop", ItemID: 3, Price: big.NewInt(40)}.Record()
	if rec.Attributes["item"] != "3" || rec.Attributes["price"] != "40" {
		t.Fatalf("unexpected attributes %v", rec.Attributes)
	}
}
