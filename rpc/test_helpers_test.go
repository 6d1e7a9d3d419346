package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dropchain/core"
	"dropchain/core/genesis"
	"dropchain/storage"
)

const testJWTSecret = "rpc-test-secret"

func testGenesis() *genesis.GenesisSpec {
	return &genesis.GenesisSpec{
		Tickets: []genesis.TicketSpec{
			{ID: "admin", AccountType: "admin"},
			{ID: "sponsor", AccountType: "sponsor"},
			{ID: "vendor", AccountType: "vendor"},
			{ID: "attendee", AccountType: "basic"},
		},
		Accounts: []genesis.AccountSpec{
			{ID: "root", TicketType: "admin"},
			{ID: "sponsor", TicketType: "sponsor"},
			{ID: "shop", TicketType: "vendor"},
			{ID: "x", TicketType: "attendee"},
			{ID: "y", TicketType: "attendee"},
		},
		Drops: []genesis.DropSpec{
			{ID: "D1", Kind: "token", Name: "Welcome", Amount: "100"},
			{ID: "D2", Kind: "token", Name: "Hunt", Amount: "55", ScavengerIDs: []string{"s1", "s2"}},
		},
		Vendors: []genesis.VendorSpec{
			{Account: "shop", Name: "Shop", Items: []genesis.ItemSpec{{Name: "I1", Price: "40", InStock: true}}},
		},
	}
}

func newTestServer(t testing.TB, cfg ServerConfig) *Server {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	node, err := core.NewNode(db, testGenesis())
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	srv, err := NewServer(node, cfg, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

type testResponse struct {
	Status  int
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func call(t testing.TB, h http.Handler, token, method string, params ...interface{}) testResponse {
	t.Helper()
	raw := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		encoded, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		raw = append(raw, encoded)
	}
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  raw,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	resp.Status = rec.Code
	return resp
}

func decodeResult(t testing.TB, resp testResponse, out interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

// expectError fails unless resp carries the JSON-RPC error code.
func expectError(t testing.TB, resp testResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %s", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("expected error %d, got %d (%s)", code, resp.Error.Code, resp.Error.Message)
	}
}
