package rpc

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "rpc-tests",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestClaimAndPurchaseOverRPC(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	var claim ClaimResult
	decodeResult(t, call(t, h, "", "drop_claim", map[string]string{"caller": "x", "dropId": "D1"}), &claim)
	if claim.Credited != "100" || claim.State.Status != "claimed" {
		t.Fatalf("unexpected claim %+v", claim)
	}

	var receipt ReceiptResult
	decodeResult(t, call(t, h, "", "vendor_purchase", map[string]interface{}{"caller": "x", "vendor": "shop", "itemId": 0}), &receipt)
	if receipt.Balance != "60" || receipt.InStock {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	resp := call(t, h, "", "vendor_purchase", map[string]interface{}{"caller": "x", "vendor": "shop", "itemId": 0})
	expectError(t, resp, codeOutOfStock)
	if resp.Status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Status)
	}

	var bal BalanceResult
	decodeResult(t, call(t, h, "", "ledger_balance", map[string]string{"account": "x"}), &bal)
	if bal.Balance != "60" {
		t.Fatalf("expected balance 60, got %s", bal.Balance)
	}

	expectError(t, call(t, h, "", "drop_claim", map[string]string{"caller": "x", "dropId": "D1"}), codeAlreadyClaimed)
}

func TestScavengerFlowOverRPC(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	expectError(t, call(t, h, "", "drop_claim", map[string]string{"caller": "x", "dropId": "D2"}), codeScavengerIncomplete)

	for _, id := range []string{"s1", "s2"} {
		var cs ClaimStateResult
		decodeResult(t, call(t, h, "", "drop_markFound", map[string]string{"caller": "x", "dropId": "D2", "scavengerId": id}), &cs)
	}
	expectError(t, call(t, h, "", "drop_markFound", map[string]string{"caller": "x", "dropId": "D2", "scavengerId": "s9"}), codeNotFound)

	var claim ClaimResult
	decodeResult(t, call(t, h, "", "drop_claim", map[string]string{"caller": "x", "dropId": "D2"}), &claim)
	if claim.Balance != "55" {
		t.Fatalf("expected balance 55, got %s", claim.Balance)
	}

	var hunts []HuntResult
	decodeResult(t, call(t, h, "", "drop_huntsForAccount", map[string]string{"account": "x"}), &hunts)
	if len(hunts) != 1 {
		t.Fatalf("expected one hunt, got %d", len(hunts))
	}
	found := append([]string(nil), hunts[0].Found...)
	sort.Strings(found)
	if strings.Join(found, ",") != "s1,s2" {
		t.Fatalf("unexpected found set %v", hunts[0].Found)
	}
}

func TestActingForAnotherAccountRequiresAdmin(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	resp := call(t, h, "", "drop_claim", map[string]string{"caller": "y", "account": "x", "dropId": "D1"})
	expectError(t, resp, codeUnauthorized)
	if resp.Status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Status)
	}

	var claim ClaimResult
	decodeResult(t, call(t, h, "", "drop_claim", map[string]string{"caller": "root", "account": "x", "dropId": "D1"}), &claim)
	if claim.State.Account != "x" {
		t.Fatalf("admin claim landed on %q", claim.State.Account)
	}
}

func TestCallerRequiredWithoutAuth(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()
	expectError(t, call(t, h, "", "drop_claim", map[string]string{"dropId": "D1"}), codeInvalidParams)
}

func TestBearerTokenSetsCaller(t *testing.T) {
	cfg := ServerConfig{Auth: AuthConfig{Enabled: true, HMACSecret: testJWTSecret, Issuer: "rpc-tests"}}
	h := newTestServer(t, cfg).Handler()

	resp := call(t, h, "", "drop_claim", map[string]string{"dropId": "D1"})
	expectError(t, resp, codeUnauthorized)
	if resp.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Status)
	}

	token := signToken(t, "x", time.Hour)
	expectError(t, call(t, h, token, "drop_claim", map[string]string{"caller": "y", "dropId": "D1"}), codeUnauthorized)

	var claim ClaimResult
	decodeResult(t, call(t, h, token, "drop_claim", map[string]string{"dropId": "D1"}), &claim)
	if claim.State.Account != "x" {
		t.Fatalf("token subject not used as caller: %q", claim.State.Account)
	}

	expired := signToken(t, "x", -time.Hour)
	if resp := call(t, h, expired, "ledger_balance"); resp.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.Status)
	}
}

func TestAuthEnabledRequiresSecret(t *testing.T) {
	if _, err := NewAuthenticator(AuthConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestEnvelopeErrors(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	resp := call(t, h, "", "nope_missing")
	expectError(t, resp, codeMethodNotFound)
	if resp.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Status)
	}

	expectError(t, call(t, h, "", "drop_get", map[string]string{"dropId": "D1", "bogus": "x"}), codeInvalidParams)
	expectError(t, call(t, h, "", "drop_get"), codeInvalidParams)

	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid JSON payload") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestVendorCatalogViews(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	var id map[string]uint64
	decodeResult(t, call(t, h, "", "vendor_addItem", map[string]interface{}{"caller": "shop", "name": "I2", "price": "5", "in_stock": true}), &id)
	if id["itemId"] != 1 {
		t.Fatalf("expected item id 1, got %v", id)
	}

	expectError(t, call(t, h, "", "vendor_addItem", map[string]interface{}{"caller": "x", "vendor": "shop", "name": "I3", "price": "5"}), codeUnauthorized)

	var items []ItemResult
	decodeResult(t, call(t, h, "", "get_items_for_vendor", map[string]interface{}{"vendor_id": "shop"}), &items)
	if len(items) != 2 || items[0].Price != "40" {
		t.Fatalf("unexpected items %+v", items)
	}

	decodeResult(t, call(t, h, "", "get_items_for_vendor", map[string]interface{}{"vendor_id": "shop", "offset": 1000}), &items)
	if len(items) != 0 {
		t.Fatalf("expected empty page, got %+v", items)
	}

	var item ItemResult
	decodeResult(t, call(t, h, "", "get_item_information", map[string]interface{}{"vendor_id": "shop", "item_id": 1}), &item)
	if item.Name != "I2" {
		t.Fatalf("unexpected item %+v", item)
	}

	var meta map[string]string
	decodeResult(t, call(t, h, "", "get_vendor_metadata", map[string]string{"vendor_id": "shop"}), &meta)
	if meta["name"] != "Shop" {
		t.Fatalf("unexpected metadata %v", meta)
	}
}

func TestTokenMetadataOverRPC(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	var meta MetadataResult
	decodeResult(t, call(t, h, "", "ft_metadata"), &meta)
	if meta.Symbol != "DROP" || meta.MintedPerClaim != nil {
		t.Fatalf("unexpected default metadata %+v", meta)
	}

	decodeResult(t, call(t, h, "", "ft_metadata", map[string]string{"drop_id": "D1"}), &meta)
	if meta.MintedPerClaim == nil || *meta.MintedPerClaim != "100" {
		t.Fatalf("expected minted per claim 100, got %v", meta.MintedPerClaim)
	}

	expectError(t, call(t, h, "", "update_ft_metadata", map[string]interface{}{"caller": "x", "spec": "ft-1.0.0", "name": "N", "symbol": "S", "decimals": 18}), codeUnauthorized)

	decodeResult(t, call(t, h, "", "update_ft_metadata", map[string]interface{}{"caller": "root", "spec": "ft-1.0.0", "name": "N", "symbol": "S", "decimals": 18}), &meta)
	if meta.Symbol != "S" || meta.Decimals != 18 {
		t.Fatalf("update not applied: %+v", meta)
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	h := newTestServer(t, ServerConfig{RateLimit: RateLimitConfig{RequestsPerMinute: 1, Burst: 1}}).Handler()

	if resp := call(t, h, "", "drop_list"); resp.Error != nil {
		t.Fatalf("first call limited: %+v", resp.Error)
	}
	resp := call(t, h, "", "drop_list")
	expectError(t, resp, codeRateLimited)
	if resp.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Status)
	}
}

func limitedRequest(forwardedFor string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"drop_list"}`))
	req.RemoteAddr = "198.51.100.7:4000"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	return req
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	h := newTestServer(t, ServerConfig{RateLimit: RateLimitConfig{RequestsPerMinute: 1, Burst: 1}}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, limitedRequest("203.0.113.1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: %d %s", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, limitedRequest("203.0.113.2"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("forged X-Forwarded-For escaped the limiter: %d", rec.Code)
	}
}

func TestRateLimitTrustedProxyKeysByForwardedAddress(t *testing.T) {
	h := newTestServer(t, ServerConfig{RateLimit: RateLimitConfig{RequestsPerMinute: 1, Burst: 1, TrustForwarded: true}}).Handler()

	for _, addr := range []string{"203.0.113.1", "203.0.113.2"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, limitedRequest(addr))
		if rec.Code != http.StatusOK {
			t.Fatalf("client %s limited on first request: %d", addr, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, limitedRequest("203.0.113.1, 10.0.0.1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected repeat client to be limited, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()
	call(t, h, "", "drop_list")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dropchain_module_requests_total") {
		t.Fatalf("module request counter not exported")
	}
}

func TestRegisterAndRoleOverRPC(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()

	var acct AccountResult
	decodeResult(t, call(t, h, "", "account_register", map[string]string{"caller": "root", "account": "z", "ticketType": "attendee", "publicKey": "ed25519:z"}), &acct)
	if strings.ToLower(acct.Status) != "basic" {
		t.Fatalf("unexpected status %q", acct.Status)
	}

	var owner map[string]string
	decodeResult(t, call(t, h, "", "account_byKey", map[string]string{"publicKey": "ed25519:z"}), &owner)
	if owner["account"] != "z" {
		t.Fatalf("unexpected owner %v", owner)
	}

	decodeResult(t, call(t, h, "", "account_setRole", map[string]string{"caller": "root", "account": "z", "status": "sponsor"}), &acct)
	if strings.ToLower(acct.Status) != "sponsor" {
		t.Fatalf("role not updated: %q", acct.Status)
	}

	var drop DropResult
	decodeResult(t, call(t, h, "", "drop_create", map[string]interface{}{"caller": "z", "id": "D7", "kind": "token", "name": "Bonus", "amount": "7"}), &drop)
	if drop.Kind != "token" || drop.Amount != "7" {
		t.Fatalf("unexpected drop %+v", drop)
	}
}

func TestOversizedPriceRejectedOverRPC(t *testing.T) {
	h := newTestServer(t, ServerConfig{}).Handler()
	huge := "340282366920938463463374607431768211456" // 2^128
	expectError(t, call(t, h, "", "vendor_addItem", map[string]interface{}{"caller": "shop", "name": "yacht", "price": huge, "in_stock": true}), codeInvalidParams)
}
