package nftmint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dropchain/native/drops"
)

const (
	// DefaultMethod is the JSON-RPC method invoked on the mint service.
	DefaultMethod = "nft_mint"

	defaultMaxAttempts = 3
	defaultMinBackoff  = 200 * time.Millisecond
	defaultMaxBackoff  = 2 * time.Second
)

// MintParams is the single positional parameter sent with every mint call.
// RequestID is stable across redeliveries so the service can deduplicate.
type MintParams struct {
	RequestID  string          `json:"requestId"`
	Receiver   string          `json:"receiver"`
	DropID     string          `json:"dropId"`
	ContractID string          `json:"contractId"`
	Method     string          `json:"method"`
	Args       json.RawMessage `json:"args,omitempty"`
}

// MintReceipt is the service's acknowledgement of a mint.
type MintReceipt struct {
	RequestID string `json:"requestId"`
	TokenID   string `json:"tokenId,omitempty"`
}

// Client forwards mint requests to an external JSON-RPC mint service.
type Client struct {
	rpc         *rpc.Client
	method      string
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
}

// Option mutates client configuration.
type Option func(*Client)

// WithMethod overrides the RPC method name.
func WithMethod(method string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(method); m != "" {
			c.method = m
		}
	}
}

// WithRetryPolicy overrides how transport failures are retried. Errors
// returned by the service itself are never retried.
func WithRetryPolicy(maxAttempts int, minBackoff, maxBackoff time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if minBackoff > 0 {
			c.minBackoff = minBackoff
		}
		if maxBackoff >= minBackoff && maxBackoff > 0 {
			c.maxBackoff = maxBackoff
		}
	}
}

// Dial connects to the mint service at endpoint. HTTP requests are traced
// through otelhttp; a non-empty token is sent as a bearer credential.
func Dial(ctx context.Context, endpoint, token string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("nftmint: endpoint required")
	}
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	dialOpts := []rpc.ClientOption{rpc.WithHTTPClient(httpClient)}
	if token = strings.TrimSpace(token); token != "" {
		dialOpts = append(dialOpts, rpc.WithHeader("Authorization", "Bearer "+token))
	}
	conn, err := rpc.DialOptions(ctx, endpoint, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("nftmint: dial %s: %w", endpoint, err)
	}
	return NewClient(conn, opts...), nil
}

// NewClient wraps an established RPC connection.
func NewClient(conn *rpc.Client, opts ...Option) *Client {
	c := &Client{
		rpc:         conn,
		method:      DefaultMethod,
		maxAttempts: defaultMaxAttempts,
		minBackoff:  defaultMinBackoff,
		maxBackoff:  defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c == nil || c.rpc == nil {
		return
	}
	c.rpc.Close()
}

// Mint calls the service and returns nil only when it acknowledged req.
func (c *Client) Mint(ctx context.Context, req *drops.PendingMint) error {
	if req == nil {
		return errors.New("nftmint: request required")
	}
	params := MintParams{
		RequestID:  req.RequestID,
		Receiver:   req.Account,
		DropID:     req.DropID,
		ContractID: req.ContractID,
		Method:     req.Method,
		Args:       encodeArgs(req.Args),
	}
	backoff := c.minBackoff
	for attempt := 1; ; attempt++ {
		var receipt MintReceipt
		err := c.rpc.CallContext(ctx, &receipt, c.method, params)
		if err == nil {
			if receipt.RequestID != "" && receipt.RequestID != req.RequestID {
				return fmt.Errorf("nftmint: receipt for %q does not match request %q", receipt.RequestID, req.RequestID)
			}
			return nil
		}
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return fmt.Errorf("nftmint: service rejected mint (code %d): %w", rpcErr.ErrorCode(), err)
		}
		if attempt >= c.maxAttempts || ctx.Err() != nil {
			return fmt.Errorf("nftmint: call failed after %d attempts: %w", attempt, err)
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, c.maxBackoff)
	}
}

// encodeArgs forwards JSON arguments verbatim and quotes anything else.
func encodeArgs(args string) json.RawMessage {
	trimmed := strings.TrimSpace(args)
	if trimmed == "" {
		return nil
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(args)
	return quoted
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max || next < current {
		return max
	}
	return next
}
