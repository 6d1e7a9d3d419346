package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dropchain/core"
	coreerrors "dropchain/core/errors"
	"dropchain/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError          = -32700
	codeInvalidRequest      = -32600
	codeMethodNotFound      = -32601
	codeInvalidParams       = -32602
	codeServerError         = -32000
	codeUnauthorized        = -32001
	codeNotFound            = -32004
	codeAlreadyExists       = -32009
	codeRateLimited         = -32020
	codeAlreadyClaimed      = -32030
	codeScavengerIncomplete = -32031
	codeInsufficientBalance = -32040
	codeOutOfStock          = -32041
	codeModulePaused        = -32050
)

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// Server exposes the node over JSON-RPC 2.0.
type Server struct {
	node    *core.Node
	auth    *Authenticator
	limiter *RateLimiter
	logger  *slog.Logger
	tracer  trace.Tracer
	methods map[string]method
}

type handlerFunc func(r *http.Request, req *RPCRequest) (interface{}, *RPCError)

type method struct {
	module  string
	handler handlerFunc
}

func NewServer(node *core.Node, cfg ServerConfig, logger *slog.Logger) (*Server, error) {
	if node == nil {
		return nil, errors.New("rpc: node required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	auth, err := NewAuthenticator(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}
	s := &Server{
		node:    node,
		auth:    auth,
		limiter: NewRateLimiter(cfg.RateLimit),
		logger:  logger,
		tracer:  otel.Tracer("dropchain/rpc"),
	}
	s.methods = s.routes()
	return s, nil
}

func (s *Server) routes() map[string]method {
	return map[string]method{
		"account_register": {"access", s.handleAccountRegister},
		"account_setRole":  {"access", s.handleAccountSetRole},
		"account_get":      {"access", s.handleAccountGet},
		"account_byKey":    {"access", s.handleAccountByKey},
		"ticket_define":    {"access", s.handleTicketDefine},
		"ledger_balance":   {"ledger", s.handleLedgerBalance},

		"drop_create":          {"drops", s.handleDropCreate},
		"drop_get":             {"drops", s.handleDropGet},
		"drop_list":            {"drops", s.handleDropList},
		"drop_markFound":       {"drops", s.handleDropMarkFound},
		"drop_claim":           {"drops", s.handleDropClaim},
		"drop_resolveMint":     {"drops", s.handleDropResolveMint},
		"drop_claimState":      {"drops", s.handleDropClaimState},
		"drop_nftsForAccount":  {"drops", s.handleDropNFTsForAccount},
		"drop_huntsForAccount": {"drops", s.handleDropHuntsForAccount},
		"drop_claimedBy":       {"drops", s.handleDropClaimedBy},

		"vendor_register":      {"vendor", s.handleVendorRegister},
		"vendor_addItem":       {"vendor", s.handleVendorAddItem},
		"vendor_updateItem":    {"vendor", s.handleVendorUpdateItem},
		"vendor_removeItem":    {"vendor", s.handleVendorRemoveItem},
		"get_vendor_metadata":  {"vendor", s.handleVendorMetadata},
		"get_items_for_vendor": {"vendor", s.handleVendorItems},
		"get_item_information": {"vendor", s.handleVendorItem},
		"vendor_purchase":      {"vendor", s.handleVendorPurchase},

		"ft_metadata":        {"ft", s.handleFTMetadata},
		"update_ft_metadata": {"ft", s.handleUpdateFTMetadata},
	}
}

// Handler returns the HTTP routes: POST /rpc, GET /healthz and GET /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.With(s.limiter.Middleware, s.auth.Middleware).Post("/rpc", s.handle)
	return r
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}
	m, ok := s.methods[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "rpc."+req.Method, trace.WithAttributes(
		attribute.String("rpc.system", "jsonrpc"),
		attribute.String("rpc.method", req.Method),
		attribute.String("rpc.module", m.module),
	))
	defer span.End()

	start := time.Now()
	result, rpcErr := m.handler(r.WithContext(ctx), req)
	code := 0
	if rpcErr != nil {
		code = rpcErr.Code
		span.SetStatus(codes.Error, rpcErr.Message)
		span.SetAttributes(attribute.Int("rpc.jsonrpc.error_code", rpcErr.Code))
	}
	observability.ModuleMetrics().Observe(m.module, req.Method, code, time.Since(start))

	if rpcErr != nil {
		writeError(w, statusFor(rpcErr.Code), req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	writeResult(w, req.ID, result)
}

// fromError maps the native error taxonomy onto JSON-RPC codes.
func fromError(err error) *RPCError {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	code := codeServerError
	switch coreerrors.Class(err) {
	case coreerrors.ErrNotFound:
		code = codeNotFound
	case coreerrors.ErrUnauthorized:
		code = codeUnauthorized
	case coreerrors.ErrAlreadyClaimed:
		code = codeAlreadyClaimed
	case coreerrors.ErrScavengerIncomplete:
		code = codeScavengerIncomplete
	case coreerrors.ErrInsufficientBalance:
		code = codeInsufficientBalance
	case coreerrors.ErrOutOfStock:
		code = codeOutOfStock
	case coreerrors.ErrAlreadyExists:
		code = codeAlreadyExists
	case coreerrors.ErrInvalidArgument:
		code = codeInvalidParams
	case coreerrors.ErrModulePaused:
		code = codeModulePaused
	}
	return &RPCError{Code: code, Message: err.Error()}
}

func statusFor(code int) int {
	switch code {
	case codeInvalidParams, codeInvalidRequest, codeParseError:
		return http.StatusBadRequest
	case codeUnauthorized:
		return http.StatusForbidden
	case codeNotFound, codeMethodNotFound:
		return http.StatusNotFound
	case codeAlreadyClaimed, codeScavengerIncomplete, codeInsufficientBalance, codeOutOfStock, codeAlreadyExists:
		return http.StatusConflict
	case codeModulePaused:
		return http.StatusServiceUnavailable
	case codeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func invalidParams(format string, args ...interface{}) *RPCError {
	return &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// decodeParams unmarshals the single object parameter every method takes.
func decodeParams(req *RPCRequest, dst interface{}) *RPCError {
	if len(req.Params) != 1 {
		return invalidParams("expected a single parameter object")
	}
	dec := json.NewDecoder(bytes.NewReader(req.Params[0]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: "invalid parameter object", Data: err.Error()}
	}
	return nil
}

// decodeOptionalParams accepts zero parameters as the zero value.
func decodeOptionalParams(req *RPCRequest, dst interface{}) *RPCError {
	if len(req.Params) == 0 {
		return nil
	}
	return decodeParams(req, dst)
}
