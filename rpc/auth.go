package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"dropchain/native/access"
	"dropchain/observability/logging"
)

// AuthConfig configures HMAC-signed bearer tokens. The token subject is the
// calling account. With auth disabled callers name themselves through the
// "caller" field of the parameter object.
type AuthConfig struct {
	Enabled    bool
	HMACSecret string
	Issuer     string
	Audience   string
	ClockSkew  time.Duration
}

type contextKey string

const contextKeyCaller contextKey = "rpc.caller"

// Authenticator validates bearer tokens on /rpc.
type Authenticator struct {
	cfg    AuthConfig
	secret []byte
	logger *slog.Logger
}

func NewAuthenticator(cfg AuthConfig, logger *slog.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Authenticator{cfg: cfg, secret: []byte(strings.TrimSpace(cfg.HMACSecret)), logger: logger}
	if a.cfg.ClockSkew <= 0 {
		a.cfg.ClockSkew = 2 * time.Minute
	}
	if cfg.Enabled && len(a.secret) == 0 {
		return nil, errors.New("rpc: auth enabled without an HMAC secret")
	}
	return a, nil
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		tokenString := extractBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, nil, codeUnauthorized, "missing bearer token", nil)
			return
		}
		subject, err := a.parseToken(tokenString)
		if err != nil {
			a.logger.Warn("rpc token rejected",
				logging.MaskField("authorization", r.Header.Get("Authorization")),
				slog.String("remote", remoteHost(r)),
				slog.Any("error", err))
			writeError(w, http.StatusUnauthorized, nil, codeUnauthorized, "invalid token", err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyCaller, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) parseToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("token invalid")
	}
	subject := access.NormalizeAccount(claims.Subject)
	if subject == "" {
		return "", errors.New("token subject required")
	}
	return subject, nil
}

func extractBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// caller resolves the acting account. An authenticated subject always wins; a
// claimed caller that disagrees with it is rejected.
func (s *Server) caller(r *http.Request, claimed string) (string, *RPCError) {
	claimed = access.NormalizeAccount(claimed)
	if subject, ok := r.Context().Value(contextKeyCaller).(string); ok && subject != "" {
		if claimed != "" && claimed != subject {
			return "", &RPCError{Code: codeUnauthorized, Message: fmt.Sprintf("caller %q does not match token subject", claimed)}
		}
		return subject, nil
	}
	if s.auth.cfg.Enabled {
		return "", &RPCError{Code: codeUnauthorized, Message: "authentication required"}
	}
	if claimed == "" {
		return "", invalidParams("caller required")
	}
	return claimed, nil
}

// actingFor resolves the caller and the account it acts on. Acting for any
// account other than itself requires admin rights.
func (s *Server) actingFor(r *http.Request, claimed, account string) (string, *RPCError) {
	caller, rpcErr := s.caller(r, claimed)
	if rpcErr != nil {
		return "", rpcErr
	}
	account = access.NormalizeAccount(account)
	if account == "" || account == caller {
		return caller, nil
	}
	if err := s.node.Require(caller, access.CapAdmin); err != nil {
		return "", fromError(err)
	}
	return account, nil
}

// requireAdmin resolves the caller and checks it is an admin.
func (s *Server) requireAdmin(r *http.Request, claimed string) (string, *RPCError) {
	caller, rpcErr := s.caller(r, claimed)
	if rpcErr != nil {
		return "", rpcErr
	}
	if err := s.node.Require(caller, access.CapAdmin); err != nil {
		return "", fromError(err)
	}
	return caller, nil
}
