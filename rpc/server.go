package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"yieldvault/core"
	"yieldvault/core/events"
	"yieldvault/native/common"
	"yieldvault/native/rewards"
	"yieldvault/native/stake"
	"yieldvault/native/vesting"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the vault operations and views over JSON-RPC 2.0.
type Server struct {
	processor *core.Processor
	recorder  *events.Recorder
	logger    *slog.Logger
	authToken string
}

// NewServer constructs an RPC server. When authToken is non-empty every
// mutating method requires it as a bearer token.
func NewServer(processor *core.Processor, recorder *events.Recorder, authToken string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor: processor,
		recorder:  recorder,
		logger:    logger,
		authToken: strings.TrimSpace(authToken),
	}
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errInvalidParams(msg string) *rpcError { return &rpcError{Code: codeInvalidParams, Message: msg} }

// mutatingMethods require the bearer token and route through the processor's
// guarded commit path.
var mutatingMethods = map[string]bool{
	"vault_stake":           true,
	"vault_stakeWithdraw":   true,
	"vault_vestingCreate":   true,
	"vault_vestingClaimTGE": true,
	"vault_vestingWithdraw": true,
	"vault_vestingTransfer": true,
	"vault_deposit":         true,
	"vault_harvest":         true,
	"vault_grantRole":       true,
	"vault_revokeRole":      true,
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeResponse(w, response{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: codeParseError, Message: "unable to read request"}})
		return
	}
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		writeResponse(w, response{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: codeParseError, Message: "invalid JSON payload"}})
		return
	}
	if req.JSONRPC != jsonRPCVersion || strings.TrimSpace(req.Method) == "" {
		writeResponse(w, response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: &rpcError{Code: codeInvalidRequest, Message: "invalid JSON-RPC request"}})
		return
	}
	if mutatingMethods[req.Method] && !s.authorized(r) {
		writeResponse(w, response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: &rpcError{Code: codeUnauthorized, Message: "missing or invalid bearer token"}})
		return
	}
	handler, ok := s.handlers()[req.Method]
	if !ok {
		writeResponse(w, response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: &rpcError{Code: codeMethodNotFound, Message: "unknown method " + req.Method}})
		return
	}
	result, rpcErr := handler(req.Params)
	if rpcErr != nil {
		s.logger.Info("rpc call failed", "method", req.Method, "code", rpcErr.Code, "reason", rpcErr.Message)
		writeResponse(w, response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: rpcErr})
		return
	}
	writeResponse(w, response{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

func writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// engineError maps engine sentinels onto stable JSON-RPC errors. The error
// string is the reason code callers match on.
func engineError(err error) *rpcError {
	code := codeServerError
	switch {
	case errors.Is(err, stake.ErrUnauthorized),
		errors.Is(err, vesting.ErrUnauthorized),
		errors.Is(err, rewards.ErrUnauthorized),
		errors.Is(err, common.ErrUnauthorizedAdmin):
		code = codeUnauthorized
	}
	return &rpcError{Code: code, Message: err.Error()}
}
