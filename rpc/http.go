package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"gamechain/core"
	"gamechain/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB

	clientRateLimit = rate.Limit(20)
	clientRateBurst = 40
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
)

type Server struct {
	node *core.Node

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	authToken string
	metrics   *metrics.EconomyMetrics
}

// NewServer creates a JSON-RPC server over the node. A non-empty authToken
// gates every mutating method behind a bearer check.
func NewServer(node *core.Node, authToken string) *Server {
	return &Server{
		node:      node,
		limiters:  make(map[string]*rate.Limiter),
		authToken: strings.TrimSpace(authToken),
		metrics:   metrics.Economy(),
	}
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
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

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) limiter(clientIP string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[clientIP]
	if !ok {
		limiter = rate.NewLimiter(clientRateLimit, clientRateBurst)
		s.limiters[clientIP] = limiter
	}
	return limiter
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
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
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

// Handle is the single JSON-RPC endpoint.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	if !s.limiter(clientAddress(r)).Allow() {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
		return
	}

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

	s.metrics.ObserveRPCRequest(req.Method)

	handler, mutating, ok := s.route(req.Method)
	if !ok {
		s.metrics.ObserveRPCError(req.Method)
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method), nil)
		return
	}
	if mutating && !s.authorized(r) {
		s.metrics.ObserveRPCError(req.Method)
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "authorization required", nil)
		return
	}
	handler(w, req)
}

type handlerFunc func(http.ResponseWriter, *RPCRequest)

func (s *Server) route(method string) (handlerFunc, bool, bool) {
	switch method {
	case "game_create":
		return s.handleCreateGame, true, true
	case "game_createCollection":
		return s.handleCreateGameCollection, true, true
	case "game_addCollection":
		return s.handleAddCollection, true, true
	case "game_removeCollection":
		return s.handleRemoveCollection, true, true
	case "game_get":
		return s.handleGetGame, false, true
	case "item_create":
		return s.handleCreateItem, true, true
	case "item_add":
		return s.handleAddItem, true, true
	case "item_mint":
		return s.handleMint, true, true
	case "item_burn":
		return s.handleBurn, true, true
	case "item_transfer":
		return s.handleTransferItem, true, true
	case "item_balance":
		return s.handleItemBalance, false, true
	case "item_setUpgrade":
		return s.handleSetUpgrade, true, true
	case "item_upgrade":
		return s.handleUpgrade, true, true
	case "item_lockTransfer":
		return s.handleLockItemTransfer, true, true
	case "item_unlockTransfer":
		return s.handleUnlockItemTransfer, true, true
	case "trade_setPrice":
		return s.handleSetPrice, true, true
	case "trade_buy":
		return s.handleBuyItem, true, true
	case "trade_addSupply":
		return s.handleAddRetailSupply, true, true
	case "trade_setBuy":
		return s.handleSetBuyOrder, true, true
	case "trade_claimBuy":
		return s.handleClaimBuyOrder, true, true
	case "trade_setSwap":
		return s.handleSetSwap, true, true
	case "trade_claimSwap":
		return s.handleClaimSwap, true, true
	case "trade_setWishlist":
		return s.handleSetWishlist, true, true
	case "trade_fillWishlist":
		return s.handleFillWishlist, true, true
	case "trade_setAuction":
		return s.handleSetAuction, true, true
	case "trade_bid":
		return s.handleBidAuction, true, true
	case "trade_claimAuction":
		return s.handleClaimAuction, true, true
	case "trade_cancel":
		return s.handleCancelTrade, true, true
	case "trade_get":
		return s.handleGetTrade, false, true
	case "chain_submitSeed":
		return s.handleSubmitSeed, true, true
	case "chain_getSeed":
		return s.handleGetSeed, false, true
	case "chain_getBalance":
		return s.handleGetBalance, false, true
	default:
		return nil, false, false
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, req *RPCRequest, err error) {
	s.metrics.ObserveRPCError(req.Method)
	writeError(w, http.StatusOK, req.ID, codeServerError, err.Error(), nil)
}

func (s *Server) writeParamsError(w http.ResponseWriter, req *RPCRequest, err error) {
	s.metrics.ObserveRPCError(req.Method)
	writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected one parameter object, got %d", len(req.Params))
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func parseAddress(value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", value, err)
	}
	if len(decoded) != 20 {
		return addr, fmt.Errorf("invalid address %q: expected 20 bytes, got %d", value, len(decoded))
	}
	copy(addr[:], decoded)
	return addr, nil
}

func formatAddress(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}
