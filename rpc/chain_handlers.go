package rpc

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

type submitSeedParams struct {
	Seed   string `json:"seed"`
	Height uint64 `json:"height"`
}

func (s *Server) handleSubmitSeed(w http.ResponseWriter, req *RPCRequest) {
	params := submitSeedParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(params.Seed), "0x"))
	if err != nil {
		s.writeParamsError(w, req, fmt.Errorf("invalid seed: %w", err))
		return
	}
	if len(decoded) != 32 {
		s.writeParamsError(w, req, fmt.Errorf("invalid seed: expected 32 bytes, got %d", len(decoded)))
		return
	}
	var seed [32]byte
	copy(seed[:], decoded)
	if err := s.node.SubmitRandomSeed(seed, params.Height); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type seedResult struct {
	Seed   string `json:"seed"`
	Height uint64 `json:"height"`
}

func (s *Server) handleGetSeed(w http.ResponseWriter, req *RPCRequest) {
	seed, height, err := s.node.RandomSeed()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, seedResult{Seed: "0x" + hex.EncodeToString(seed), Height: height})
}

type balanceParams struct {
	Address string `json:"address"`
}

type balanceResult struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	Reserved string `json:"reserved"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	params := balanceParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	acc, err := s.node.GetAccount(addr)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, balanceResult{
		Address:  formatAddress(addr),
		Balance:  acc.Balance.String(),
		Reserved: acc.Reserved.String(),
	})
}
