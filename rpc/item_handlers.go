package rpc

import "net/http"

type itemSupplyParams struct {
	Caller     string `json:"caller"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
	Amount     uint32 `json:"amount"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, req *RPCRequest) {
	params := itemSupplyParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.CreateItem(caller, params.Collection, params.Item, params.Amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleAddItem(w http.ResponseWriter, req *RPCRequest) {
	params := itemSupplyParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.AddItem(caller, params.Collection, params.Item, params.Amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleBurn(w http.ResponseWriter, req *RPCRequest) {
	params := itemSupplyParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.BurnItem(caller, params.Collection, params.Item, params.Amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type mintParams struct {
	Caller     string `json:"caller"`
	Collection uint64 `json:"collection"`
	Target     string `json:"target"`
	Amount     uint32 `json:"amount"`
}

func (s *Server) handleMint(w http.ResponseWriter, req *RPCRequest) {
	params := mintParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	target := caller
	if params.Target != "" {
		if target, err = parseAddress(params.Target); err != nil {
			s.writeParamsError(w, req, err)
			return
		}
	}
	drawn, err := s.node.MintItems(caller, params.Collection, target, params.Amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"items": drawn})
}

type transferItemParams struct {
	From       string `json:"from"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
	To         string `json:"to"`
	Amount     uint32 `json:"amount"`
}

func (s *Server) handleTransferItem(w http.ResponseWriter, req *RPCRequest) {
	params := transferItemParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	from, err := parseAddress(params.From)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	to, err := parseAddress(params.To)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.TransferItem(from, params.Collection, params.Item, to, params.Amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type itemBalanceParams struct {
	Address    string `json:"address"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
}

type itemBalanceResult struct {
	Spendable uint32 `json:"spendable"`
	Locked    uint32 `json:"locked"`
}

func (s *Server) handleItemBalance(w http.ResponseWriter, req *RPCRequest) {
	params := itemBalanceParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	spendable, err := s.node.ItemBalance(addr, params.Collection, params.Item)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	locked, err := s.node.LockedItemBalance(addr, params.Collection, params.Item)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, itemBalanceResult{Spendable: spendable, Locked: locked})
}

type transferLockParams struct {
	Caller     string `json:"caller"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
}

func (s *Server) handleLockItemTransfer(w http.ResponseWriter, req *RPCRequest) {
	params := transferLockParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.LockItemTransfer(caller, params.Collection, params.Item); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleUnlockItemTransfer(w http.ResponseWriter, req *RPCRequest) {
	params := transferLockParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.UnlockItemTransfer(caller, params.Collection, params.Item); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type setUpgradeParams struct {
	Caller     string `json:"caller"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
	Upgraded   uint32 `json:"upgraded"`
	Fee        string `json:"fee"`
}

func (s *Server) handleSetUpgrade(w http.ResponseWriter, req *RPCRequest) {
	params := setUpgradeParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	fee, err := parseAmount(params.Fee, false)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.SetItemUpgrade(caller, params.Collection, params.Item, params.Upgraded, fee); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleUpgrade(w http.ResponseWriter, req *RPCRequest) {
	params := itemSupplyParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.UpgradeItem(caller, params.Collection, params.Item, params.Amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}
