package rpc

import (
	"fmt"
	"math/big"
	"net/http"

	"gamechain/native/item"
	"gamechain/native/trade"
)

type packageParam struct {
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
	Amount     uint32 `json:"amount"`
}

func toBundle(pkgs []packageParam) item.Bundle {
	bundle := make(item.Bundle, len(pkgs))
	for i, pkg := range pkgs {
		bundle[i] = item.Package{Collection: pkg.Collection, Item: pkg.Item, Amount: pkg.Amount}
	}
	return bundle
}

func parseAmount(value string, required bool) (*big.Int, error) {
	if value == "" {
		if required {
			return nil, fmt.Errorf("amount required")
		}
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must be non-negative", value)
	}
	return amount, nil
}

type setPriceParams struct {
	Caller     string `json:"caller"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
	Amount     uint32 `json:"amount"`
	Price      string `json:"price"`
	MinOrder   *uint32 `json:"minOrder,omitempty"`
}

func (s *Server) handleSetPrice(w http.ResponseWriter, req *RPCRequest) {
	params := setPriceParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	price, err := parseAmount(params.Price, true)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	minOrder := uint32(0)
	hasMinOrder := false
	if params.MinOrder != nil {
		minOrder = *params.MinOrder
		hasMinOrder = true
	}
	pkg := item.Package{Collection: params.Collection, Item: params.Item, Amount: params.Amount}
	id, err := s.node.SetPrice(caller, pkg, price, minOrder, hasMinOrder)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tradeId": id})
}

type buyParams struct {
	Caller  string `json:"caller"`
	TradeID uint64 `json:"tradeId"`
	Amount  uint32 `json:"amount"`
	Bid     string `json:"bid"`
}

func (s *Server) handleBuyItem(w http.ResponseWriter, req *RPCRequest) {
	params := buyParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	bid, err := parseAmount(params.Bid, true)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.BuyItem(caller, params.TradeID, params.Amount, bid); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type tradeAmountParams struct {
	Caller  string `json:"caller"`
	TradeID uint64 `json:"tradeId"`
	Amount  uint32 `json:"amount"`
}

func (s *Server) handleAddRetailSupply(w http.ResponseWriter, req *RPCRequest) {
	params := tradeAmountParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.AddRetailSupply(caller, params.TradeID, params.Amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type setBuyOrderParams struct {
	Caller     string `json:"caller"`
	Collection uint64 `json:"collection"`
	Item       uint32 `json:"item"`
	Amount     uint32 `json:"amount"`
	Price      string `json:"price"`
}

func (s *Server) handleSetBuyOrder(w http.ResponseWriter, req *RPCRequest) {
	params := setBuyOrderParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	price, err := parseAmount(params.Price, true)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	pkg := item.Package{Collection: params.Collection, Item: params.Item, Amount: params.Amount}
	id, err := s.node.SetBuyOrder(caller, pkg, price)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tradeId": id})
}

type claimBuyOrderParams struct {
	Caller  string `json:"caller"`
	TradeID uint64 `json:"tradeId"`
	Amount  uint32 `json:"amount"`
	Ask     string `json:"ask,omitempty"`
}

func (s *Server) handleClaimBuyOrder(w http.ResponseWriter, req *RPCRequest) {
	params := claimBuyOrderParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	ask, err := parseAmount(params.Ask, false)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.ClaimBuyOrder(caller, params.TradeID, params.Amount, ask); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type setSwapParams struct {
	Caller   string         `json:"caller"`
	Source   []packageParam `json:"source"`
	Required []packageParam `json:"required"`
	Price    string         `json:"price,omitempty"`
}

func (s *Server) handleSetSwap(w http.ResponseWriter, req *RPCRequest) {
	params := setSwapParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	price, err := parseAmount(params.Price, false)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	id, err := s.node.SetSwap(caller, toBundle(params.Source), toBundle(params.Required), price)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tradeId": id})
}

type claimParams struct {
	Caller  string `json:"caller"`
	TradeID uint64 `json:"tradeId"`
	Bid     string `json:"bid,omitempty"`
}

func (s *Server) handleClaimSwap(w http.ResponseWriter, req *RPCRequest) {
	params := claimParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	bid, err := parseAmount(params.Bid, false)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.ClaimSwap(caller, params.TradeID, bid); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type setWishlistParams struct {
	Caller string         `json:"caller"`
	Wanted []packageParam `json:"wanted"`
	Price  string         `json:"price"`
}

func (s *Server) handleSetWishlist(w http.ResponseWriter, req *RPCRequest) {
	params := setWishlistParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	price, err := parseAmount(params.Price, true)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	id, err := s.node.SetWishlist(caller, toBundle(params.Wanted), price)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tradeId": id})
}

func (s *Server) handleFillWishlist(w http.ResponseWriter, req *RPCRequest) {
	params := claimParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	ask, err := parseAmount(params.Bid, false)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.FillWishlist(caller, params.TradeID, ask); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type setAuctionParams struct {
	Caller     string         `json:"caller"`
	Lot        []packageParam `json:"lot"`
	Price      string         `json:"price,omitempty"`
	StartBlock uint64         `json:"startBlock"`
	Duration   uint64         `json:"duration"`
}

func (s *Server) handleSetAuction(w http.ResponseWriter, req *RPCRequest) {
	params := setAuctionParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	price, err := parseAmount(params.Price, false)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	id, err := s.node.SetAuction(caller, toBundle(params.Lot), price, params.StartBlock, params.Duration)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tradeId": id})
}

func (s *Server) handleBidAuction(w http.ResponseWriter, req *RPCRequest) {
	params := claimParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	bid, err := parseAmount(params.Bid, true)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.BidAuction(caller, params.TradeID, bid); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleClaimAuction(w http.ResponseWriter, req *RPCRequest) {
	params := claimParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.ClaimAuction(caller, params.TradeID); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleCancelTrade(w http.ResponseWriter, req *RPCRequest) {
	params := claimParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.CancelTrade(caller, params.TradeID); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type getTradeParams struct {
	TradeID uint64 `json:"tradeId"`
}

type tradeResult struct {
	ID         uint64         `json:"id"`
	Kind       string         `json:"kind"`
	Owner      string         `json:"owner"`
	Price      string         `json:"price,omitempty"`
	MinOrder   *uint32        `json:"minOrder,omitempty"`
	Bundle     []packageParam `json:"bundle,omitempty"`
	Required   []packageParam `json:"required,omitempty"`
	StartBlock uint64         `json:"startBlock,omitempty"`
	Duration   uint64         `json:"duration,omitempty"`
	CreatedAt  int64          `json:"createdAt"`
	HighestBid *bidResult     `json:"highestBid,omitempty"`
}

type bidResult struct {
	Bidder string `json:"bidder"`
	Amount string `json:"amount"`
}

func fromBundle(bundle item.Bundle) []packageParam {
	if len(bundle) == 0 {
		return nil
	}
	pkgs := make([]packageParam, len(bundle))
	for i, pkg := range bundle {
		pkgs[i] = packageParam{Collection: pkg.Collection, Item: pkg.Item, Amount: pkg.Amount}
	}
	return pkgs
}

func (s *Server) handleGetTrade(w http.ResponseWriter, req *RPCRequest) {
	params := getTradeParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	record, ok, err := s.node.Trade(params.TradeID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	if !ok {
		s.writeEngineError(w, req, trade.ErrUnknownTrade)
		return
	}
	result := tradeResult{
		ID:         record.ID,
		Kind:       record.Kind.String(),
		Owner:      formatAddress(record.Owner),
		Bundle:     fromBundle(record.Bundle),
		Required:   fromBundle(record.Required),
		StartBlock: record.StartBlock,
		Duration:   record.Duration,
		CreatedAt:  record.CreatedAt,
	}
	if record.Price != nil {
		result.Price = record.Price.String()
	}
	if record.HasMinOrder {
		minOrder := record.MinOrder
		result.MinOrder = &minOrder
	}
	if record.Kind == trade.KindAuction {
		if bid, hasBid, err := s.node.HighestBid(record.ID); err == nil && hasBid {
			result.HighestBid = &bidResult{
				Bidder: formatAddress(bid.Bidder),
				Amount: bid.Amount.String(),
			}
		}
	}
	writeResult(w, req.ID, result)
}
