package rpc

import "net/http"

type createGameParams struct {
	Owner string `json:"owner"`
	Admin string `json:"admin"`
}

type gameResult struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	Admin       string `json:"admin"`
	Collections uint32 `json:"collections"`
	Deposit     string `json:"deposit"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, req *RPCRequest) {
	params := createGameParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	owner, err := parseAddress(params.Owner)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	admin := owner
	if params.Admin != "" {
		if admin, err = parseAddress(params.Admin); err != nil {
			s.writeParamsError(w, req, err)
			return
		}
	}
	details, err := s.node.CreateGame(owner, admin)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, gameResult{
		ID:          details.ID,
		Owner:       formatAddress(details.Owner),
		Admin:       formatAddress(details.Admin),
		Collections: details.Collections,
		Deposit:     details.OwnerDeposit.String(),
	})
}

type gameCollectionParams struct {
	Caller     string `json:"caller"`
	Game       uint64 `json:"game"`
	Collection uint64 `json:"collection,omitempty"`
}

func (s *Server) handleCreateGameCollection(w http.ResponseWriter, req *RPCRequest) {
	params := gameCollectionParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	collectionID, err := s.node.CreateGameCollection(caller, params.Game)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"collectionId": collectionID})
}

func (s *Server) handleAddCollection(w http.ResponseWriter, req *RPCRequest) {
	params := gameCollectionParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.AddCollection(caller, params.Game, params.Collection); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

func (s *Server) handleRemoveCollection(w http.ResponseWriter, req *RPCRequest) {
	params := gameCollectionParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	if err := s.node.RemoveCollection(caller, params.Game, params.Collection); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, "ok")
}

type getGameParams struct {
	ID uint64 `json:"id"`
}

type gameDetailsResult struct {
	gameResult
	CollectionIDs []uint64 `json:"collectionIds"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, req *RPCRequest) {
	params := getGameParams{}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamsError(w, req, err)
		return
	}
	details, ok, err := s.node.Game(params.ID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	if !ok {
		writeError(w, http.StatusOK, req.ID, codeServerError, "game not found", nil)
		return
	}
	collections, err := s.node.GameCollections(params.ID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, gameDetailsResult{
		gameResult: gameResult{
			ID:          details.ID,
			Owner:       formatAddress(details.Owner),
			Admin:       formatAddress(details.Admin),
			Collections: details.Collections,
			Deposit:     details.OwnerDeposit.String(),
		},
		CollectionIDs: collections,
	})
}
