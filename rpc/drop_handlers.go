package rpc

import (
	"net/http"

	"dropchain/native/drops"
)

type dropCreateParams struct {
	Caller       string   `json:"caller,omitempty"`
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	Name         string   `json:"name"`
	Image        string   `json:"image,omitempty"`
	ScavengerIDs []string `json:"scavengerIds,omitempty"`
	Amount       string   `json:"amount,omitempty"`
	ContractID   string   `json:"contractId,omitempty"`
	Method       string   `json:"method,omitempty"`
	Args         string   `json:"args,omitempty"`
}

type dropIDParams struct {
	DropID string `json:"dropId"`
}

type dropAccountParams struct {
	Caller  string `json:"caller,omitempty"`
	Account string `json:"account,omitempty"`
	DropID  string `json:"dropId"`
}

type markFoundParams struct {
	Caller      string `json:"caller,omitempty"`
	Account     string `json:"account,omitempty"`
	DropID      string `json:"dropId"`
	ScavengerID string `json:"scavengerId"`
}

type resolveMintParams struct {
	Caller    string `json:"caller,omitempty"`
	RequestID string `json:"requestId"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
}

type forAccountParams struct {
	Caller  string `json:"caller,omitempty"`
	Account string `json:"account,omitempty"`
}

func (p dropCreateParams) drop() (*drops.Drop, *RPCError) {
	kind, err := drops.ParseKind(p.Kind)
	if err != nil {
		return nil, fromError(err)
	}
	d := &drops.Drop{ID: p.ID, Kind: kind, Name: p.Name, Image: p.Image, ScavengerIDs: p.ScavengerIDs}
	switch kind {
	case drops.KindToken:
		amount, rpcErr := parseAmount("amount", p.Amount)
		if rpcErr != nil {
			return nil, rpcErr
		}
		d.Token = &drops.TokenPayload{Amount: amount}
	case drops.KindNFT:
		d.NFT = &drops.NFTPayload{ContractID: p.ContractID, Method: p.Method, Args: p.Args}
	}
	return d, nil
}

func (s *Server) handleDropCreate(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params dropCreateParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	d, rpcErr := params.drop()
	if rpcErr != nil {
		return nil, rpcErr
	}
	created, err := s.node.CreateDrop(caller, d)
	if err != nil {
		return nil, fromError(err)
	}
	return newDropResult(created), nil
}

func (s *Server) handleDropGet(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params dropIDParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	d, err := s.node.Drop(params.DropID)
	if err != nil {
		return nil, fromError(err)
	}
	return newDropResult(d), nil
}

func (s *Server) handleDropList(_ *http.Request, _ *RPCRequest) (interface{}, *RPCError) {
	all, err := s.node.Drops()
	if err != nil {
		return nil, fromError(err)
	}
	out := make([]DropResult, 0, len(all))
	for _, d := range all {
		out = append(out, newDropResult(d))
	}
	return out, nil
}

func (s *Server) handleDropMarkFound(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params markFoundParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	account, rpcErr := s.actingFor(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	cs, err := s.node.MarkFound(account, params.DropID, params.ScavengerID)
	if err != nil {
		return nil, fromError(err)
	}
	return newClaimStateResult(cs), nil
}

func (s *Server) handleDropClaim(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params dropAccountParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	account, rpcErr := s.actingFor(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	res, err := s.node.Claim(account, params.DropID)
	if err != nil {
		return nil, fromError(err)
	}
	out := ClaimResult{State: newClaimStateResult(res.State)}
	if res.Credited != nil {
		out.Credited = formatAmount(res.Credited)
		out.Balance = formatAmount(res.Balance)
	}
	return out, nil
}

func (s *Server) handleDropResolveMint(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params resolveMintParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	if _, rpcErr := s.requireAdmin(r, params.Caller); rpcErr != nil {
		return nil, rpcErr
	}
	cs, err := s.node.ResolveMint(params.RequestID, params.Success, params.Reason)
	if err != nil {
		return nil, fromError(err)
	}
	return newClaimStateResult(cs), nil
}

func (s *Server) handleDropClaimState(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params dropAccountParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	account, rpcErr := s.viewAccount(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	cs, err := s.node.ClaimState(account, params.DropID)
	if err != nil {
		return nil, fromError(err)
	}
	return newClaimStateResult(cs), nil
}

func (s *Server) handleDropNFTsForAccount(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params forAccountParams
	if err := decodeOptionalParams(req, &params); err != nil {
		return nil, err
	}
	account, rpcErr := s.viewAccount(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	owned, err := s.node.NFTsForAccount(account)
	if err != nil {
		return nil, fromError(err)
	}
	out := make([]NFTOwnershipResult, 0, len(owned))
	for _, o := range owned {
		out = append(out, NFTOwnershipResult{Drop: newDropResult(o.Drop), Owned: o.Owned})
	}
	return out, nil
}

func (s *Server) handleDropHuntsForAccount(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params forAccountParams
	if err := decodeOptionalParams(req, &params); err != nil {
		return nil, err
	}
	account, rpcErr := s.viewAccount(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	hunts, err := s.node.ScavengerHuntsForAccount(account)
	if err != nil {
		return nil, fromError(err)
	}
	out := make([]HuntResult, 0, len(hunts))
	for _, h := range hunts {
		out = append(out, HuntResult{DropID: h.DropID, Name: h.Name, Image: h.Image, ScavengerIDs: h.ScavengerIDs, Found: h.Found})
	}
	return out, nil
}

func (s *Server) handleDropClaimedBy(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params forAccountParams
	if err := decodeOptionalParams(req, &params); err != nil {
		return nil, err
	}
	account, rpcErr := s.viewAccount(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	ids, err := s.node.ClaimedBy(account)
	if err != nil {
		return nil, fromError(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// viewAccount picks the account a read-only query is about: the explicit
// account when given, otherwise the caller.
func (s *Server) viewAccount(r *http.Request, claimed, account string) (string, *RPCError) {
	if account != "" {
		return account, nil
	}
	return s.caller(r, claimed)
}
