package rpc

import (
	"math/big"
	"net/http"

	"dropchain/native/access"
)

type accountRegisterParams struct {
	Caller     string `json:"caller,omitempty"`
	Account    string `json:"account"`
	TicketType string `json:"ticketType"`
	PublicKey  string `json:"publicKey,omitempty"`
}

type accountSetRoleParams struct {
	Caller  string `json:"caller,omitempty"`
	Account string `json:"account"`
	Status  string `json:"status"`
}

type accountParams struct {
	Account string `json:"account"`
}

type accountByKeyParams struct {
	PublicKey string `json:"publicKey"`
}

type ticketDefineParams struct {
	Caller               string `json:"caller,omitempty"`
	ID                   string `json:"id"`
	AccountType          string `json:"accountType"`
	StartingNearBalance  string `json:"startingNearBalance,omitempty"`
	StartingTokenBalance string `json:"startingTokenBalance,omitempty"`
}

type balanceParams struct {
	Caller  string `json:"caller,omitempty"`
	Account string `json:"account,omitempty"`
}

func (s *Server) handleAccountRegister(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params accountRegisterParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	acct, err := s.node.RegisterAccount(caller, access.Registration{
		Account:    params.Account,
		TicketType: params.TicketType,
		PublicKey:  params.PublicKey,
	})
	if err != nil {
		return nil, fromError(err)
	}
	return newAccountResult(acct), nil
}

func (s *Server) handleAccountSetRole(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params accountSetRoleParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	status, err := access.ParseStatus(params.Status)
	if err != nil {
		return nil, fromError(err)
	}
	if err := s.node.SetRole(caller, params.Account, status); err != nil {
		return nil, fromError(err)
	}
	acct, err := s.node.Account(params.Account)
	if err != nil {
		return nil, fromError(err)
	}
	return newAccountResult(acct), nil
}

func (s *Server) handleAccountGet(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	acct, err := s.node.Account(params.Account)
	if err != nil {
		return nil, fromError(err)
	}
	return newAccountResult(acct), nil
}

func (s *Server) handleAccountByKey(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params accountByKeyParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	account, err := s.node.AccountByKey(params.PublicKey)
	if err != nil {
		return nil, fromError(err)
	}
	return map[string]string{"account": account}, nil
}

func (s *Server) handleTicketDefine(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params ticketDefineParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	status, err := access.ParseStatus(params.AccountType)
	if err != nil {
		return nil, fromError(err)
	}
	near, rpcErr := optionalAmount("startingNearBalance", params.StartingNearBalance)
	if rpcErr != nil {
		return nil, rpcErr
	}
	token, rpcErr := optionalAmount("startingTokenBalance", params.StartingTokenBalance)
	if rpcErr != nil {
		return nil, rpcErr
	}
	ticket, err := s.node.DefineTicket(caller, access.TicketType{
		ID:                   params.ID,
		AccountType:          status,
		StartingNearBalance:  near,
		StartingTokenBalance: token,
	})
	if err != nil {
		return nil, fromError(err)
	}
	return newTicketResult(ticket), nil
}

func (s *Server) handleLedgerBalance(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params balanceParams
	if err := decodeOptionalParams(req, &params); err != nil {
		return nil, err
	}
	account := access.NormalizeAccount(params.Account)
	if account == "" {
		caller, rpcErr := s.caller(r, params.Caller)
		if rpcErr != nil {
			return nil, rpcErr
		}
		account = caller
	}
	balance, err := s.node.Balance(account)
	if err != nil {
		return nil, fromError(err)
	}
	return BalanceResult{Account: account, Balance: formatAmount(balance)}, nil
}

func optionalAmount(field, raw string) (*big.Int, *RPCError) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	return parseAmount(field, raw)
}
