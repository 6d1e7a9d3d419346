package rpc

import (
	"net/http"

	"dropchain/native/ledger"
)

type ftMetadataParams struct {
	DropID *string `json:"drop_id,omitempty"`
}

type updateFTMetadataParams struct {
	Caller        string  `json:"caller,omitempty"`
	Spec          string  `json:"spec"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Icon          *string `json:"icon,omitempty"`
	Reference     *string `json:"reference,omitempty"`
	ReferenceHash []byte  `json:"reference_hash,omitempty"`
	Decimals      uint8   `json:"decimals"`
}

func newMetadataResult(m *ledger.Metadata) MetadataResult {
	out := MetadataResult{
		Spec:          m.Spec,
		Name:          m.Name,
		Symbol:        m.Symbol,
		Icon:          m.Icon,
		Reference:     m.Reference,
		ReferenceHash: m.ReferenceHash,
		Decimals:      m.Decimals,
	}
	if m.MintedPerClaim != nil {
		v := m.MintedPerClaim.String()
		out.MintedPerClaim = &v
	}
	return out
}

func (s *Server) handleFTMetadata(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params ftMetadataParams
	if err := decodeOptionalParams(req, &params); err != nil {
		return nil, err
	}
	meta, err := s.node.TokenMetadata(params.DropID)
	if err != nil {
		return nil, fromError(err)
	}
	return newMetadataResult(meta), nil
}

func (s *Server) handleUpdateFTMetadata(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params updateFTMetadataParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	err := s.node.UpdateTokenMetadata(caller, ledger.Metadata{
		Spec:          params.Spec,
		Name:          params.Name,
		Symbol:        params.Symbol,
		Icon:          params.Icon,
		Reference:     params.Reference,
		ReferenceHash: params.ReferenceHash,
		Decimals:      params.Decimals,
	})
	if err != nil {
		return nil, fromError(err)
	}
	meta, err := s.node.TokenMetadata(nil)
	if err != nil {
		return nil, fromError(err)
	}
	return newMetadataResult(meta), nil
}
