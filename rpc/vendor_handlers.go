package rpc

import (
	"net/http"

	"dropchain/native/vendor"
)

type vendorRegisterParams struct {
	Caller      string `json:"caller,omitempty"`
	Vendor      string `json:"vendor,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
}

type listingParams struct {
	Caller    string `json:"caller,omitempty"`
	Vendor    string `json:"vendor,omitempty"`
	ItemID    uint64 `json:"itemId,omitempty"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Price     string `json:"price"`
	InStock   bool   `json:"in_stock"`
	Unlimited bool   `json:"unlimited,omitempty"`
}

type vendorItemParams struct {
	Caller string `json:"caller,omitempty"`
	Vendor string `json:"vendor"`
	ItemID uint64 `json:"itemId"`
}

type vendorIDParams struct {
	VendorID string `json:"vendor_id"`
}

type vendorItemsParams struct {
	VendorID string  `json:"vendor_id"`
	Offset   uint64  `json:"offset,omitempty"`
	Limit    *uint64 `json:"limit,omitempty"`
}

type itemInformationParams struct {
	VendorID string `json:"vendor_id"`
	ItemID   uint64 `json:"item_id"`
}

func (p listingParams) listing() (vendor.Listing, *RPCError) {
	price, rpcErr := parseAmount("price", p.Price)
	if rpcErr != nil {
		return vendor.Listing{}, rpcErr
	}
	return vendor.Listing{Name: p.Name, Image: p.Image, Price: price, InStock: p.InStock, Unlimited: p.Unlimited}, nil
}

// vendorFor defaults the storefront to the caller's own.
func vendorFor(caller, vendorID string) string {
	if vendorID == "" {
		return caller
	}
	return vendorID
}

func (s *Server) handleVendorRegister(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params vendorRegisterParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id := vendorFor(caller, params.Vendor)
	meta := vendor.Metadata{Name: params.Name, Description: params.Description, CoverImage: params.CoverImage}
	if err := s.node.RegisterVendor(caller, id, meta); err != nil {
		return nil, fromError(err)
	}
	stored, err := s.node.VendorMetadata(id)
	if err != nil {
		return nil, fromError(err)
	}
	return stored, nil
}

func (s *Server) handleVendorAddItem(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params listingParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	listing, rpcErr := params.listing()
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, err := s.node.AddItem(caller, vendorFor(caller, params.Vendor), listing)
	if err != nil {
		return nil, fromError(err)
	}
	return map[string]uint64{"itemId": id}, nil
}

func (s *Server) handleVendorUpdateItem(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params listingParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	listing, rpcErr := params.listing()
	if rpcErr != nil {
		return nil, rpcErr
	}
	id := vendorFor(caller, params.Vendor)
	if err := s.node.UpdateItem(caller, id, params.ItemID, listing); err != nil {
		return nil, fromError(err)
	}
	item, err := s.node.VendorItem(id, params.ItemID)
	if err != nil {
		return nil, fromError(err)
	}
	return newItemResult(*item), nil
}

func (s *Server) handleVendorRemoveItem(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params vendorItemParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	caller, rpcErr := s.caller(r, params.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.node.RemoveItem(caller, vendorFor(caller, params.Vendor), params.ItemID); err != nil {
		return nil, fromError(err)
	}
	return map[string]bool{"removed": true}, nil
}

func (s *Server) handleVendorMetadata(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params vendorIDParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	meta, err := s.node.VendorMetadata(params.VendorID)
	if err != nil {
		return nil, fromError(err)
	}
	return meta, nil
}

func (s *Server) handleVendorItems(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params vendorItemsParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	items, err := s.node.VendorItems(params.VendorID, params.Offset, params.Limit)
	if err != nil {
		return nil, fromError(err)
	}
	out := make([]ItemResult, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResult(item))
	}
	return out, nil
}

func (s *Server) handleVendorItem(_ *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params itemInformationParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	item, err := s.node.VendorItem(params.VendorID, params.ItemID)
	if err != nil {
		return nil, fromError(err)
	}
	return newItemResult(*item), nil
}

type purchaseParams struct {
	Caller  string `json:"caller,omitempty"`
	Account string `json:"account,omitempty"`
	Vendor  string `json:"vendor"`
	ItemID  uint64 `json:"itemId"`
}

func (s *Server) handleVendorPurchase(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	var params purchaseParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	buyer, rpcErr := s.actingFor(r, params.Caller, params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	receipt, err := s.node.Purchase(buyer, params.Vendor, params.ItemID)
	if err != nil {
		return nil, fromError(err)
	}
	return ReceiptResult{
		Buyer:   receipt.Buyer,
		Vendor:  receipt.Vendor,
		ItemID:  receipt.ItemID,
		Price:   formatAmount(receipt.Price),
		Balance: formatAmount(receipt.Balance),
		InStock: receipt.InStock,
	}, nil
}
