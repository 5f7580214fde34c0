package ws

import (
	"encoding/hex"
	"math/big"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

// Wire messages of the query surface. Every identifier is the lowercase
// hex form of its fixed-width bytes.

type request struct {
	Type string `json:"type"`

	// GetOrderBook
	SellChainID uint32 `json:"sell_chain_id,omitempty"`
	SellAssetID string `json:"sell_asset_id,omitempty"`
	BuyChainID  uint32 `json:"buy_chain_id,omitempty"`
	BuyAssetID  string `json:"buy_asset_id,omitempty"`

	// GetOrder
	ChainID   uint32 `json:"chain_id,omitempty"`
	AdapterID uint32 `json:"adapter_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
}

const (
	requestOrderBook = "get_order_book"
	requestOrder     = "get_order"

	responseOrderBook = "order_book"
	responseOrder     = "order"
	responseResync    = "resync"
	responseError     = "error"
)

type orderPayload struct {
	OrderID        string `json:"order_id"`
	Seller         string `json:"seller"`
	BuyChainID     uint32 `json:"buy_chain_id"`
	BuyAdapterID   uint32 `json:"buy_adapter_id"`
	BuyAssetID     string `json:"buy_asset_id"`
	Price          string `json:"price"`
	ForeignAddress string `json:"foreign_address"`
	Value          string `json:"value"`
}

type lockPayload struct {
	HashedSecret   string `json:"hashed_secret"`
	Value          string `json:"value"`
	Timeout        string `json:"timeout"`
	Buyer          string `json:"buyer"`
	ForeignAddress string `json:"foreign_address"`
	BuyState       string `json:"buy_state"`
	SellState      string `json:"sell_state"`
	Secret         string `json:"secret,omitempty"`
}

type orderBookResponse struct {
	Type        string         `json:"type"`
	SellChainID uint32         `json:"sell_chain_id"`
	SellAssetID string         `json:"sell_asset_id"`
	BuyChainID  uint32         `json:"buy_chain_id"`
	BuyAssetID  string         `json:"buy_asset_id"`
	OrderBook   []orderPayload `json:"order_book"`
}

type orderResponse struct {
	Type      string        `json:"type"`
	ChainID   uint32        `json:"chain_id"`
	AdapterID uint32        `json:"adapter_id"`
	Order     orderPayload  `json:"order"`
	Locks     []lockPayload `json:"locks"`
}

type resyncResponse struct {
	Type string `json:"type"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newOrderPayload(id data.OrderID, static data.OrderStatic, value *big.Int) orderPayload {
	// A withdrawn order has no stored value left.
	if value == nil {
		value = new(big.Int)
	}
	return orderPayload{
		OrderID:        id.String(),
		Seller:         hex.EncodeToString(static.Seller[:]),
		BuyChainID:     uint32(static.ChainID),
		BuyAdapterID:   uint32(static.AdapterID),
		BuyAssetID:     static.AssetID.String(),
		Price:          static.Price.String(),
		ForeignAddress: hex.EncodeToString(static.ForeignAddress[:]),
		Value:          value.String(),
	}
}

func newLockPayload(v data.LockView) lockPayload {
	p := lockPayload{
		HashedSecret:   v.HashedSecret.String(),
		Value:          v.Buy.Value.String(),
		Timeout:        v.Buy.Timeout.String(),
		Buyer:          hex.EncodeToString(v.Buy.Buyer[:]),
		ForeignAddress: hex.EncodeToString(v.Buy.ForeignAddress[:]),
		BuyState:       v.Buy.State.String(),
		SellState:      data.NotLocked.String(),
	}
	if v.Sell != nil {
		p.SellState = v.Sell.State.String()
		if v.Sell.Secret != nil {
			p.Secret = hex.EncodeToString(v.Sell.Secret[:])
		}
	}
	return p
}
