package evm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Canonical event names produced by every adapter.
const (
	EventOrderAdded   = "OrderAdded"
	EventOrderRemoved = "OrderRemoved"
	EventSellLocked   = "SellLocked"
	EventSellUnlocked = "SellUnlocked"
	EventSellTimedOut = "SellTimedOut"
	EventBuyLocked    = "BuyLocked"
	EventBuyUnlocked  = "BuyUnlocked"
	EventBuyTimedOut  = "BuyTimedOut"
)

// requiredFields lists the field names each event's handler reads from a
// decoded payload. Validate refuses a layout that omits one, so a table
// or handler typo fails at registration instead of extracting
// wrong-but-plausible zero bytes at runtime. BuyLocked's foreign_address
// is absent here: the first buy generation never emitted it and the
// handler branches on its presence.
var requiredFields = map[string][]string{
	EventOrderAdded:   {"order_id", "seller", "price", "foreign_address", "value"},
	EventOrderRemoved: {"order_id", "value"},
	EventSellLocked:   {"order_id", "hashed_secret", "timeout"},
	EventSellUnlocked: {"order_id", "secret"},
	EventSellTimedOut: {"hashed_secret"},
	EventBuyLocked:    {"order_id", "hashed_secret", "timeout", "value", "buyer"},
	EventBuyUnlocked:  {"secret"},
	EventBuyTimedOut:  {"hashed_secret"},
}

// Variant bundles everything contract-specific about one deployed swap
// contract generation: the solidity event signatures its logs carry and
// the decode table of each event's data blob. Two deployments of the same
// protocol may order fields differently, so each generation gets its own
// table selected by contract address at registration time.
type Variant struct {
	Name       string
	Signatures map[string]string
	Layouts    map[string]Layout
}

// Topics maps each event's topic hash to its canonical name.
func (v Variant) Topics() map[common.Hash]string {
	topics := make(map[common.Hash]string, len(v.Signatures))
	for name, sig := range v.Signatures {
		topics[crypto.Keccak256Hash([]byte(sig))] = name
	}
	return topics
}

// Validate checks every layout once at startup so a wrong offset fails
// fast instead of extracting wrong-but-plausible bytes at runtime.
func (v Variant) Validate() error {
	for name := range v.Signatures {
		layout, ok := v.Layouts[name]
		if !ok {
			return errors.From(errors.New("signature without a decode table"), logan.F{
				"variant": v.Name,
				"event":   name,
			})
		}
		for _, field := range requiredFields[name] {
			if !layout.has(field) {
				return errors.From(errors.New("decode table missing a required field"), logan.F{
					"variant": v.Name,
					"event":   name,
					"field":   field,
				})
			}
		}
	}
	for name, layout := range v.Layouts {
		if err := layout.Validate(); err != nil {
			return errors.Wrap(err, "invalid decode table", logan.F{
				"variant": v.Name,
				"event":   name,
			})
		}
	}
	return nil
}

// sellV1 decodes the current generation of the sell-side contract.
var sellV1 = Variant{
	Name: "sell-v1",
	Signatures: map[string]string{
		EventOrderAdded:   "AddToOrder(bytes16,bytes32,uint256,bytes32,uint256)",
		EventOrderRemoved: "RemoveFromOrder(bytes16,bytes32,uint256,bytes32,uint256)",
		EventSellLocked:   "LockSell(bytes16,bytes32,uint256,uint256)",
		EventSellUnlocked: "UnlockSell(bytes16,bytes32,address)",
		EventSellTimedOut: "TimeoutSell(bytes16,bytes32)",
	},
	Layouts: map[string]Layout{
		EventOrderAdded: {
			{Name: "order_id", Offset: 0, Width: 16},
			{Name: "seller", Offset: 32, Width: 32},
			{Name: "price", Offset: 80, Width: 16},
			{Name: "foreign_address", Offset: 96, Width: 32},
			{Name: "value", Offset: 144, Width: 16},
		},
		EventOrderRemoved: {
			{Name: "order_id", Offset: 0, Width: 16},
			{Name: "seller", Offset: 32, Width: 32},
			{Name: "price", Offset: 80, Width: 16},
			{Name: "foreign_address", Offset: 96, Width: 32},
			{Name: "value", Offset: 144, Width: 16},
		},
		EventSellLocked: {
			{Name: "order_id", Offset: 0, Width: 16},
			{Name: "hashed_secret", Offset: 32, Width: 32},
			{Name: "timeout", Offset: 80, Width: 16},
			{Name: "value", Offset: 112, Width: 16},
		},
		EventSellUnlocked: {
			{Name: "order_id", Offset: 0, Width: 16},
			{Name: "secret", Offset: 32, Width: 32},
			{Name: "buyer", Offset: 76, Width: 20},
		},
		EventSellTimedOut: {
			{Name: "order_id", Offset: 0, Width: 16},
			{Name: "hashed_secret", Offset: 32, Width: 32},
		},
	},
}

// buyV1 decodes the current generation of the buy-side contract.
var buyV1 = Variant{
	Name: "buy-v1",
	Signatures: map[string]string{
		EventBuyLocked:   "LockBuy(address,address,bytes32,uint256,uint256,bytes16,bytes32)",
		EventBuyUnlocked: "UnlockBuy(address,bytes32)",
		EventBuyTimedOut: "TimeoutBuy(address,bytes32)",
	},
	Layouts: map[string]Layout{
		EventBuyLocked: {
			{Name: "buyer", Offset: 0, Width: 32},
			{Name: "seller", Offset: 44, Width: 20},
			{Name: "hashed_secret", Offset: 64, Width: 32},
			{Name: "timeout", Offset: 112, Width: 16},
			{Name: "value", Offset: 144, Width: 16},
			{Name: "order_id", Offset: 168, Width: 16},
			{Name: "foreign_address", Offset: 192, Width: 32},
		},
		EventBuyUnlocked: {
			{Name: "buyer", Offset: 0, Width: 32},
			{Name: "secret", Offset: 32, Width: 32},
		},
		EventBuyTimedOut: {
			{Name: "buyer", Offset: 0, Width: 32},
			{Name: "hashed_secret", Offset: 32, Width: 32},
		},
	},
}

// buyV0 decodes the first deployed buy-side generation, which packed
// LockBuy fields in a different order and carried an asset id.
var buyV0 = Variant{
	Name: "buy-v0",
	Signatures: map[string]string{
		EventBuyLocked:   "LockBuy(address,address,bytes32,uint256,uint256,bytes16,bytes16)",
		EventBuyUnlocked: "UnlockBuy(address,bytes32)",
		EventBuyTimedOut: "TimeoutBuy(address,bytes32)",
	},
	Layouts: map[string]Layout{
		EventBuyLocked: {
			{Name: "buyer", Offset: 12, Width: 20},
			{Name: "seller", Offset: 44, Width: 20},
			{Name: "hashed_secret", Offset: 64, Width: 32},
			{Name: "timeout", Offset: 112, Width: 16},
			{Name: "value", Offset: 144, Width: 16},
			{Name: "asset_id", Offset: 160, Width: 16},
			{Name: "order_id", Offset: 176, Width: 16},
		},
		EventBuyUnlocked: {
			{Name: "buyer", Offset: 12, Width: 20},
			{Name: "secret", Offset: 32, Width: 32},
		},
		EventBuyTimedOut: {
			{Name: "buyer", Offset: 12, Width: 20},
			{Name: "hashed_secret", Offset: 32, Width: 32},
		},
	},
}

var variants = map[string]Variant{
	sellV1.Name: sellV1,
	buyV1.Name:  buyV1,
	buyV0.Name:  buyV0,
}

// VariantByName resolves a configured decode-variant name.
func VariantByName(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, errors.From(errors.New("unknown contract variant"), logan.F{"variant": name})
	}
	return v, nil
}
