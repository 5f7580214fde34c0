package data

import (
	"math/big"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Each key type below owns exactly one layout, used by both Encode and the
// matching Decode. Keys sort lexicographically in the store, so every
// integer component is big-endian: a forward scan over a fixed prefix
// yields entries in ascending numeric order of the embedded value.

// OrderKey addresses one order's static record and current value.
// ChainID and AdapterID are the sell side.
type OrderKey struct {
	ChainID   ChainID
	AdapterID AdapterID
	OrderID   OrderID
}

const OrderKeyLen = 4 + 4 + 16

func (k OrderKey) Encode() []byte {
	buf := make([]byte, OrderKeyLen)
	putUint32(buf[0:4], uint32(k.ChainID))
	putUint32(buf[4:8], uint32(k.AdapterID))
	copy(buf[8:], k.OrderID[:])
	return buf
}

func DecodeOrderKey(b []byte) (OrderKey, error) {
	if len(b) != OrderKeyLen {
		return OrderKey{}, errors.Errorf("order key must be %d bytes, got %d", OrderKeyLen, len(b))
	}

	var k OrderKey
	r := newReader(b)
	k.ChainID = ChainID(r.uint32())
	k.AdapterID = AdapterID(r.uint32())
	r.read(k.OrderID[:])
	return k, nil
}

// BookPrefix selects one order book: all orders selling one asset on one
// chain for one asset on another chain.
type BookPrefix struct {
	SellChainID ChainID
	SellAssetID AssetID
	BuyChainID  ChainID
	BuyAssetID  AssetID
}

const BookPrefixLen = 4 + 8 + 4 + 8

func (p BookPrefix) Encode() []byte {
	buf := make([]byte, BookPrefixLen)
	putUint32(buf[0:4], uint32(p.SellChainID))
	copy(buf[4:12], p.SellAssetID[:])
	putUint32(buf[12:16], uint32(p.BuyChainID))
	copy(buf[16:24], p.BuyAssetID[:])
	return buf
}

// OrderListKey positions an order inside its book, sorted by remaining
// value. The stored value under this key is the bare order id.
type OrderListKey struct {
	Prefix        BookPrefix
	Value         *big.Int
	SellAdapterID AdapterID
	OrderID       OrderID
}

const OrderListKeyLen = BookPrefixLen + 16 + 4 + 16

func (k OrderListKey) Encode() ([]byte, error) {
	value, err := EncodeUint128(k.Value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order list value")
	}

	buf := make([]byte, 0, OrderListKeyLen)
	buf = append(buf, k.Prefix.Encode()...)
	buf = append(buf, value...)
	buf = append(buf, uint32BE(uint32(k.SellAdapterID))...)
	buf = append(buf, k.OrderID[:]...)
	return buf, nil
}

func DecodeOrderListKey(b []byte) (OrderListKey, error) {
	if len(b) != OrderListKeyLen {
		return OrderListKey{}, errors.Errorf("order list key must be %d bytes, got %d", OrderListKeyLen, len(b))
	}

	var k OrderListKey
	r := newReader(b)
	k.Prefix.SellChainID = ChainID(r.uint32())
	r.read(k.Prefix.SellAssetID[:])
	k.Prefix.BuyChainID = ChainID(r.uint32())
	r.read(k.Prefix.BuyAssetID[:])
	k.Value = r.uint128()
	k.SellAdapterID = AdapterID(r.uint32())
	r.read(k.OrderID[:])
	return k, nil
}

// OrderLockListKey correlates an order with one buy lock placed against
// it. ChainID and AdapterID are the buy side, so the first OrderKeyLen
// bytes form the scan prefix for all locks against one order. The stored
// value under this key is the hashed secret.
type OrderLockListKey struct {
	ChainID      ChainID
	AdapterID    AdapterID
	OrderID      OrderID
	Value        *big.Int
	HashedSecret HashedSecret
}

const OrderLockListKeyLen = OrderKeyLen + 16 + 32

func (k OrderLockListKey) Encode() ([]byte, error) {
	value, err := EncodeUint128(k.Value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid lock list value")
	}

	buf := make([]byte, 0, OrderLockListKeyLen)
	buf = append(buf, OrderKey{ChainID: k.ChainID, AdapterID: k.AdapterID, OrderID: k.OrderID}.Encode()...)
	buf = append(buf, value...)
	buf = append(buf, k.HashedSecret[:]...)
	return buf, nil
}

func DecodeOrderLockListKey(b []byte) (OrderLockListKey, error) {
	if len(b) != OrderLockListKeyLen {
		return OrderLockListKey{}, errors.Errorf("lock list key must be %d bytes, got %d", OrderLockListKeyLen, len(b))
	}

	var k OrderLockListKey
	r := newReader(b)
	k.ChainID = ChainID(r.uint32())
	k.AdapterID = AdapterID(r.uint32())
	r.read(k.OrderID[:])
	k.Value = r.uint128()
	r.read(k.HashedSecret[:])
	return k, nil
}

// LockKey addresses one lock record, sell or buy, on its own chain.
type LockKey struct {
	ChainID      ChainID
	AdapterID    AdapterID
	HashedSecret HashedSecret
}

const LockKeyLen = 4 + 4 + 32

func (k LockKey) Encode() []byte {
	buf := make([]byte, LockKeyLen)
	putUint32(buf[0:4], uint32(k.ChainID))
	putUint32(buf[4:8], uint32(k.AdapterID))
	copy(buf[8:], k.HashedSecret[:])
	return buf
}
