package data

import (
	"encoding/binary"
	"math/big"

	"gitlab.com/distributed_lab/logan/v3/errors"
	"golang.org/x/crypto/blake2b"
)

// OrderStatic is the immutable part of an order: the terms a seller posted.
// ChainID, AdapterID and AssetID describe the buy side; the sell side is
// carried by the OrderKey the record is stored under.
type OrderStatic struct {
	Seller         [32]byte
	ChainID        ChainID
	AdapterID      AdapterID
	AssetID        AssetID
	Price          *big.Int
	ForeignAddress [32]byte
}

const orderStaticLen = 32 + 4 + 4 + 8 + 16 + 32

// OrderID derives the order identity from the static terms. The preimage
// uses little-endian integers so the result matches the on-chain
// derivation of the native chain; identical terms always collide into one
// order by construction.
func (o OrderStatic) OrderID() (OrderID, error) {
	price, err := EncodeUint128(o.Price)
	if err != nil {
		return OrderID{}, errors.Wrap(err, "invalid order price")
	}

	preimage := make([]byte, 0, orderStaticLen)
	preimage = append(preimage, o.Seller[:]...)
	preimage = append(preimage, uint32LE(uint32(o.ChainID))...)
	preimage = append(preimage, uint32LE(uint32(o.AdapterID))...)
	preimage = append(preimage, o.AssetID[:]...)
	preimage = append(preimage, reverse(price)...)
	preimage = append(preimage, o.ForeignAddress[:]...)

	h, err := blake2b.New(16, nil)
	if err != nil {
		return OrderID{}, errors.Wrap(err, "failed to create blake2b-128 hasher")
	}
	_, _ = h.Write(preimage)

	var id OrderID
	copy(id[:], h.Sum(nil))
	return id, nil
}

// Equal reports whether two static records describe the same terms. A key
// collision with unequal terms is a data inconsistency.
func (o OrderStatic) Equal(other OrderStatic) bool {
	return o.Seller == other.Seller &&
		o.ChainID == other.ChainID &&
		o.AdapterID == other.AdapterID &&
		o.AssetID == other.AssetID &&
		bigEqual(o.Price, other.Price) &&
		o.ForeignAddress == other.ForeignAddress
}

func (o OrderStatic) Encode() ([]byte, error) {
	price, err := EncodeUint128(o.Price)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order price")
	}

	buf := make([]byte, 0, orderStaticLen)
	buf = append(buf, o.Seller[:]...)
	buf = append(buf, uint32BE(uint32(o.ChainID))...)
	buf = append(buf, uint32BE(uint32(o.AdapterID))...)
	buf = append(buf, o.AssetID[:]...)
	buf = append(buf, price...)
	buf = append(buf, o.ForeignAddress[:]...)
	return buf, nil
}

func DecodeOrderStatic(b []byte) (OrderStatic, error) {
	if len(b) != orderStaticLen {
		return OrderStatic{}, errors.Errorf("order static record must be %d bytes, got %d", orderStaticLen, len(b))
	}

	var o OrderStatic
	r := newReader(b)
	r.read(o.Seller[:])
	o.ChainID = ChainID(r.uint32())
	o.AdapterID = AdapterID(r.uint32())
	r.read(o.AssetID[:])
	o.Price = r.uint128()
	r.read(o.ForeignAddress[:])
	return o, nil
}

func uint32BE(v uint32) []byte {
	buf := make([]byte, 4)
	putUint32(buf, v)
	return buf
}

func uint32LE(v uint32) []byte {
	return reverse(uint32BE(v))
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func bigEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

// reader walks a fixed-width record whose length was checked up front.
type reader struct {
	raw []byte
	off int
}

func newReader(b []byte) *reader {
	return &reader{raw: b}
}

func (r *reader) read(dst []byte) {
	copy(dst, r.raw[r.off:r.off+len(dst)])
	r.off += len(dst)
}

func (r *reader) uint32() uint32 {
	v := binary.BigEndian.Uint32(r.raw[r.off:])
	r.off += 4
	return v
}

func (r *reader) uint128() *big.Int {
	buf := make([]byte, 16)
	r.read(buf)
	return new(big.Int).SetBytes(buf)
}

func (r *reader) byte() byte {
	v := r.raw[r.off]
	r.off++
	return v
}
