// Package data defines the canonical domain model shared by every chain
// adapter and the index engine: fixed-width identifiers, order and lock
// records, and the binary key layouts of the ordered store.
//
// All identifiers are raw byte arrays. They are compared and stored as-is
// and cross the external boundary as lowercase hex strings.
package data

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type (
	// ChainID identifies a chain.
	ChainID uint32
	// AdapterID identifies which on-chain contract variant implements the
	// swap protocol on a chain; a chain may host more than one.
	AdapterID uint32
	// AssetID identifies a fungible asset on a chain; the zero value is the
	// chain's native asset.
	AssetID [8]byte
	// OrderID is derived from the static order terms, never allocated.
	OrderID [16]byte
	// HashedSecret is the commitment of a hashed-timelock lock.
	HashedSecret [32]byte
	// Secret is the preimage of a HashedSecret.
	Secret [32]byte
)

func (id AssetID) String() string     { return hex.EncodeToString(id[:]) }
func (id OrderID) String() string     { return hex.EncodeToString(id[:]) }
func (h HashedSecret) String() string { return hex.EncodeToString(h[:]) }

// HashSecret derives the lock commitment from a revealed secret. Both
// supported chain families commit with keccak-256; a family with a
// different reveal hash plugs its own function into the adapter config.
func HashSecret(s Secret) HashedSecret {
	var h HashedSecret
	copy(h[:], crypto.Keccak256(s[:]))
	return h
}

// SecretHasher maps a revealed secret to the commitment it opens.
type SecretHasher func(Secret) HashedSecret

func ParseAssetID(s string) (AssetID, error) {
	var id AssetID
	return id, decodeHex(s, id[:])
}

func ParseOrderID(s string) (OrderID, error) {
	var id OrderID
	return id, decodeHex(s, id[:])
}

func ParseHashedSecret(s string) (HashedSecret, error) {
	var h HashedSecret
	return h, decodeHex(s, h[:])
}

func decodeHex(s string, dst []byte) error {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(err, "invalid hex string")
	}
	if len(raw) != len(dst) {
		return errors.Errorf("expected %d bytes, got %d", len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}

func putUint32(dst []byte, v uint32) {
	binary.BigEndian.PutUint32(dst, v)
}

// EncodeUint128 writes v as 16 big-endian bytes, the form every sort key
// and stored value uses. Values wider than 128 bits are rejected.
func EncodeUint128(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 128 {
		return nil, errors.New("value does not fit into unsigned 128 bits")
	}
	buf := make([]byte, 16)
	v.FillBytes(buf)
	return buf, nil
}

// DecodeUint128 reads a 16-byte big-endian value.
func DecodeUint128(b []byte) (*big.Int, error) {
	if len(b) != 16 {
		return nil, errors.Errorf("expected 16 bytes, got %d", len(b))
	}
	return new(big.Int).SetBytes(b), nil
}
