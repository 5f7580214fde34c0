package evm

import (
	"math/big"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Field is one slice of an ABI-encoded log payload. The contracts emit
// unindexed data only, so decoding is a table of (offset, width) pairs per
// event; the table is data, validated once, never inline slicing.
type Field struct {
	Name   string
	Offset int
	Width  int
}

// Layout is the full decode table of one event.
type Layout []Field

// Validate rejects tables that could silently extract wrong bytes:
// duplicate names, zero widths, overlapping ranges.
func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for i, f := range l {
		if f.Name == "" || f.Width <= 0 || f.Offset < 0 {
			return errors.From(errors.New("malformed field spec"), logan.F{"field": f.Name, "index": i})
		}
		if _, ok := seen[f.Name]; ok {
			return errors.From(errors.New("duplicate field name"), logan.F{"field": f.Name})
		}
		seen[f.Name] = struct{}{}

		for _, other := range l[:i] {
			if f.Offset < other.Offset+other.Width && other.Offset < f.Offset+f.Width {
				return errors.From(errors.New("overlapping fields"), logan.F{
					"field": f.Name,
					"other": other.Name,
				})
			}
		}
	}
	return nil
}

func (l Layout) has(name string) bool {
	for _, f := range l {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Decode slices the payload by the table. Offsets past the payload end
// mean the payload does not match the table, never a partial read.
func (l Layout) Decode(payload []byte) (Fields, error) {
	out := make(Fields, len(l))
	for _, f := range l {
		if f.Offset+f.Width > len(payload) {
			return nil, errors.From(errors.New("payload too short for field"), logan.F{
				"field":       f.Name,
				"need":        f.Offset + f.Width,
				"payload_len": len(payload),
			})
		}
		out[f.Name] = payload[f.Offset : f.Offset+f.Width]
	}
	return out, nil
}

// Fields holds decoded slices keyed by field name. The byte accessors
// right-align shorter sources, matching ABI left-padding. Every name a
// handler reads unconditionally is declared in requiredFields and
// enforced by Variant.Validate; optional names must be gated on has.
type Fields map[string][]byte

func (f Fields) has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f Fields) bytes32(name string) [32]byte {
	var out [32]byte
	raw := f[name]
	copy(out[32-len(raw):], raw)
	return out
}

func (f Fields) bytes16(name string) [16]byte {
	var out [16]byte
	raw := f[name]
	copy(out[16-len(raw):], raw)
	return out
}

func (f Fields) uint128(name string) *big.Int {
	return new(big.Int).SetBytes(f[name])
}

func (f Fields) orderID(name string) data.OrderID {
	return data.OrderID(f.bytes16(name))
}

func (f Fields) hashedSecret(name string) data.HashedSecret {
	return data.HashedSecret(f.bytes32(name))
}

func (f Fields) secret(name string) data.Secret {
	return data.Secret(f.bytes32(name))
}
