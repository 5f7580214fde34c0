package data

import (
	"math/big"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

// LockState is the lifecycle position of one side of a hashed-timelock
// swap. Unlocked and TimedOut are terminal; Invalid is reserved for
// conflicting or malformed observations.
type LockState uint8

const (
	NotLocked LockState = iota
	Locked
	Unlocked
	TimedOut
	Invalid
)

func (s LockState) String() string {
	switch s {
	case NotLocked:
		return "not_locked"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case TimedOut:
		return "timed_out"
	default:
		return "invalid"
	}
}

// Terminal reports whether no further event may mutate a lock in state s.
func (s LockState) Terminal() bool {
	return s == Unlocked || s == TimedOut
}

// SellLock tracks the sell-side half of a swap negotiation. Secret is set
// once the seller reveals it by unlocking.
type SellLock struct {
	State   LockState
	Timeout *big.Int
	Secret  *Secret
}

const sellLockLen = 1 + 16 + 1 + 32

func (l SellLock) Encode() ([]byte, error) {
	timeout, err := EncodeUint128(l.Timeout)
	if err != nil {
		return nil, errors.Wrap(err, "invalid sell lock timeout")
	}

	buf := make([]byte, 0, sellLockLen)
	buf = append(buf, byte(l.State))
	buf = append(buf, timeout...)
	if l.Secret == nil {
		buf = append(buf, 0)
		buf = append(buf, make([]byte, 32)...)
	} else {
		buf = append(buf, 1)
		buf = append(buf, l.Secret[:]...)
	}
	return buf, nil
}

func DecodeSellLock(b []byte) (SellLock, error) {
	if len(b) != sellLockLen {
		return SellLock{}, errors.Errorf("sell lock record must be %d bytes, got %d", sellLockLen, len(b))
	}

	var l SellLock
	r := newReader(b)
	l.State = LockState(r.byte())
	l.Timeout = r.uint128()
	if r.byte() == 1 {
		var s Secret
		r.read(s[:])
		l.Secret = &s
	}
	return l, nil
}

// BuyLock tracks the buy-side half of a swap negotiation on the chain
// where the buyer locked matching funds.
type BuyLock struct {
	OrderID        OrderID
	Value          *big.Int
	Timeout        *big.Int
	Buyer          [32]byte
	ForeignAddress [32]byte
	State          LockState
}

const buyLockLen = 16 + 16 + 16 + 32 + 32 + 1

func (l BuyLock) Encode() ([]byte, error) {
	value, err := EncodeUint128(l.Value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid buy lock value")
	}
	timeout, err := EncodeUint128(l.Timeout)
	if err != nil {
		return nil, errors.Wrap(err, "invalid buy lock timeout")
	}

	buf := make([]byte, 0, buyLockLen)
	buf = append(buf, l.OrderID[:]...)
	buf = append(buf, value...)
	buf = append(buf, timeout...)
	buf = append(buf, l.Buyer[:]...)
	buf = append(buf, l.ForeignAddress[:]...)
	buf = append(buf, byte(l.State))
	return buf, nil
}

func DecodeBuyLock(b []byte) (BuyLock, error) {
	if len(b) != buyLockLen {
		return BuyLock{}, errors.Errorf("buy lock record must be %d bytes, got %d", buyLockLen, len(b))
	}

	var l BuyLock
	r := newReader(b)
	r.read(l.OrderID[:])
	l.Value = r.uint128()
	l.Timeout = r.uint128()
	r.read(l.Buyer[:])
	r.read(l.ForeignAddress[:])
	l.State = LockState(r.byte())
	return l, nil
}
