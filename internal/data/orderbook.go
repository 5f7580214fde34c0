package data

import (
	"math/big"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

// ErrConflict is returned when a write collides with an existing record
// whose fields disagree with the incoming one.
var ErrConflict = errors.New("record exists with conflicting fields")

// OrderBook is the index engine: six keyspaces in one ordered store.
// Mutations for one order touch key ranges disjoint from every other
// order's, so callers need no cross-task coordination; ordering within
// one order's update is the implementation's responsibility.
type OrderBook interface {
	// SaveOrder upserts the static record. Saving different terms under an
	// existing key returns ErrConflict and leaves the index untouched.
	SaveOrder(key OrderKey, static OrderStatic) error
	// Order returns the static record with the current value, or nil if
	// the key was never seen. Value is nil once the order is withdrawn.
	Order(key OrderKey) (*OrderView, error)

	// SetValue replaces the order's remaining value and moves its book
	// entry to the matching sort position. A nil value retracts the order
	// from the book entirely.
	SetValue(prefix BookPrefix, key OrderKey, value *big.Int) error
	// AddValue folds a sell-side liquidity increase into the stored value.
	AddValue(prefix BookPrefix, key OrderKey, delta *big.Int) error
	// SubValue folds a liquidity decrease into the stored value, stopping
	// at zero. The order stays listed at value zero until withdrawn.
	SubValue(prefix BookPrefix, key OrderKey, delta *big.Int) error

	// Book scans one order book in ascending value order.
	Book(prefix BookPrefix) ([]BookEntry, error)

	SaveSellLock(key LockKey, lock SellLock) error
	SellLock(key LockKey) (*SellLock, error)
	SaveBuyLock(key LockKey, lock BuyLock) error
	BuyLock(key LockKey) (*BuyLock, error)

	// SaveBuyLockWithCorrelation writes the buy lock together with the
	// order→buy-lock list entry scanned by OrderLocks, atomically. A list
	// entry must never exist without its lock record.
	SaveBuyLockWithCorrelation(key LockKey, lock BuyLock, list OrderLockListKey) error
	// OrderLocks lists every buy lock placed against the order together
	// with the paired sell lock, in ascending value order.
	OrderLocks(key OrderKey) ([]LockView, error)
}

// OrderView is an order's static terms joined with its mutable value.
type OrderView struct {
	Key    OrderKey
	Static OrderStatic
	Value  *big.Int
}

// BookEntry is one row of an order-book scan.
type BookEntry struct {
	OrderID       OrderID
	SellAdapterID AdapterID
	Static        OrderStatic
	Value         *big.Int
}

// LockView joins a buy lock with the sell lock sharing its hashed secret.
// Sell is nil while the sell side has not been observed.
type LockView struct {
	HashedSecret HashedSecret
	Buy          BuyLock
	Sell         *SellLock
}
