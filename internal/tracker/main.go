// Package tracker holds the lock-lifecycle logic: pure transitions over
// sell and buy lock records driven by canonical chain events. The two
// sides are independent state machines correlated only by hashed secret.
package tracker

import (
	"math/big"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// ErrLockNotFound signals a missing antecedent record: an unlock was
// observed for a lock that was never created. The offending event must be
// skipped without touching the index.
var ErrLockNotFound = errors.New("no lock exists for the hashed secret")

type Tracker struct {
	book data.OrderBook
	log  *logan.Entry
}

func New(book data.OrderBook, log *logan.Entry) *Tracker {
	return &Tracker{book: book, log: log}
}

// LockSell upserts the sell-side lock. No prior state is required and a
// replayed Locked observation overwrites an identical one, so at-least-once
// delivery is harmless. Events against a terminal record are dropped.
func (t *Tracker) LockSell(key data.LockKey, timeout *big.Int) error {
	existing, err := t.book.SellLock(key)
	if err != nil {
		return errors.Wrap(err, "failed to get sell lock")
	}
	if existing != nil && existing.State.Terminal() {
		t.terminalSkip("LockSell", key.HashedSecret, existing.State)
		return nil
	}

	err = t.book.SaveSellLock(key, data.SellLock{State: data.Locked, Timeout: timeout})
	return errors.Wrap(err, "failed to save sell lock")
}

// UnlockSell records the revealed secret. The lock key is derived by
// hashing the secret with the sell-side chain's hash function. A missing
// record is synthesized from NotLocked: a subscription that started
// mid-stream may legitimately observe the unlock first.
func (t *Tracker) UnlockSell(chainID data.ChainID, adapterID data.AdapterID, secret data.Secret, hash data.SecretHasher) error {
	key := data.LockKey{ChainID: chainID, AdapterID: adapterID, HashedSecret: hash(secret)}

	lock, err := t.book.SellLock(key)
	if err != nil {
		return errors.Wrap(err, "failed to get sell lock")
	}
	if lock == nil {
		lock = &data.SellLock{State: data.NotLocked, Timeout: new(big.Int)}
	}
	if lock.State.Terminal() {
		t.terminalSkip("UnlockSell", key.HashedSecret, lock.State)
		return nil
	}

	lock.State = data.Unlocked
	lock.Secret = &secret
	err = t.book.SaveSellLock(key, *lock)
	return errors.Wrap(err, "failed to save sell lock")
}

// TimeoutSell moves the sell lock to TimedOut. Informational downstream;
// a record is synthesized when the lock was never observed.
func (t *Tracker) TimeoutSell(key data.LockKey) error {
	lock, err := t.book.SellLock(key)
	if err != nil {
		return errors.Wrap(err, "failed to get sell lock")
	}
	if lock == nil {
		lock = &data.SellLock{State: data.NotLocked, Timeout: new(big.Int)}
	}
	if lock.State.Terminal() {
		t.terminalSkip("TimeoutSell", key.HashedSecret, lock.State)
		return nil
	}

	lock.State = data.TimedOut
	err = t.book.SaveSellLock(key, *lock)
	return errors.Wrap(err, "failed to save sell lock")
}

// LockBuy upserts the buy-side lock and correlates it with its order.
func (t *Tracker) LockBuy(key data.LockKey, lock data.BuyLock) error {
	existing, err := t.book.BuyLock(key)
	if err != nil {
		return errors.Wrap(err, "failed to get buy lock")
	}
	if existing != nil && existing.State.Terminal() {
		t.terminalSkip("LockBuy", key.HashedSecret, existing.State)
		return nil
	}

	lock.State = data.Locked
	err = t.book.SaveBuyLockWithCorrelation(key, lock, data.OrderLockListKey{
		ChainID:      key.ChainID,
		AdapterID:    key.AdapterID,
		OrderID:      lock.OrderID,
		Value:        lock.Value,
		HashedSecret: key.HashedSecret,
	})
	return errors.Wrap(err, "failed to save buy lock")
}

// UnlockBuy marks the buy lock unlocked and returns the affected order id.
// Unlike the sell side, an unlock here must always follow a lock: funds
// cannot leave a contract that never held them, so a missing record is a
// consistency error, not a tolerated gap.
func (t *Tracker) UnlockBuy(chainID data.ChainID, adapterID data.AdapterID, secret data.Secret, hash data.SecretHasher) (data.OrderID, error) {
	key := data.LockKey{ChainID: chainID, AdapterID: adapterID, HashedSecret: hash(secret)}

	lock, err := t.book.BuyLock(key)
	if err != nil {
		return data.OrderID{}, errors.Wrap(err, "failed to get buy lock")
	}
	if lock == nil {
		return data.OrderID{}, errors.From(ErrLockNotFound, logan.F{"hashed_secret": key.HashedSecret.String()})
	}
	if lock.State.Terminal() {
		t.terminalSkip("UnlockBuy", key.HashedSecret, lock.State)
		return lock.OrderID, nil
	}

	lock.State = data.Unlocked
	err = t.book.SaveBuyLock(key, *lock)
	return lock.OrderID, errors.Wrap(err, "failed to save buy lock")
}

// TimeoutBuy moves the buy lock to TimedOut. A missing record is logged
// and skipped; the refund proves no tracked swap depended on it.
func (t *Tracker) TimeoutBuy(key data.LockKey) error {
	lock, err := t.book.BuyLock(key)
	if err != nil {
		return errors.Wrap(err, "failed to get buy lock")
	}
	if lock == nil {
		t.log.WithField("hashed_secret", key.HashedSecret.String()).
			Warn("observed TimeoutBuy without a buy lock, skipping")
		return nil
	}
	if lock.State.Terminal() {
		t.terminalSkip("TimeoutBuy", key.HashedSecret, lock.State)
		return nil
	}

	lock.State = data.TimedOut
	err = t.book.SaveBuyLock(key, *lock)
	return errors.Wrap(err, "failed to save buy lock")
}

func (t *Tracker) terminalSkip(event string, hs data.HashedSecret, state data.LockState) {
	t.log.WithFields(logan.F{
		"event":         event,
		"hashed_secret": hs.String(),
		"state":         state.String(),
	}).Warn("lock is already in a terminal state, dropping event")
}
