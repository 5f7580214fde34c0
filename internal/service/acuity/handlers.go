package acuity

import (
	"math/big"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/broadcast"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

func (a *Adapter) orderAdded(e eventAddToOrder) error {
	static := data.OrderStatic{
		Seller:         e.Seller,
		ChainID:        data.ChainID(e.ChainID),
		AdapterID:      data.AdapterID(e.AdapterID),
		AssetID:        e.AssetID,
		Price:          e.Price.Int,
		ForeignAddress: e.ForeignAddress,
	}
	id, err := static.OrderID()
	if err != nil {
		return errors.Wrap(err, "failed to derive order id")
	}

	key := data.OrderKey{ChainID: a.chainID, AdapterID: a.adapterID, OrderID: id}
	if err := a.book.SaveOrder(key, static); err != nil {
		return errors.Wrap(err, "failed to save order static record")
	}

	prefix := a.bookPrefix(static)
	if err := a.refreshValue(prefix, key); err != nil {
		return err
	}

	a.notifier.Publish(broadcast.Update{Book: &prefix, Order: &key})
	return nil
}

func (a *Adapter) orderRemoved(e eventRemoveFromOrder) error {
	static := data.OrderStatic{
		Seller:         e.Seller,
		ChainID:        data.ChainID(e.ChainID),
		AdapterID:      data.AdapterID(e.AdapterID),
		AssetID:        e.AssetID,
		Price:          e.Price.Int,
		ForeignAddress: e.ForeignAddress,
	}
	id, err := static.OrderID()
	if err != nil {
		return errors.Wrap(err, "failed to derive order id")
	}

	key := data.OrderKey{ChainID: a.chainID, AdapterID: a.adapterID, OrderID: id}
	prefix := a.bookPrefix(static)
	if err := a.refreshValue(prefix, key); err != nil {
		return err
	}

	a.notifier.Publish(broadcast.Update{Book: &prefix, Order: &key})
	return nil
}

func (a *Adapter) sellLocked(e eventLockSell) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    a.adapterID,
		HashedSecret: e.HashedSecret,
	}
	if err := a.tracker.LockSell(lockKey, new(big.Int).SetUint64(uint64(e.Timeout))); err != nil {
		return errors.Wrap(err, "failed to lock sell side")
	}

	// Locked funds come out of the order, so its book position moves.
	key := data.OrderKey{ChainID: a.chainID, AdapterID: a.adapterID, OrderID: e.OrderID}
	if order, err := a.book.Order(key); err != nil {
		return errors.Wrap(err, "failed to get order")
	} else if order != nil {
		prefix := a.bookPrefix(order.Static)
		if err := a.refreshValue(prefix, key); err != nil {
			return err
		}
		a.notifier.Publish(broadcast.Update{Book: &prefix, Order: &key})
		return nil
	}

	a.notifier.Publish(broadcast.Update{Order: &key})
	return nil
}

func (a *Adapter) sellUnlocked(e eventUnlockSell) error {
	if err := a.tracker.UnlockSell(a.chainID, a.adapterID, e.Secret, a.hash); err != nil {
		return errors.Wrap(err, "failed to unlock sell side")
	}

	key := data.OrderKey{ChainID: a.chainID, AdapterID: a.adapterID, OrderID: e.OrderID}
	a.notifier.Publish(broadcast.Update{Order: &key})
	return nil
}

func (a *Adapter) sellTimedOut(e eventTimeoutSell) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    a.adapterID,
		HashedSecret: e.HashedSecret,
	}
	err := a.tracker.TimeoutSell(lockKey)
	return errors.Wrap(err, "failed to time out sell side")
}

func (a *Adapter) buyLocked(e eventLockBuy) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    a.adapterID,
		HashedSecret: e.HashedSecret,
	}
	lock := data.BuyLock{
		OrderID:        e.OrderID,
		Value:          e.Value.Int,
		Timeout:        new(big.Int).SetUint64(uint64(e.Timeout)),
		Buyer:          e.Buyer,
		ForeignAddress: e.ForeignAddress,
	}
	if err := a.tracker.LockBuy(lockKey, lock); err != nil {
		return errors.Wrap(err, "failed to lock buy side")
	}

	key := data.OrderKey{ChainID: a.orderChainID, AdapterID: a.orderAdapterID, OrderID: e.OrderID}
	a.notifier.Publish(broadcast.Update{Order: &key})
	return nil
}

func (a *Adapter) buyUnlocked(e eventUnlockBuy) error {
	orderID, err := a.tracker.UnlockBuy(a.chainID, a.adapterID, e.Secret, a.hash)
	if err != nil {
		return errors.Wrap(err, "failed to unlock buy side")
	}

	key := data.OrderKey{ChainID: a.orderChainID, AdapterID: a.orderAdapterID, OrderID: orderID}
	a.notifier.Publish(broadcast.Update{Order: &key})
	return nil
}

func (a *Adapter) buyTimedOut(e eventTimeoutBuy) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    a.adapterID,
		HashedSecret: e.HashedSecret,
	}
	err := a.tracker.TimeoutBuy(lockKey)
	return errors.Wrap(err, "failed to time out buy side")
}

// refreshValue re-reads the order's liquidity from chain state and moves
// its book entry accordingly; an order absent from state was withdrawn
// and is retracted from the book.
func (a *Adapter) refreshValue(prefix data.BookPrefix, key data.OrderKey) error {
	value, found, err := a.fetchOrderValue(key.OrderID)
	if err != nil {
		return err
	}

	if !found {
		err = a.book.SetValue(prefix, key, nil)
		return errors.Wrap(err, "failed to retract order value")
	}

	err = a.book.SetValue(prefix, key, value.Int)
	return errors.Wrap(err, "failed to set order value")
}

func (a *Adapter) bookPrefix(static data.OrderStatic) data.BookPrefix {
	return data.BookPrefix{
		SellChainID: a.chainID,
		SellAssetID: a.sellAssetID,
		BuyChainID:  static.ChainID,
		BuyAssetID:  static.AssetID,
	}
}
