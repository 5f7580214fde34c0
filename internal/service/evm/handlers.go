package evm

import (
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/broadcast"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

func (a *Adapter) orderAdded(c Contract, f Fields) error {
	static := data.OrderStatic{
		Seller:         f.bytes32("seller"),
		ChainID:        c.BuyChainID,
		AdapterID:      c.BuyAdapterID,
		AssetID:        c.BuyAssetID,
		Price:          f.uint128("price"),
		ForeignAddress: f.bytes32("foreign_address"),
	}

	key := data.OrderKey{
		ChainID:   a.chainID,
		AdapterID: c.AdapterID,
		OrderID:   f.orderID("order_id"),
	}
	if err := a.book.SaveOrder(key, static); err != nil {
		return errors.Wrap(err, "failed to save order static record")
	}

	prefix := a.bookPrefix(c, static)
	if err := a.book.AddValue(prefix, key, f.uint128("value")); err != nil {
		return errors.Wrap(err, "failed to add order value")
	}

	a.notifier.Publish(broadcast.Update{Book: &prefix, Order: &key})
	return nil
}

func (a *Adapter) orderRemoved(c Contract, f Fields) error {
	key := data.OrderKey{
		ChainID:   a.chainID,
		AdapterID: c.AdapterID,
		OrderID:   f.orderID("order_id"),
	}

	order, err := a.book.Order(key)
	if err != nil {
		return errors.Wrap(err, "failed to get order")
	}
	if order == nil {
		return errors.From(errors.New("removal for an unknown order"), logan.F{"order_id": key.OrderID.String()})
	}

	prefix := a.bookPrefix(c, order.Static)
	if err := a.book.SubValue(prefix, key, f.uint128("value")); err != nil {
		return errors.Wrap(err, "failed to subtract order value")
	}

	a.notifier.Publish(broadcast.Update{Book: &prefix, Order: &key})
	return nil
}

func (a *Adapter) sellLocked(c Contract, f Fields) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    c.AdapterID,
		HashedSecret: f.hashedSecret("hashed_secret"),
	}
	if err := a.tracker.LockSell(lockKey, f.uint128("timeout")); err != nil {
		return errors.Wrap(err, "failed to lock sell side")
	}

	a.publishOrder(data.OrderKey{ChainID: a.chainID, AdapterID: c.AdapterID, OrderID: f.orderID("order_id")})
	return nil
}

func (a *Adapter) sellUnlocked(c Contract, f Fields) error {
	err := a.tracker.UnlockSell(a.chainID, c.AdapterID, f.secret("secret"), a.hash)
	if err != nil {
		return errors.Wrap(err, "failed to unlock sell side")
	}

	a.publishOrder(data.OrderKey{ChainID: a.chainID, AdapterID: c.AdapterID, OrderID: f.orderID("order_id")})
	return nil
}

func (a *Adapter) sellTimedOut(c Contract, f Fields) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    c.AdapterID,
		HashedSecret: f.hashedSecret("hashed_secret"),
	}
	err := a.tracker.TimeoutSell(lockKey)
	return errors.Wrap(err, "failed to time out sell side")
}

func (a *Adapter) buyLocked(c Contract, f Fields) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    c.AdapterID,
		HashedSecret: f.hashedSecret("hashed_secret"),
	}
	lock := data.BuyLock{
		OrderID: f.orderID("order_id"),
		Value:   f.uint128("value"),
		Timeout: f.uint128("timeout"),
		Buyer:   f.bytes32("buyer"),
	}
	// The first buy generation's LockBuy carried no foreign address.
	if f.has("foreign_address") {
		lock.ForeignAddress = f.bytes32("foreign_address")
	}
	if err := a.tracker.LockBuy(lockKey, lock); err != nil {
		return errors.Wrap(err, "failed to lock buy side")
	}

	a.publishOrder(data.OrderKey{ChainID: c.OrderChainID, AdapterID: c.OrderAdapterID, OrderID: lock.OrderID})
	return nil
}

func (a *Adapter) buyUnlocked(c Contract, f Fields) error {
	orderID, err := a.tracker.UnlockBuy(a.chainID, c.AdapterID, f.secret("secret"), a.hash)
	if err != nil {
		return errors.Wrap(err, "failed to unlock buy side")
	}

	a.publishOrder(data.OrderKey{ChainID: c.OrderChainID, AdapterID: c.OrderAdapterID, OrderID: orderID})
	return nil
}

func (a *Adapter) buyTimedOut(c Contract, f Fields) error {
	lockKey := data.LockKey{
		ChainID:      a.chainID,
		AdapterID:    c.AdapterID,
		HashedSecret: f.hashedSecret("hashed_secret"),
	}
	err := a.tracker.TimeoutBuy(lockKey)
	return errors.Wrap(err, "failed to time out buy side")
}

func (a *Adapter) bookPrefix(c Contract, static data.OrderStatic) data.BookPrefix {
	return data.BookPrefix{
		SellChainID: a.chainID,
		SellAssetID: c.SellAssetID,
		BuyChainID:  static.ChainID,
		BuyAssetID:  static.AssetID,
	}
}

func (a *Adapter) publishOrder(key data.OrderKey) {
	a.notifier.Publish(broadcast.Update{Order: &key})
}
