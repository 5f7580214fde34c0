package leveldb

import (
	"math/big"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type orderBook struct {
	db *leveldb.DB
}

// NewOrderBook wraps an opened store with the index engine operations.
func NewOrderBook(db *leveldb.DB) data.OrderBook {
	return &orderBook{db: db}
}

func (q *orderBook) SaveOrder(key data.OrderKey, static data.OrderStatic) error {
	existing, err := q.orderStatic(key)
	if err != nil {
		return err
	}
	if existing != nil {
		if !existing.Equal(static) {
			return errors.From(data.ErrConflict, logan.F{"order_id": key.OrderID.String()})
		}
		return nil
	}

	raw, err := static.Encode()
	if err != nil {
		return errors.Wrap(err, "failed to encode order static record")
	}
	err = q.db.Put(tagged(tagOrderStatic, key.Encode()), raw, nil)
	return errors.Wrap(err, "failed to put order static record")
}

func (q *orderBook) Order(key data.OrderKey) (*data.OrderView, error) {
	static, err := q.orderStatic(key)
	if err != nil || static == nil {
		return nil, err
	}

	value, err := q.orderValue(key)
	if err != nil {
		return nil, err
	}

	return &data.OrderView{Key: key, Static: *static, Value: value}, nil
}

func (q *orderBook) SetValue(prefix data.BookPrefix, key data.OrderKey, value *big.Int) error {
	return q.updateValue(prefix, key, func(*big.Int) *big.Int { return value })
}

func (q *orderBook) AddValue(prefix data.BookPrefix, key data.OrderKey, delta *big.Int) error {
	return q.updateValue(prefix, key, func(old *big.Int) *big.Int {
		if old == nil {
			return delta
		}
		return new(big.Int).Add(old, delta)
	})
}

func (q *orderBook) SubValue(prefix data.BookPrefix, key data.OrderKey, delta *big.Int) error {
	return q.updateValue(prefix, key, func(old *big.Int) *big.Int {
		if old == nil {
			return new(big.Int)
		}
		next := new(big.Int).Sub(old, delta)
		if next.Sign() < 0 {
			next.SetInt64(0)
		}
		return next
	})
}

// updateValue applies one logical value change: retract the stale book
// entry keyed by the old value, then insert the entry for the new value
// and overwrite the stored value, in that order. compute returning nil
// withdraws the order from the book.
func (q *orderBook) updateValue(prefix data.BookPrefix, key data.OrderKey, compute func(old *big.Int) *big.Int) error {
	old, err := q.orderValue(key)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	if old != nil {
		staleKey, err := q.listKey(prefix, key, old)
		if err != nil {
			return err
		}
		batch.Delete(staleKey)
	}

	next := compute(old)
	if next == nil {
		batch.Delete(tagged(tagOrderValue, key.Encode()))
		return errors.Wrap(q.db.Write(batch, nil), "failed to retract order value")
	}

	listKey, err := q.listKey(prefix, key, next)
	if err != nil {
		return err
	}
	raw, err := data.EncodeUint128(next)
	if err != nil {
		return errors.Wrap(err, "failed to encode order value")
	}
	batch.Put(listKey, key.OrderID[:])
	batch.Put(tagged(tagOrderValue, key.Encode()), raw)
	return errors.Wrap(q.db.Write(batch, nil), "failed to update order value")
}

func (q *orderBook) Book(prefix data.BookPrefix) ([]data.BookEntry, error) {
	it := q.db.NewIterator(util.BytesPrefix(tagged(tagOrderList, prefix.Encode())), nil)
	defer it.Release()

	var entries []data.BookEntry
	for it.Next() {
		listKey, err := data.DecodeOrderListKey(it.Key()[1:])
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode order list key")
		}

		orderKey := data.OrderKey{
			ChainID:   prefix.SellChainID,
			AdapterID: listKey.SellAdapterID,
			OrderID:   listKey.OrderID,
		}
		static, err := q.orderStatic(orderKey)
		if err != nil {
			return nil, err
		}
		if static == nil {
			return nil, errors.From(errors.New("order listed without a static record"),
				logan.F{"order_id": listKey.OrderID.String()})
		}

		entries = append(entries, data.BookEntry{
			OrderID:       listKey.OrderID,
			SellAdapterID: listKey.SellAdapterID,
			Static:        *static,
			Value:         listKey.Value,
		})
	}

	return entries, errors.Wrap(it.Error(), "order book iteration failed")
}

func (q *orderBook) SaveSellLock(key data.LockKey, lock data.SellLock) error {
	raw, err := lock.Encode()
	if err != nil {
		return errors.Wrap(err, "failed to encode sell lock")
	}
	err = q.db.Put(tagged(tagSellLock, key.Encode()), raw, nil)
	return errors.Wrap(err, "failed to put sell lock")
}

func (q *orderBook) SellLock(key data.LockKey) (*data.SellLock, error) {
	raw, err := q.get(tagged(tagSellLock, key.Encode()))
	if err != nil || raw == nil {
		return nil, err
	}
	lock, err := data.DecodeSellLock(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode sell lock")
	}
	return &lock, nil
}

func (q *orderBook) SaveBuyLock(key data.LockKey, lock data.BuyLock) error {
	raw, err := lock.Encode()
	if err != nil {
		return errors.Wrap(err, "failed to encode buy lock")
	}
	err = q.db.Put(tagged(tagBuyLock, key.Encode()), raw, nil)
	return errors.Wrap(err, "failed to put buy lock")
}

func (q *orderBook) BuyLock(key data.LockKey) (*data.BuyLock, error) {
	raw, err := q.get(tagged(tagBuyLock, key.Encode()))
	if err != nil || raw == nil {
		return nil, err
	}
	lock, err := data.DecodeBuyLock(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode buy lock")
	}
	return &lock, nil
}

func (q *orderBook) SaveBuyLockWithCorrelation(key data.LockKey, lock data.BuyLock, list data.OrderLockListKey) error {
	rawLock, err := lock.Encode()
	if err != nil {
		return errors.Wrap(err, "failed to encode buy lock")
	}
	rawList, err := list.Encode()
	if err != nil {
		return errors.Wrap(err, "failed to encode lock list key")
	}

	batch := new(leveldb.Batch)
	batch.Put(tagged(tagBuyLock, key.Encode()), rawLock)
	batch.Put(tagged(tagOrderLockList, rawList), list.HashedSecret[:])
	return errors.Wrap(q.db.Write(batch, nil), "failed to put buy lock with lock list entry")
}

func (q *orderBook) OrderLocks(key data.OrderKey) ([]data.LockView, error) {
	static, err := q.orderStatic(key)
	if err != nil {
		return nil, err
	}
	if static == nil {
		return nil, errors.From(errors.New("order does not exist"),
			logan.F{"order_id": key.OrderID.String()})
	}

	// Lock list entries are keyed by the buy side of the order.
	buyPrefix := data.OrderKey{
		ChainID:   static.ChainID,
		AdapterID: static.AdapterID,
		OrderID:   key.OrderID,
	}

	it := q.db.NewIterator(util.BytesPrefix(tagged(tagOrderLockList, buyPrefix.Encode())), nil)
	defer it.Release()

	var views []data.LockView
	for it.Next() {
		listKey, err := data.DecodeOrderLockListKey(it.Key()[1:])
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode lock list key")
		}

		buy, err := q.BuyLock(data.LockKey{
			ChainID:      listKey.ChainID,
			AdapterID:    listKey.AdapterID,
			HashedSecret: listKey.HashedSecret,
		})
		if err != nil {
			return nil, err
		}
		if buy == nil {
			return nil, errors.From(errors.New("lock list entry without a buy lock"),
				logan.F{"hashed_secret": listKey.HashedSecret.String()})
		}

		sell, err := q.SellLock(data.LockKey{
			ChainID:      key.ChainID,
			AdapterID:    key.AdapterID,
			HashedSecret: listKey.HashedSecret,
		})
		if err != nil {
			return nil, err
		}

		views = append(views, data.LockView{
			HashedSecret: listKey.HashedSecret,
			Buy:          *buy,
			Sell:         sell,
		})
	}

	return views, errors.Wrap(it.Error(), "order locks iteration failed")
}

func (q *orderBook) orderStatic(key data.OrderKey) (*data.OrderStatic, error) {
	raw, err := q.get(tagged(tagOrderStatic, key.Encode()))
	if err != nil || raw == nil {
		return nil, err
	}
	static, err := data.DecodeOrderStatic(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode order static record")
	}
	return &static, nil
}

func (q *orderBook) orderValue(key data.OrderKey) (*big.Int, error) {
	raw, err := q.get(tagged(tagOrderValue, key.Encode()))
	if err != nil || raw == nil {
		return nil, err
	}
	value, err := data.DecodeUint128(raw)
	return value, errors.Wrap(err, "failed to decode order value")
}

func (q *orderBook) listKey(prefix data.BookPrefix, key data.OrderKey, value *big.Int) ([]byte, error) {
	raw, err := data.OrderListKey{
		Prefix:        prefix,
		Value:         value,
		SellAdapterID: key.AdapterID,
		OrderID:       key.OrderID,
	}.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode order list key")
	}
	return tagged(tagOrderList, raw), nil
}

func (q *orderBook) get(key []byte) ([]byte, error) {
	raw, err := q.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	return raw, errors.Wrap(err, "failed to read from storage")
}
