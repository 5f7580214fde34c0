package leveldb

import (
	"math/big"
	"testing"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

func openTestBook(t *testing.T) data.OrderBook {
	db, err := goleveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewOrderBook(db)
}

func testOrder(id byte) (data.OrderKey, data.OrderStatic, data.BookPrefix) {
	static := data.OrderStatic{
		Seller:         [32]byte{id},
		ChainID:        1,
		AdapterID:      0,
		AssetID:        data.AssetID{},
		Price:          big.NewInt(1000),
		ForeignAddress: [32]byte{id, id},
	}
	key := data.OrderKey{ChainID: 60, AdapterID: 0, OrderID: data.OrderID{id}}
	prefix := data.BookPrefix{
		SellChainID: key.ChainID,
		SellAssetID: data.AssetID{},
		BuyChainID:  static.ChainID,
		BuyAssetID:  static.AssetID,
	}
	return key, static, prefix
}

func TestOrderValueAccumulation(t *testing.T) {
	book := openTestBook(t)
	key, static, prefix := testOrder(1)

	require.NoError(t, book.SaveOrder(key, static))
	require.NoError(t, book.AddValue(prefix, key, big.NewInt(500)))
	require.NoError(t, book.AddValue(prefix, key, big.NewInt(300)))

	order, err := book.Order(key)
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Zero(t, big.NewInt(800).Cmp(order.Value))

	entries, err := book.Book(prefix)
	require.NoError(t, err)
	require.Len(t, entries, 1, "an order must have at most one book entry")
	require.Zero(t, big.NewInt(800).Cmp(entries[0].Value))

	require.NoError(t, book.SubValue(prefix, key, big.NewInt(200)))

	entries, err = book.Book(prefix)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Zero(t, big.NewInt(600).Cmp(entries[0].Value))
}

func TestSubValueFloorsAtZero(t *testing.T) {
	book := openTestBook(t)
	key, static, prefix := testOrder(1)

	require.NoError(t, book.SaveOrder(key, static))
	require.NoError(t, book.AddValue(prefix, key, big.NewInt(100)))
	require.NoError(t, book.SubValue(prefix, key, big.NewInt(400)))

	// Exhausted but not withdrawn: still listed at zero.
	entries, err := book.Book(prefix)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Zero(t, entries[0].Value.Sign())
}

func TestSetValueRetraction(t *testing.T) {
	book := openTestBook(t)
	key, static, prefix := testOrder(1)

	require.NoError(t, book.SaveOrder(key, static))
	require.NoError(t, book.SetValue(prefix, key, big.NewInt(700)))
	require.NoError(t, book.SetValue(prefix, key, nil))

	entries, err := book.Book(prefix)
	require.NoError(t, err)
	require.Empty(t, entries)

	order, err := book.Order(key)
	require.NoError(t, err)
	require.NotNil(t, order, "retraction keeps the static record")
	require.Nil(t, order.Value)
}

func TestBookSortsByValue(t *testing.T) {
	book := openTestBook(t)

	values := []int64{900, 5, 42}
	var prefix data.BookPrefix
	for i, v := range values {
		key, static, p := testOrder(byte(i + 1))
		prefix = p
		require.NoError(t, book.SaveOrder(key, static))
		require.NoError(t, book.SetValue(p, key, big.NewInt(v)))
	}

	entries, err := book.Book(prefix)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Zero(t, big.NewInt(5).Cmp(entries[0].Value))
	require.Zero(t, big.NewInt(42).Cmp(entries[1].Value))
	require.Zero(t, big.NewInt(900).Cmp(entries[2].Value))
}

func TestSaveOrderConflict(t *testing.T) {
	book := openTestBook(t)
	key, static, _ := testOrder(1)

	require.NoError(t, book.SaveOrder(key, static))
	require.NoError(t, book.SaveOrder(key, static), "identical replay must be accepted")

	static.Price = big.NewInt(9999)
	err := book.SaveOrder(key, static)
	require.Error(t, err)
	require.Equal(t, data.ErrConflict, errors.Cause(err))
}

func TestOrderLocksJoin(t *testing.T) {
	book := openTestBook(t)
	key, static, _ := testOrder(1)
	require.NoError(t, book.SaveOrder(key, static))

	hs := data.HashedSecret{0xaa}
	buyKey := data.LockKey{ChainID: static.ChainID, AdapterID: static.AdapterID, HashedSecret: hs}
	sellKey := data.LockKey{ChainID: key.ChainID, AdapterID: key.AdapterID, HashedSecret: hs}

	require.NoError(t, book.SaveBuyLockWithCorrelation(buyKey, data.BuyLock{
		OrderID: key.OrderID,
		Value:   big.NewInt(250),
		Timeout: big.NewInt(170000),
		State:   data.Locked,
	}, data.OrderLockListKey{
		ChainID:      static.ChainID,
		AdapterID:    static.AdapterID,
		OrderID:      key.OrderID,
		Value:        big.NewInt(250),
		HashedSecret: hs,
	}))

	// Before the sell side responds the join carries only the buy half.
	locks, err := book.OrderLocks(key)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	require.Equal(t, hs, locks[0].HashedSecret)
	require.Equal(t, data.Locked, locks[0].Buy.State)
	require.Nil(t, locks[0].Sell)

	require.NoError(t, book.SaveSellLock(sellKey, data.SellLock{
		State:   data.Locked,
		Timeout: big.NewInt(160000),
	}))

	locks, err = book.OrderLocks(key)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	require.NotNil(t, locks[0].Sell)
	require.Equal(t, data.Locked, locks[0].Sell.State)
}

func TestOrderLocksSortByValue(t *testing.T) {
	book := openTestBook(t)
	key, static, _ := testOrder(1)
	require.NoError(t, book.SaveOrder(key, static))

	for i, v := range []int64{400, 100, 200} {
		hs := data.HashedSecret{byte(i + 1)}
		require.NoError(t, book.SaveBuyLockWithCorrelation(
			data.LockKey{ChainID: static.ChainID, AdapterID: static.AdapterID, HashedSecret: hs},
			data.BuyLock{OrderID: key.OrderID, Value: big.NewInt(v), Timeout: big.NewInt(1), State: data.Locked},
			data.OrderLockListKey{
				ChainID:      static.ChainID,
				AdapterID:    static.AdapterID,
				OrderID:      key.OrderID,
				Value:        big.NewInt(v),
				HashedSecret: hs,
			},
		))
	}

	locks, err := book.OrderLocks(key)
	require.NoError(t, err)
	require.Len(t, locks, 3)
	require.Zero(t, big.NewInt(100).Cmp(locks[0].Buy.Value))
	require.Zero(t, big.NewInt(200).Cmp(locks[1].Buy.Value))
	require.Zero(t, big.NewInt(400).Cmp(locks[2].Buy.Value))
}
