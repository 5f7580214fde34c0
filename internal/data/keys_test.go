package data

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPrefix() BookPrefix {
	return BookPrefix{
		SellChainID: 60,
		SellAssetID: AssetID{1},
		BuyChainID:  1,
		BuyAssetID:  AssetID{2},
	}
}

func TestOrderListKeySortsByValue(t *testing.T) {
	prefix := testPrefix()
	values := []*big.Int{
		big.NewInt(5),
		big.NewInt(300),
		big.NewInt(800),
		new(big.Int).Lsh(big.NewInt(1), 100),
	}

	var prev []byte
	for _, v := range values {
		raw, err := OrderListKey{
			Prefix:        prefix,
			Value:         v,
			SellAdapterID: 0,
			OrderID:       OrderID{0xaa},
		}.Encode()
		require.NoError(t, err)

		if prev != nil {
			require.True(t, bytes.Compare(prev, raw) < 0,
				"key for smaller value must sort before key for %s", v)
		}
		prev = raw
	}
}

func TestOrderListKeyRoundTrip(t *testing.T) {
	key := OrderListKey{
		Prefix:        testPrefix(),
		Value:         big.NewInt(123456789),
		SellAdapterID: 3,
		OrderID:       OrderID{0xde, 0xad},
	}

	raw, err := key.Encode()
	require.NoError(t, err)
	require.Len(t, raw, OrderListKeyLen)

	got, err := DecodeOrderListKey(raw)
	require.NoError(t, err)
	require.Equal(t, key.Prefix, got.Prefix)
	require.Zero(t, key.Value.Cmp(got.Value))
	require.Equal(t, key.SellAdapterID, got.SellAdapterID)
	require.Equal(t, key.OrderID, got.OrderID)
}

func TestOrderLockListKeyRoundTrip(t *testing.T) {
	key := OrderLockListKey{
		ChainID:      1,
		AdapterID:    2,
		OrderID:      OrderID{7},
		Value:        big.NewInt(42),
		HashedSecret: HashedSecret{0xff, 0x01},
	}

	raw, err := key.Encode()
	require.NoError(t, err)
	require.Len(t, raw, OrderLockListKeyLen)

	got, err := DecodeOrderLockListKey(raw)
	require.NoError(t, err)
	require.Equal(t, key.ChainID, got.ChainID)
	require.Equal(t, key.AdapterID, got.AdapterID)
	require.Equal(t, key.OrderID, got.OrderID)
	require.Zero(t, key.Value.Cmp(got.Value))
	require.Equal(t, key.HashedSecret, got.HashedSecret)
}

func TestOrderKeyRoundTrip(t *testing.T) {
	key := OrderKey{ChainID: 60, AdapterID: 1, OrderID: OrderID{9, 8, 7}}

	raw := key.Encode()
	require.Len(t, raw, OrderKeyLen)

	got, err := DecodeOrderKey(raw)
	require.NoError(t, err)
	require.Equal(t, key, got)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := DecodeOrderKey(make([]byte, OrderKeyLen-1))
	require.Error(t, err)

	_, err = DecodeOrderListKey(make([]byte, OrderListKeyLen+1))
	require.Error(t, err)

	_, err = DecodeOrderLockListKey(nil)
	require.Error(t, err)
}

func TestEncodeUint128Bounds(t *testing.T) {
	_, err := EncodeUint128(nil)
	require.Error(t, err)

	_, err = EncodeUint128(big.NewInt(-1))
	require.Error(t, err)

	_, err = EncodeUint128(new(big.Int).Lsh(big.NewInt(1), 128))
	require.Error(t, err)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	raw, err := EncodeUint128(max)
	require.NoError(t, err)

	got, err := DecodeUint128(raw)
	require.NoError(t, err)
	require.Zero(t, max.Cmp(got))
}
