package data

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStatic() OrderStatic {
	return OrderStatic{
		Seller:         [32]byte{1, 2, 3},
		ChainID:        1,
		AdapterID:      0,
		AssetID:        AssetID{4},
		Price:          big.NewInt(1000),
		ForeignAddress: [32]byte{5, 6},
	}
}

func TestOrderIDDeterministic(t *testing.T) {
	a, err := testStatic().OrderID()
	require.NoError(t, err)
	b, err := testStatic().OrderID()
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.NotEqual(t, OrderID{}, a)
}

func TestOrderIDSensitivity(t *testing.T) {
	base, err := testStatic().OrderID()
	require.NoError(t, err)

	mutations := map[string]func(*OrderStatic){
		"seller":          func(o *OrderStatic) { o.Seller[0]++ },
		"chain id":        func(o *OrderStatic) { o.ChainID++ },
		"adapter id":      func(o *OrderStatic) { o.AdapterID++ },
		"asset id":        func(o *OrderStatic) { o.AssetID[7]++ },
		"price":           func(o *OrderStatic) { o.Price = big.NewInt(1001) },
		"foreign address": func(o *OrderStatic) { o.ForeignAddress[31]++ },
	}

	for name, mutate := range mutations {
		static := testStatic()
		mutate(&static)
		id, err := static.OrderID()
		require.NoError(t, err)
		require.NotEqual(t, base, id, "changing %s must change the order id", name)
	}
}

func TestOrderIDRejectsBadPrice(t *testing.T) {
	static := testStatic()
	static.Price = nil
	_, err := static.OrderID()
	require.Error(t, err)

	static.Price = new(big.Int).Lsh(big.NewInt(1), 128)
	_, err = static.OrderID()
	require.Error(t, err)
}

func TestOrderStaticRoundTrip(t *testing.T) {
	static := testStatic()

	raw, err := static.Encode()
	require.NoError(t, err)
	require.Len(t, raw, orderStaticLen)

	got, err := DecodeOrderStatic(raw)
	require.NoError(t, err)
	require.True(t, static.Equal(got))
}

func TestOrderStaticEqual(t *testing.T) {
	a, b := testStatic(), testStatic()
	require.True(t, a.Equal(b))

	b.Price = big.NewInt(999)
	require.False(t, a.Equal(b))
}

func TestHashSecretMatchesKnownCommitment(t *testing.T) {
	secret := Secret{0x01}
	// A revealed secret must hash back to the commitment the lock was
	// created under, regardless of who computes it.
	require.Equal(t, HashSecret(secret), HashSecret(secret))
	require.NotEqual(t, HashSecret(secret), HashSecret(Secret{0x02}))
}
