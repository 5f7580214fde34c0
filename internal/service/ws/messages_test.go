package ws

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

func TestOrderPayloadMapping(t *testing.T) {
	static := data.OrderStatic{
		Seller:         [32]byte{0xab},
		ChainID:        1,
		AdapterID:      2,
		AssetID:        data.AssetID{0xcd},
		Price:          big.NewInt(1000),
		ForeignAddress: [32]byte{0xef},
	}

	p := newOrderPayload(data.OrderID{0x01}, static, big.NewInt(800))
	require.Equal(t, "01000000000000000000000000000000", p.OrderID)
	require.True(t, strings.HasPrefix(p.Seller, "ab"))
	require.Equal(t, uint32(1), p.BuyChainID)
	require.Equal(t, uint32(2), p.BuyAdapterID)
	require.Equal(t, "1000", p.Price)
	require.Equal(t, "800", p.Value)

	withdrawn := newOrderPayload(data.OrderID{}, static, nil)
	require.Equal(t, "0", withdrawn.Value)
}

func TestLockPayloadMapping(t *testing.T) {
	secret := data.Secret{0x99}
	view := data.LockView{
		HashedSecret: data.HashedSecret{0x11},
		Buy: data.BuyLock{
			Value:   big.NewInt(250),
			Timeout: big.NewInt(170000),
			Buyer:   [32]byte{0x22},
			State:   data.Locked,
		},
	}

	p := newLockPayload(view)
	require.Equal(t, "locked", p.BuyState)
	require.Equal(t, "not_locked", p.SellState, "unseen sell side reports not locked")
	require.Empty(t, p.Secret)

	view.Sell = &data.SellLock{State: data.Unlocked, Timeout: big.NewInt(1), Secret: &secret}
	p = newLockPayload(view)
	require.Equal(t, "unlocked", p.SellState)
	require.NotEmpty(t, p.Secret)
}

func TestRequestParsing(t *testing.T) {
	_, err := orderKeyFromRequest(request{OrderID: "zz"})
	require.Error(t, err)

	key, err := orderKeyFromRequest(request{
		ChainID:   60,
		AdapterID: 1,
		OrderID:   "000102030405060708090a0b0c0d0e0f",
	})
	require.NoError(t, err)
	require.Equal(t, data.ChainID(60), key.ChainID)
	require.Equal(t, byte(0x0f), key.OrderID[15])

	_, err = bookPrefixFromRequest(request{SellAssetID: "00", BuyAssetID: "0000000000000000"})
	require.Error(t, err, "short asset id must be rejected")

	prefix, err := bookPrefixFromRequest(request{
		SellChainID: 60,
		SellAssetID: "0000000000000000",
		BuyChainID:  1,
		BuyAssetID:  "0102030405060708",
	})
	require.NoError(t, err)
	require.Equal(t, data.ChainID(1), prefix.BuyChainID)
	require.Equal(t, byte(0x08), prefix.BuyAssetID[7])
}
