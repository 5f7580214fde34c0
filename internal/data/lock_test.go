package data

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockStateTerminal(t *testing.T) {
	require.False(t, NotLocked.Terminal())
	require.False(t, Locked.Terminal())
	require.True(t, Unlocked.Terminal())
	require.True(t, TimedOut.Terminal())
	require.False(t, Invalid.Terminal())
}

func TestSellLockSecretPresence(t *testing.T) {
	locked := SellLock{State: Locked, Timeout: big.NewInt(170000)}
	raw, err := locked.Encode()
	require.NoError(t, err)

	got, err := DecodeSellLock(raw)
	require.NoError(t, err)
	require.Equal(t, Locked, got.State)
	require.Zero(t, locked.Timeout.Cmp(got.Timeout))
	require.Nil(t, got.Secret)

	secret := Secret{0xab}
	unlocked := SellLock{State: Unlocked, Timeout: big.NewInt(170000), Secret: &secret}
	raw, err = unlocked.Encode()
	require.NoError(t, err)

	got, err = DecodeSellLock(raw)
	require.NoError(t, err)
	require.Equal(t, Unlocked, got.State)
	require.NotNil(t, got.Secret)
	require.Equal(t, secret, *got.Secret)
}

func TestBuyLockRoundTrip(t *testing.T) {
	lock := BuyLock{
		OrderID:        OrderID{1},
		Value:          big.NewInt(500),
		Timeout:        big.NewInt(160000),
		Buyer:          [32]byte{2},
		ForeignAddress: [32]byte{3},
		State:          Locked,
	}

	raw, err := lock.Encode()
	require.NoError(t, err)

	got, err := DecodeBuyLock(raw)
	require.NoError(t, err)
	require.Equal(t, lock.OrderID, got.OrderID)
	require.Zero(t, lock.Value.Cmp(got.Value))
	require.Zero(t, lock.Timeout.Cmp(got.Timeout))
	require.Equal(t, lock.Buyer, got.Buyer)
	require.Equal(t, lock.ForeignAddress, got.ForeignAddress)
	require.Equal(t, lock.State, got.State)
}
