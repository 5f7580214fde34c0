package acuity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The names must match the deployed pallet exactly: a mismatch fails
// every storage key construction against the real chain.
func TestPalletStorageNames(t *testing.T) {
	require.Equal(t, "AtomicSwap", palletName)
	require.Equal(t, "AcuityOrderIdValues", orderValuesStore)
}
