package evm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutValidate(t *testing.T) {
	cases := map[string]Layout{
		"empty name":  {{Name: "", Offset: 0, Width: 16}},
		"zero width":  {{Name: "a", Offset: 0, Width: 0}},
		"negative":    {{Name: "a", Offset: -1, Width: 16}},
		"duplicate":   {{Name: "a", Offset: 0, Width: 16}, {Name: "a", Offset: 32, Width: 16}},
		"overlapping": {{Name: "a", Offset: 0, Width: 32}, {Name: "b", Offset: 16, Width: 32}},
	}
	for name, layout := range cases {
		require.Error(t, layout.Validate(), name)
	}

	valid := Layout{
		{Name: "a", Offset: 0, Width: 16},
		{Name: "b", Offset: 32, Width: 32},
	}
	require.NoError(t, valid.Validate())
}

func TestLayoutDecode(t *testing.T) {
	layout := Layout{
		{Name: "order_id", Offset: 0, Width: 16},
		{Name: "value", Offset: 16, Width: 16},
	}

	payload := make([]byte, 32)
	payload[0] = 0xaa
	payload[31] = 0x05

	fields, err := layout.Decode(payload)
	require.NoError(t, err)
	require.Equal(t, byte(0xaa), fields.orderID("order_id")[0])
	require.Zero(t, big.NewInt(5).Cmp(fields.uint128("value")))

	_, err = layout.Decode(payload[:20])
	require.Error(t, err, "short payload must fail, not partially decode")
}

func TestFieldsRightAlign(t *testing.T) {
	fields := Fields{"buyer": []byte{0x01, 0x02}}

	buyer := fields.bytes32("buyer")
	require.Equal(t, byte(0x01), buyer[30])
	require.Equal(t, byte(0x02), buyer[31])
	require.Equal(t, byte(0x00), buyer[0])
}

func TestRegisteredVariants(t *testing.T) {
	for name, variant := range variants {
		require.NoError(t, variant.Validate(), name)
		require.Len(t, variant.Topics(), len(variant.Signatures), name)
	}
}

func TestValidateRequiresHandlerFields(t *testing.T) {
	broken := Variant{
		Name: "sell-broken",
		Signatures: map[string]string{
			EventSellLocked: "LockSell(bytes16,bytes32,uint256,uint256)",
		},
		Layouts: map[string]Layout{
			// hashed_secret is missing: the handler would read zero bytes.
			EventSellLocked: {
				{Name: "order_id", Offset: 0, Width: 16},
				{Name: "timeout", Offset: 80, Width: 16},
			},
		},
	}
	require.Error(t, broken.Validate())
}

func TestMissingFieldIsDetectable(t *testing.T) {
	layout := buyV0.Layouts[EventBuyLocked]
	payload := make([]byte, 208)
	for i := range payload {
		payload[i] = 0xff
	}

	fields, err := layout.Decode(payload)
	require.NoError(t, err)

	// buy-v0 never emitted a foreign address; the absence must be visible
	// instead of silently reading zeros.
	require.False(t, fields.has("foreign_address"))
	require.True(t, fields.has("order_id"))
	require.NotZero(t, fields.uint128("value").Sign())
}

func TestVariantByName(t *testing.T) {
	v, err := VariantByName("sell-v1")
	require.NoError(t, err)
	require.Equal(t, "sell-v1", v.Name)

	_, err = VariantByName("sell-v9")
	require.Error(t, err)
}

func TestBuyVariantsDivergeOnLockBuy(t *testing.T) {
	// The two buy generations pack LockBuy differently; recorded offsets
	// must stay distinct while the canonical field names line up.
	v1 := buyV1.Layouts[EventBuyLocked]
	v0 := buyV0.Layouts[EventBuyLocked]

	offsets := func(l Layout) map[string]int {
		out := make(map[string]int, len(l))
		for _, f := range l {
			out[f.Name] = f.Offset
		}
		return out
	}

	o1, o0 := offsets(v1), offsets(v0)
	require.NotEqual(t, o1["order_id"], o0["order_id"])
	require.Contains(t, o0, "asset_id")
	require.NotContains(t, o1, "asset_id")
}
