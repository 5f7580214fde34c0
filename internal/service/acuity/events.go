package acuity

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// The AtomicSwap pallet's events. Unlike the EVM side these records are
// self-describing: SCALE decoding is driven by the field schema below and
// by chain metadata, with no manual offsets.

type eventAddToOrder struct {
	Phase          types.Phase
	Seller         [32]byte
	ChainID        types.U32
	AdapterID      types.U32
	AssetID        [8]byte
	Price          types.U128
	ForeignAddress [32]byte
	Value          types.U128
	Topics         []types.Hash
}

type eventRemoveFromOrder struct {
	Phase          types.Phase
	Seller         [32]byte
	ChainID        types.U32
	AdapterID      types.U32
	AssetID        [8]byte
	Price          types.U128
	ForeignAddress [32]byte
	Value          types.U128
	Topics         []types.Hash
}

type eventLockSell struct {
	Phase        types.Phase
	OrderID      [16]byte
	HashedSecret [32]byte
	Timeout      types.U64
	Value        types.U128
	Topics       []types.Hash
}

type eventUnlockSell struct {
	Phase   types.Phase
	OrderID [16]byte
	Secret  [32]byte
	Buyer   [32]byte
	Topics  []types.Hash
}

type eventTimeoutSell struct {
	Phase        types.Phase
	OrderID      [16]byte
	HashedSecret [32]byte
	Topics       []types.Hash
}

type eventLockBuy struct {
	Phase          types.Phase
	Buyer          [32]byte
	Seller         [32]byte
	HashedSecret   [32]byte
	Timeout        types.U64
	Value          types.U128
	OrderID        [16]byte
	ForeignAddress [32]byte
	Topics         []types.Hash
}

type eventUnlockBuy struct {
	Phase  types.Phase
	Buyer  [32]byte
	Secret [32]byte
	Topics []types.Hash
}

type eventTimeoutBuy struct {
	Phase        types.Phase
	Buyer        [32]byte
	HashedSecret [32]byte
	Topics       []types.Hash
}

// eventRecords extends the runtime's standard event set with the
// AtomicSwap pallet so EventRecordsRaw can route by metadata index.
type eventRecords struct {
	types.EventRecords
	AtomicSwap_AddToOrder      []eventAddToOrder      //nolint:stylecheck
	AtomicSwap_RemoveFromOrder []eventRemoveFromOrder //nolint:stylecheck
	AtomicSwap_LockSell        []eventLockSell        //nolint:stylecheck
	AtomicSwap_UnlockSell      []eventUnlockSell      //nolint:stylecheck
	AtomicSwap_TimeoutSell     []eventTimeoutSell     //nolint:stylecheck
	AtomicSwap_LockBuy         []eventLockBuy         //nolint:stylecheck
	AtomicSwap_UnlockBuy       []eventUnlockBuy       //nolint:stylecheck
	AtomicSwap_TimeoutBuy      []eventTimeoutBuy      //nolint:stylecheck
}
