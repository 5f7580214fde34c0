// Package acuity runs the native-chain adapter: a subscription to the
// runtime's event storage, SCALE decoding of AtomicSwap pallet events and
// an authenticated state re-fetch per order mutation, since the pallet's
// events do not carry the order's current liquidity.
package acuity

import (
	"context"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/broadcast"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/tracker"
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const (
	palletName       = "AtomicSwap"
	orderValuesStore = "AcuityOrderIdValues"
)

type Opts struct {
	Log     *logan.Entry
	API     *gsrpc.SubstrateAPI
	ChainID data.ChainID
	// AdapterID identifies the pallet deployment on the native chain.
	AdapterID data.AdapterID
	// SellAssetID for orders posted through the pallet; the pallet locks
	// the native coin, so this is normally the zero asset.
	SellAssetID data.AssetID
	// OrderChainID and OrderAdapterID locate the sell side of orders that
	// buy-side events on this chain refer to.
	OrderChainID   data.ChainID
	OrderAdapterID data.AdapterID

	Book     data.OrderBook
	Tracker  *tracker.Tracker
	Notifier *broadcast.Notifier
}

type Adapter struct {
	log  *logan.Entry
	api  *gsrpc.SubstrateAPI
	meta *types.Metadata

	chainID        data.ChainID
	adapterID      data.AdapterID
	sellAssetID    data.AssetID
	orderChainID   data.ChainID
	orderAdapterID data.AdapterID

	book     data.OrderBook
	tracker  *tracker.Tracker
	notifier *broadcast.Notifier
	hash     data.SecretHasher
}

func New(opts Opts) *Adapter {
	return &Adapter{
		log:            opts.Log.WithField("chain_id", uint32(opts.ChainID)),
		api:            opts.API,
		chainID:        opts.ChainID,
		adapterID:      opts.AdapterID,
		sellAssetID:    opts.SellAssetID,
		orderChainID:   opts.OrderChainID,
		orderAdapterID: opts.OrderAdapterID,
		book:           opts.Book,
		tracker:        opts.Tracker,
		notifier:       opts.Notifier,
		hash:           data.HashSecret,
	}
}

// Run subscribes to the System.Events storage cell and applies every
// AtomicSwap event until the subscription or the context fails. The
// caller restarts it with backoff.
func (a *Adapter) Run(ctx context.Context) error {
	meta, err := a.api.RPC.State.GetMetadataLatest()
	if err != nil {
		return errors.Wrap(err, "failed to get chain metadata")
	}
	a.meta = meta

	key, err := types.CreateStorageKey(meta, "System", "Events")
	if err != nil {
		return errors.Wrap(err, "failed to create events storage key")
	}

	sub, err := a.api.RPC.State.SubscribeStorageRaw([]types.StorageKey{key})
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to events storage")
	}
	defer sub.Unsubscribe()

	a.log.Info("listening for AtomicSwap pallet events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return errors.Wrap(err, "events subscription failed")
		case set := <-sub.Chan():
			for _, change := range set.Changes {
				if !change.HasStorageData {
					continue
				}
				a.handleEventsBlob(change.StorageData)
			}
		}
	}
}

// handleEventsBlob decodes one block's event records. A blob that fails
// to decode is logged and dropped, never fatal to the subscription.
func (a *Adapter) handleEventsBlob(raw types.StorageDataRaw) {
	var events eventRecords
	if err := types.EventRecordsRaw(raw).DecodeEventRecords(a.meta, &events); err != nil {
		a.log.WithError(err).Error("failed to decode event records, skipping block")
		return
	}

	for _, e := range events.AtomicSwap_AddToOrder {
		a.applyLogged("AddToOrder", a.orderAdded(e))
	}
	for _, e := range events.AtomicSwap_RemoveFromOrder {
		a.applyLogged("RemoveFromOrder", a.orderRemoved(e))
	}
	for _, e := range events.AtomicSwap_LockSell {
		a.applyLogged("LockSell", a.sellLocked(e))
	}
	for _, e := range events.AtomicSwap_UnlockSell {
		a.applyLogged("UnlockSell", a.sellUnlocked(e))
	}
	for _, e := range events.AtomicSwap_TimeoutSell {
		a.applyLogged("TimeoutSell", a.sellTimedOut(e))
	}
	for _, e := range events.AtomicSwap_LockBuy {
		a.applyLogged("LockBuy", a.buyLocked(e))
	}
	for _, e := range events.AtomicSwap_UnlockBuy {
		a.applyLogged("UnlockBuy", a.buyUnlocked(e))
	}
	for _, e := range events.AtomicSwap_TimeoutBuy {
		a.applyLogged("TimeoutBuy", a.buyTimedOut(e))
	}
}

func (a *Adapter) applyLogged(event string, err error) {
	if err != nil {
		a.log.WithField("event", event).WithError(err).Error("failed to apply event, skipping")
		return
	}
	a.log.WithField("event", event).Debug("applied event")
}

// fetchOrderValue queries the pallet's order-value map. The second return
// is false when the order is absent from chain state, which the callers
// treat as withdrawn.
func (a *Adapter) fetchOrderValue(id data.OrderID) (types.U128, bool, error) {
	key, err := types.CreateStorageKey(a.meta, palletName, orderValuesStore, id[:])
	if err != nil {
		return types.U128{}, false, errors.Wrap(err, "failed to create order value storage key")
	}

	var value types.U128
	ok, err := a.api.RPC.State.GetStorageLatest(key, &value)
	if err != nil {
		return types.U128{}, false, errors.Wrap(err, "failed to query order value", logan.F{"order_id": id.String()})
	}
	return value, ok, nil
}
