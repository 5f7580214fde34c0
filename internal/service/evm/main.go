// Package evm runs one chain adapter per EVM deployment: a live
// address-filtered log subscription whose raw payloads are decoded into
// canonical events through per-contract offset tables.
package evm

import (
	"context"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/broadcast"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/tracker"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// Contract describes one registered swap contract on the adapter's chain.
// The address is the sole selector of the decode tables and of the
// canonical ids stamped on resulting events.
type Contract struct {
	Address   common.Address
	AdapterID data.AdapterID
	Variant   Variant

	// Stamps for order events emitted by a sell-side contract.
	SellAssetID  data.AssetID
	BuyChainID   data.ChainID
	BuyAdapterID data.AdapterID
	BuyAssetID   data.AssetID

	// Stamps locating the referenced order for events emitted by a
	// buy-side contract; the order itself lives on the sell-side chain.
	OrderChainID   data.ChainID
	OrderAdapterID data.AdapterID

	topics map[common.Hash]string
}

type Opts struct {
	Log       *logan.Entry
	Client    *ethclient.Client
	ChainID   data.ChainID
	Contracts []Contract
	Book      data.OrderBook
	Tracker   *tracker.Tracker
	Notifier  *broadcast.Notifier
}

type Adapter struct {
	log       *logan.Entry
	eth       *ethclient.Client
	chainID   data.ChainID
	contracts map[common.Address]Contract
	book      data.OrderBook
	tracker   *tracker.Tracker
	notifier  *broadcast.Notifier
	hash      data.SecretHasher
}

// New validates every registered contract's decode tables and builds the
// adapter. A bad offset table is refused here, not discovered mid-stream.
func New(opts Opts) (*Adapter, error) {
	a := &Adapter{
		log:       opts.Log.WithField("chain_id", uint32(opts.ChainID)),
		eth:       opts.Client,
		chainID:   opts.ChainID,
		contracts: make(map[common.Address]Contract, len(opts.Contracts)),
		book:      opts.Book,
		tracker:   opts.Tracker,
		notifier:  opts.Notifier,
		hash:      data.HashSecret,
	}

	for _, c := range opts.Contracts {
		if err := c.Variant.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid contract variant", logan.F{"address": c.Address.Hex()})
		}
		c.topics = c.Variant.Topics()
		a.contracts[c.Address] = c
	}

	return a, nil
}

func (a *Adapter) filters() ethereum.FilterQuery {
	addresses := make([]common.Address, 0, len(a.contracts))
	topics := make([]common.Hash, 0)
	for addr, c := range a.contracts {
		addresses = append(addresses, addr)
		for topic := range c.topics {
			topics = append(topics, topic)
		}
	}

	return ethereum.FilterQuery{
		Addresses: addresses,
		Topics:    [][]common.Hash{topics},
	}
}

// Run subscribes to the contracts' logs and applies each event until the
// subscription or the context fails. The caller restarts it with backoff.
func (a *Adapter) Run(ctx context.Context) error {
	events := make(chan types.Log, 1024)
	sub, err := a.eth.SubscribeFilterLogs(ctx, a.filters(), events)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to logs")
	}
	defer sub.Unsubscribe()

	a.log.Info("listening for swap contract events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return errors.Wrap(err, "log subscription failed")
		case event := <-events:
			a.handleLog(event)
		}
	}
}

// handleLog decodes and applies one log. Any per-event failure is logged
// and dropped; only the subscription itself may abort the loop.
func (a *Adapter) handleLog(log types.Log) {
	contract, ok := a.contracts[log.Address]
	if !ok {
		return
	}
	if len(log.Topics) == 0 {
		return
	}

	name, ok := contract.topics[log.Topics[0]]
	if !ok {
		a.log.WithField("topic", log.Topics[0].Hex()).Debug("unrecognized event topic, skipping")
		return
	}

	entry := a.log.WithFields(logan.F{
		"event":   name,
		"address": log.Address.Hex(),
		"tx":      log.TxHash.Hex(),
	})

	fields, err := contract.Variant.Layouts[name].Decode(log.Data)
	if err != nil {
		entry.WithError(err).Error("failed to decode event payload, skipping")
		return
	}

	if err := a.apply(contract, name, fields); err != nil {
		entry.WithError(err).Error("failed to apply event, skipping")
		return
	}

	entry.Debug("applied event")
}

func (a *Adapter) apply(c Contract, name string, f Fields) error {
	switch name {
	case EventOrderAdded:
		return a.orderAdded(c, f)
	case EventOrderRemoved:
		return a.orderRemoved(c, f)
	case EventSellLocked:
		return a.sellLocked(c, f)
	case EventSellUnlocked:
		return a.sellUnlocked(c, f)
	case EventSellTimedOut:
		return a.sellTimedOut(c, f)
	case EventBuyLocked:
		return a.buyLocked(c, f)
	case EventBuyUnlocked:
		return a.buyUnlocked(c, f)
	case EventBuyTimedOut:
		return a.buyTimedOut(c, f)
	default:
		return errors.From(errors.New("no handler for event"), logan.F{"event": name})
	}
}
