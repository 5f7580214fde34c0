package config

import (
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

// Acuity configures the native chain adapter. OrderChainID and
// OrderAdapterID locate, for buy-side lock events, the sell chain the
// referenced order lives on.
type Acuity struct {
	API            *gsrpc.SubstrateAPI
	ChainID        data.ChainID
	AdapterID      data.AdapterID
	SellAssetID    data.AssetID
	OrderChainID   data.ChainID
	OrderAdapterID data.AdapterID
}

func (c *config) Acuity() Acuity {
	return c.acuityOnce.Do(func() interface{} {
		var cfg struct {
			RPC            string         `fig:"rpc,required"`
			ChainID        data.ChainID   `fig:"chain_id,required"`
			AdapterID      data.AdapterID `fig:"adapter_id"`
			SellAssetID    data.AssetID   `fig:"sell_asset_id"`
			OrderChainID   data.ChainID   `fig:"order_chain_id"`
			OrderAdapterID data.AdapterID `fig:"order_adapter_id"`
		}

		err := figure.Out(&cfg).
			With(figure.BaseHooks, idHooks).
			From(kv.MustGetStringMap(c.getter, "acuity")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out acuity"))
		}

		api, err := gsrpc.NewSubstrateAPI(cfg.RPC)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to acuity RPC"))
		}

		return Acuity{
			API:            api,
			ChainID:        cfg.ChainID,
			AdapterID:      cfg.AdapterID,
			SellAssetID:    cfg.SellAssetID,
			OrderChainID:   cfg.OrderChainID,
			OrderAdapterID: cfg.OrderAdapterID,
		}
	}).(Acuity)
}
