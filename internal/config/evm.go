package config

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/service/evm"
)

// EVMNetwork is one configured EVM chain with its registered swap
// contracts.
type EVMNetwork struct {
	Client    *ethclient.Client
	ChainID   data.ChainID
	Contracts []evm.Contract
}

func (c *config) EVM() []EVMNetwork {
	return c.evmOnce.Do(func() interface{} {
		raw := kv.MustGetStringMap(c.getter, "evm")
		networks, ok := raw["networks"].([]interface{})
		if !ok {
			panic(errors.New("evm config must list networks"))
		}

		out := make([]EVMNetwork, 0, len(networks))
		for i, rawNetwork := range networks {
			network, err := c.network(rawNetwork)
			if err != nil {
				panic(errors.Wrap(err, "failed to figure out evm network", logan.F{"index": i}))
			}
			out = append(out, network)
		}
		return out
	}).([]EVMNetwork)
}

func (c *config) network(raw interface{}) (EVMNetwork, error) {
	fields, err := toStringMap(raw)
	if err != nil {
		return EVMNetwork{}, err
	}

	var cfg struct {
		RPC     string       `fig:"rpc,required"`
		ChainID data.ChainID `fig:"chain_id,required"`
	}
	err = figure.Out(&cfg).
		With(figure.BaseHooks, idHooks).
		From(fields).
		Please()
	if err != nil {
		return EVMNetwork{}, err
	}

	rawContracts, ok := fields["contracts"].([]interface{})
	if !ok || len(rawContracts) == 0 {
		return EVMNetwork{}, errors.New("network must list contracts")
	}
	contracts := make([]evm.Contract, 0, len(rawContracts))
	for i, rawContract := range rawContracts {
		contract, err := c.contract(rawContract)
		if err != nil {
			return EVMNetwork{}, errors.Wrap(err, "failed to figure out contract", logan.F{"index": i})
		}
		contracts = append(contracts, contract)
	}

	cli, err := ethclient.Dial(cfg.RPC)
	if err != nil {
		return EVMNetwork{}, errors.Wrap(err, "failed to connect to RPC provider")
	}

	return EVMNetwork{
		Client:    cli,
		ChainID:   cfg.ChainID,
		Contracts: contracts,
	}, nil
}

func (c *config) contract(raw interface{}) (evm.Contract, error) {
	fields, err := toStringMap(raw)
	if err != nil {
		return evm.Contract{}, err
	}

	var cfg struct {
		Address   common.Address `fig:"address,required"`
		AdapterID data.AdapterID `fig:"adapter_id"`
		Variant   string         `fig:"variant,required"`

		SellAssetID  data.AssetID   `fig:"sell_asset_id"`
		BuyChainID   data.ChainID   `fig:"buy_chain_id"`
		BuyAdapterID data.AdapterID `fig:"buy_adapter_id"`
		BuyAssetID   data.AssetID   `fig:"buy_asset_id"`

		OrderChainID   data.ChainID   `fig:"order_chain_id"`
		OrderAdapterID data.AdapterID `fig:"order_adapter_id"`
	}
	err = figure.Out(&cfg).
		With(figure.BaseHooks, figure.EthereumHooks, idHooks).
		From(fields).
		Please()
	if err != nil {
		return evm.Contract{}, err
	}

	variant, err := evm.VariantByName(cfg.Variant)
	if err != nil {
		return evm.Contract{}, err
	}

	return evm.Contract{
		Address:        cfg.Address,
		AdapterID:      cfg.AdapterID,
		Variant:        variant,
		SellAssetID:    cfg.SellAssetID,
		BuyChainID:     cfg.BuyChainID,
		BuyAdapterID:   cfg.BuyAdapterID,
		BuyAssetID:     cfg.BuyAssetID,
		OrderChainID:   cfg.OrderChainID,
		OrderAdapterID: cfg.OrderAdapterID,
	}, nil
}

// toStringMap normalizes a YAML list element into the map form figure
// consumes.
func toStringMap(raw interface{}) (map[string]interface{}, error) {
	switch m := raw.(type) {
	case map[string]interface{}:
		return m, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, errors.Errorf("expected string key, got %T", k)
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, errors.Errorf("expected map, got %T", raw)
	}
}
