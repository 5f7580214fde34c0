package config

import (
	"reflect"

	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/comfig"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
)

type Config interface {
	comfig.Logger

	Storage() data.OrderBook
	Acuity() Acuity
	EVM() []EVMNetwork
	WebSocket() WebSocket
}

type config struct {
	comfig.Logger
	getter kv.Getter

	storageOnce comfig.Once
	acuityOnce  comfig.Once
	evmOnce     comfig.Once
	wsOnce      comfig.Once
}

func New(getter kv.Getter) Config {
	return &config{
		getter: getter,
		Logger: comfig.NewLogger(getter, comfig.LoggerOpts{}),
	}
}

// idHooks teaches figure the fixed-width hex identifiers.
var idHooks = figure.Hooks{
	"data.AssetID": func(value interface{}) (reflect.Value, error) {
		s, ok := value.(string)
		if !ok {
			return reflect.Value{}, errors.Errorf("expected hex string, got %T", value)
		}
		id, err := data.ParseAssetID(s)
		if err != nil {
			return reflect.Value{}, errors.Wrap(err, "failed to parse asset id")
		}
		return reflect.ValueOf(id), nil
	},
	"data.ChainID": func(value interface{}) (reflect.Value, error) {
		v, err := uint32Value(value)
		return reflect.ValueOf(data.ChainID(v)), err
	},
	"data.AdapterID": func(value interface{}) (reflect.Value, error) {
		v, err := uint32Value(value)
		return reflect.ValueOf(data.AdapterID(v)), err
	},
}

func uint32Value(value interface{}) (uint32, error) {
	switch v := value.(type) {
	case int:
		if v < 0 || int64(v) > int64(^uint32(0)) {
			return 0, errors.Errorf("value %d out of uint32 range", v)
		}
		return uint32(v), nil
	case int64:
		if v < 0 || v > int64(^uint32(0)) {
			return 0, errors.Errorf("value %d out of uint32 range", v)
		}
		return uint32(v), nil
	case uint32:
		return v, nil
	default:
		return 0, errors.Errorf("expected integer, got %T", value)
	}
}
