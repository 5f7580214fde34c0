package config

import (
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/data/leveldb"
)

func (c *config) Storage() data.OrderBook {
	return c.storageOnce.Do(func() interface{} {
		var cfg struct {
			Path string `fig:"path,required"`
		}

		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "storage")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out storage"))
		}

		db, err := leveldb.Open(cfg.Path)
		if err != nil {
			panic(errors.Wrap(err, "failed to open order book storage"))
		}
		return leveldb.NewOrderBook(db)
	}).(data.OrderBook)
}
