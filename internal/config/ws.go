package config

import (
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const defaultUpdateBuffer = 64

// WebSocket configures the query surface listener. Buffer bounds how many
// pending update notifications one session may queue before it is told to
// resync.
type WebSocket struct {
	Addr   string
	Buffer int
}

func (c *config) WebSocket() WebSocket {
	return c.wsOnce.Do(func() interface{} {
		var cfg struct {
			Addr   string `fig:"addr,required"`
			Buffer int    `fig:"buffer"`
		}

		err := figure.Out(&cfg).
			From(kv.MustGetStringMap(c.getter, "websocket")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out websocket"))
		}

		if cfg.Buffer == 0 {
			cfg.Buffer = defaultUpdateBuffer
		}

		return WebSocket{Addr: cfg.Addr, Buffer: cfg.Buffer}
	}).(WebSocket)
}
