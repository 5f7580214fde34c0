// Package service wires the chain adapters, the index engine, the change
// notifier and the websocket query surface into one process.
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/running"

	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/broadcast"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/config"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/service/acuity"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/service/evm"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/service/ws"
	"github.com/acuity-social/acuity-atomic-swap-offchain/internal/tracker"
)

type runner interface {
	Run(ctx context.Context) error
}

type service struct {
	log     *logan.Entry
	runners map[string]runner
}

func newService(cfg config.Config) (*service, error) {
	log := cfg.Log()
	book := cfg.Storage()
	notifier := broadcast.New(cfg.WebSocket().Buffer)
	track := tracker.New(book, log.WithField("worker", "tracker"))

	runners := make(map[string]runner)

	acuityCfg := cfg.Acuity()
	runners["acuity"] = acuity.New(acuity.Opts{
		Log:            log.WithField("worker", "acuity"),
		API:            acuityCfg.API,
		ChainID:        acuityCfg.ChainID,
		AdapterID:      acuityCfg.AdapterID,
		SellAssetID:    acuityCfg.SellAssetID,
		OrderChainID:   acuityCfg.OrderChainID,
		OrderAdapterID: acuityCfg.OrderAdapterID,
		Book:           book,
		Tracker:        track,
		Notifier:       notifier,
	})

	for _, network := range cfg.EVM() {
		name := "evm/" + strconv.FormatUint(uint64(network.ChainID), 10)
		adapter, err := evm.New(evm.Opts{
			Log:       log.WithField("worker", name),
			Client:    network.Client,
			ChainID:   network.ChainID,
			Contracts: network.Contracts,
			Book:      book,
			Tracker:   track,
			Notifier:  notifier,
		})
		if err != nil {
			return nil, err
		}
		runners[name] = adapter
	}

	wsCfg := cfg.WebSocket()
	runners["websocket"] = ws.New(ws.Opts{
		Log:      log.WithField("worker", "websocket"),
		Addr:     wsCfg.Addr,
		Book:     book,
		Notifier: notifier,
	})

	return &service{log: log, runners: runners}, nil
}

// run starts every worker in its own backoff loop and blocks until all of
// them stop. Adapters return on subscription failure and are restarted
// with growing delays.
func (s *service) run(ctx context.Context) {
	s.log.Info("service started")

	var wg sync.WaitGroup
	for name, r := range s.runners {
		name, r := name, r
		wg.Add(1)
		go func() {
			defer wg.Done()
			running.WithBackOff(ctx, s.log, name, func(ctx context.Context) error {
				return r.Run(ctx)
			}, time.Second, time.Second, time.Minute)
		}()
	}
	wg.Wait()
}

func Run(cfg config.Config) {
	svc, err := newService(cfg)
	if err != nil {
		panic(err)
	}
	svc.run(context.Background())
}
