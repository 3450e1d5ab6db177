package tracker

import (
	"github.com/sirupsen/logrus"
)

// Aggregator maintains the cached per-wallet volume columns. Every run is a
// full recompute from the ledger, so an interrupted previous run can never
// leave aggregates drifted from the transaction rows.
type Aggregator struct {
	store Store
	log   *logrus.Logger
}

func NewAggregator(store Store, log *logrus.Logger) *Aggregator {
	return &Aggregator{store: store, log: log}
}

// RecomputeWallet rewrites one wallet's aggregates from its ledger rows:
// saldo = buys - sells, volume = buys + sells.
func (a *Aggregator) RecomputeWallet(rawAddress string) error {
	buys, sells, err := a.store.SumByDirection(rawAddress)
	if err != nil {
		return err
	}

	saldo := buys.Sub(sells)
	volume := buys.Add(sells)
	return a.store.UpdateWalletVolumes(rawAddress, buys, sells, saldo, volume)
}

// RecomputeAll recomputes every registered wallet. A failure updating one
// wallet is logged and the rest proceed; the next run self-heals since the
// recompute is always full.
func (a *Aggregator) RecomputeAll() error {
	wallets, err := a.store.Wallets()
	if err != nil {
		return err
	}

	for _, w := range wallets {
		if err := a.RecomputeWallet(w.RawAddress); err != nil {
			a.log.Errorf("recompute volumes for %s: %v", w.RawAddress, err)
		}
	}
	return nil
}
