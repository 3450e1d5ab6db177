package tracker

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Registry handles wallet registration and removal. Resolution failures
// abandon the operation; they never crash the caller.
type Registry struct {
	resolver AddressResolver
	store    Store
	log      *logrus.Logger
}

func NewRegistry(resolver AddressResolver, store Store, log *logrus.Logger) *Registry {
	return &Registry{resolver: resolver, store: store, log: log}
}

// AddWallet resolves and registers a wallet, returning its raw address.
// Registering an already-tracked wallet is a no-op.
func (r *Registry) AddWallet(ctx context.Context, address string) (string, error) {
	rawAddress, err := r.resolver.ResolveAddress(ctx, address)
	if err != nil {
		return "", err
	}

	if err := r.store.AddWallet(address, rawAddress); err != nil {
		return "", err
	}

	r.log.Infof("wallet %s registered as %s", address, rawAddress)
	return rawAddress, nil
}

// RemoveWallet deletes a wallet and its transactions. The cascade happens in
// one storage transaction: if the transaction delete fails, the wallet row is
// kept.
func (r *Registry) RemoveWallet(ctx context.Context, address string) error {
	rawAddress, err := r.resolver.ResolveAddress(ctx, address)
	if err != nil {
		return err
	}

	txDeleted, walletDeleted, err := r.store.RemoveWallet(rawAddress)
	if err != nil {
		return err
	}

	if walletDeleted == 0 {
		r.log.Warnf("wallet %s not found in the registry", rawAddress)
		return nil
	}
	r.log.Infof("removed wallet %s and %d transactions", rawAddress, txDeleted)
	return nil
}
