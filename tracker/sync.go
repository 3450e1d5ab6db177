package tracker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"jetton-tracker/models"
	"jetton-tracker/tonapi"
)

// AddressResolver maps a human-entered address to its canonical raw form.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, address string) (string, error)
}

// EventSource serves jetton event pages and per-event detail.
type EventSource interface {
	JettonHistory(ctx context.Context, rawAddress, jettonAddress string, limit int) ([]tonapi.EventHeader, error)
	EventDetail(ctx context.Context, eventID string) (*tonapi.Event, error)
}

// Store is the persistence contract for the ledger and the wallet registry.
type Store interface {
	AddWallet(address, rawAddress string) error
	RemoveWallet(rawAddress string) (int64, int64, error)
	Wallets() ([]models.Wallet, error)
	WalletByRaw(rawAddress string) (*models.Wallet, error)
	WalletsByVolume() ([]models.Wallet, error)
	InsertTransaction(txn *models.Transaction) error
	Watermark(rawAddress string) (time.Time, bool, error)
	KnownEventIDs(rawAddress string) (map[string]struct{}, error)
	WalletTransactions(rawAddress string) ([]models.Transaction, error)
	AllTransactions() ([]models.Transaction, error)
	SumByDirection(rawAddress string) (decimal.Decimal, decimal.Decimal, error)
	UpdateWalletVolumes(rawAddress string, buys, sells, saldo, volume decimal.Decimal) error
}

// Syncer ingests new trade events for registered wallets. A sync pass is
// idempotent: event ids already stored are filtered out before any detail
// fetch, and the insert itself ignores event-id collisions.
type Syncer struct {
	resolver      AddressResolver
	source        EventSource
	store         Store
	jettonAddress string // raw form, resolved once at startup
	windowStart   time.Time
	pageLimit     int
	log           *logrus.Logger
}

func NewSyncer(resolver AddressResolver, source EventSource, store Store, jettonAddress string, windowStart time.Time, pageLimit int, log *logrus.Logger) *Syncer {
	return &Syncer{
		resolver:      resolver,
		source:        source,
		store:         store,
		jettonAddress: jettonAddress,
		windowStart:   windowStart,
		pageLimit:     pageLimit,
		log:           log,
	}
}

// SyncWallet runs one ingestion pass for a single wallet. Any returned error
// means the pass was abandoned for this wallet; the ledger is never left
// partially inconsistent because each insert is its own atomic unit. A
// failure fetching one event's detail skips only that event.
func (s *Syncer) SyncWallet(ctx context.Context, address string) error {
	s.log.Infof("syncing wallet %s", address)

	rawAddress, err := s.resolver.ResolveAddress(ctx, address)
	if err != nil {
		return err
	}

	var watermark *time.Time
	wm, synced, err := s.store.Watermark(rawAddress)
	if err != nil {
		return err
	}
	if synced {
		watermark = &wm
		s.log.Infof("wallet %s last transaction at %s", rawAddress, wm.Format("2006-01-02 15:04:05"))
	} else {
		s.log.Infof("wallet %s has no stored transactions yet", rawAddress)
	}

	headers, err := s.source.JettonHistory(ctx, rawAddress, s.jettonAddress, s.pageLimit)
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		s.log.Infof("no events for wallet %s", rawAddress)
		return nil
	}

	known, err := s.store.KnownEventIDs(rawAddress)
	if err != nil {
		return err
	}

	inserted := 0
	for _, h := range headers {
		if _, ok := known[h.EventID]; ok {
			continue
		}

		detail, err := s.source.EventDetail(ctx, h.EventID)
		if err != nil {
			s.log.Warnf("fetch detail for event %s: %v", h.EventID, err)
			continue
		}

		trade := ParseTrade(detail, watermark, s.windowStart)
		if trade == nil {
			s.log.Infof("event %s is not a tracked trade or is outside the window", h.EventID)
			continue
		}

		txn := &models.Transaction{
			EventID:           h.EventID,
			Address:           rawAddress,
			Type:              trade.Type,
			AmountToken:       trade.AmountToken,
			AmountTon:         trade.AmountTon,
			TimeOfTransaction: trade.Time,
		}
		if err := s.store.InsertTransaction(txn); err != nil {
			s.log.Errorf("insert transaction %s: %v", h.EventID, err)
			continue
		}
		inserted++
	}

	s.log.Infof("wallet %s: %d new transactions", rawAddress, inserted)
	return nil
}

// SyncAll runs a sync pass over every registered wallet, sequentially. One
// wallet's failure is logged and does not stop the batch.
func (s *Syncer) SyncAll(ctx context.Context) {
	wallets, err := s.store.Wallets()
	if err != nil {
		s.log.Errorf("load wallets: %v", err)
		return
	}
	s.log.Infof("updating %d wallets", len(wallets))

	for _, w := range wallets {
		if err := s.SyncWallet(ctx, w.Address); err != nil {
			s.log.Errorf("sync wallet %s: %v", w.Address, err)
		}
	}
}
