package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jetton-tracker/models"
)

// StorageError reports a failed persistence operation. The failing atomic
// unit is rolled back; sibling operations are unaffected.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is the persistence layer for the wallet registry and the transaction
// ledger. Every exported method is one short-lived transaction or a single
// auto-committed statement; none spans a network round-trip, so the console
// loop and the background cycle can interleave freely on the shared pool.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AddWallet registers a wallet. Adding an already-registered raw address is a
// no-op.
func (s *Store) AddWallet(address, rawAddress string) error {
	w := &models.Wallet{
		Address:    address,
		RawAddress: rawAddress,
		Volume:     decimal.Zero,
		SellVol:    decimal.Zero,
		BuysVol:    decimal.Zero,
		SaldoVol:   decimal.Zero,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "raw_address"}},
		DoNothing: true,
	}).Create(w).Error
	if err != nil {
		return &StorageError{Op: "add wallet", Err: err}
	}
	return nil
}

// RemoveWallet deletes a wallet and all of its transactions in one
// transaction. If the transaction delete fails, the wallet row stays.
// Returns the number of deleted transactions and wallet rows.
func (s *Store) RemoveWallet(rawAddress string) (int64, int64, error) {
	var txDeleted, walletDeleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("address = ?", rawAddress).Delete(&models.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		txDeleted = res.RowsAffected

		res = tx.Where("raw_address = ?", rawAddress).Delete(&models.Wallet{})
		if res.Error != nil {
			return res.Error
		}
		walletDeleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, &StorageError{Op: "remove wallet", Err: err}
	}
	return txDeleted, walletDeleted, nil
}

// Wallets returns all registered wallets in insertion order.
func (s *Store) Wallets() ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := s.db.Order("id ASC").Find(&wallets).Error; err != nil {
		return nil, &StorageError{Op: "list wallets", Err: err}
	}
	return wallets, nil
}

// WalletByRaw returns one wallet by its raw address, or nil if absent.
func (s *Store) WalletByRaw(rawAddress string) (*models.Wallet, error) {
	var w models.Wallet
	err := s.db.Where("raw_address = ?", rawAddress).Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get wallet", Err: err}
	}
	return &w, nil
}

// WalletsByVolume returns all wallets ranked by gross volume descending.
// Ties keep insertion order.
func (s *Store) WalletsByVolume() ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := s.db.Order("volume DESC, id ASC").Find(&wallets).Error; err != nil {
		return nil, &StorageError{Op: "rank wallets", Err: err}
	}
	return wallets, nil
}

// InsertTransaction appends one ledger row. A collision on event id is a
// silent no-op: this is the idempotency guarantee for re-runs and for a
// manual sync racing the background cycle.
func (s *Store) InsertTransaction(txn *models.Transaction) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(txn).Error
	if err != nil {
		return &StorageError{Op: "insert transaction", Err: err}
	}
	return nil
}

// Watermark returns the latest stored transaction time for a wallet.
// ok is false when the wallet has never been synced.
func (s *Store) Watermark(rawAddress string) (time.Time, bool, error) {
	var txn models.Transaction
	err := s.db.Where("address = ?", rawAddress).
		Order("time_of_transaction DESC").
		Take(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, &StorageError{Op: "watermark", Err: err}
	}
	return txn.TimeOfTransaction, true, nil
}

// KnownEventIDs returns the set of event ids already stored for a wallet.
func (s *Store) KnownEventIDs(rawAddress string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.Model(&models.Transaction{}).
		Where("address = ?", rawAddress).
		Pluck("event_id", &ids).Error
	if err != nil {
		return nil, &StorageError{Op: "known event ids", Err: err}
	}

	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

// WalletTransactions returns all ledger rows for one wallet.
func (s *Store) WalletTransactions(rawAddress string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.Where("address = ?", rawAddress).Order("id ASC").Find(&txns).Error
	if err != nil {
		return nil, &StorageError{Op: "wallet transactions", Err: err}
	}
	return txns, nil
}

// AllTransactions returns the full ledger.
func (s *Store) AllTransactions() ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := s.db.Order("id ASC").Find(&txns).Error; err != nil {
		return nil, &StorageError{Op: "all transactions", Err: err}
	}
	return txns, nil
}

// SumByDirection sums token amounts per trade direction for one wallet,
// straight from the ledger.
func (s *Store) SumByDirection(rawAddress string) (decimal.Decimal, decimal.Decimal, error) {
	var rows []struct {
		Type  string
		Total decimal.Decimal
	}
	err := s.db.Model(&models.Transaction{}).
		Select("type, SUM(amount_token) AS total").
		Where("address = ?", rawAddress).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, &StorageError{Op: "sum by direction", Err: err}
	}

	buys, sells := decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.Type {
		case models.TradeBuy:
			buys = r.Total
		case models.TradeSell:
			sells = r.Total
		}
	}
	return buys, sells, nil
}

// UpdateWalletVolumes writes a recomputed aggregate set for one wallet.
func (s *Store) UpdateWalletVolumes(rawAddress string, buys, sells, saldo, volume decimal.Decimal) error {
	err := s.db.Model(&models.Wallet{}).
		Where("raw_address = ?", rawAddress).
		Updates(map[string]interface{}{
			"buys_vol":  buys,
			"sell_vol":  sells,
			"saldo_vol": saldo,
			"volume":    volume,
		}).Error
	if err != nil {
		return &StorageError{Op: "update wallet volumes", Err: err}
	}
	return nil
}
