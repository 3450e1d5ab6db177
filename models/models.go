package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade directions stored in the transactions table.
const (
	TradeBuy  = "buy"
	TradeSell = "sell"
)

// Wallet represents a tracked wallet with its cached volume aggregates.
// RawAddress is the canonical form returned by the address resolver and is
// the only identity used across the system; Address keeps the form the
// operator typed in, for display. The volume columns are always rewritten
// by a full recompute from the transactions table, never adjusted in place.
type Wallet struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Address    string          `json:"address" gorm:"size:128;not null"`
	RawAddress string          `json:"raw_address" gorm:"uniqueIndex;size:80;not null"`
	Volume     decimal.Decimal `json:"volume" gorm:"type:decimal(30,9);default:0"`
	SellVol    decimal.Decimal `json:"sell_vol" gorm:"type:decimal(30,9);default:0"`
	BuysVol    decimal.Decimal `json:"buys_vol" gorm:"type:decimal(30,9);default:0"`
	SaldoVol   decimal.Decimal `json:"saldo_vol" gorm:"type:decimal(30,9);default:0"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for Wallet
func (Wallet) TableName() string {
	return "wallet"
}

// Transaction is one parsed trade event. EventID is the upstream event
// identifier and carries the unique index that makes inserts idempotent.
// Rows are never updated; they are only deleted when their wallet is removed.
type Transaction struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	EventID           string          `json:"event_id" gorm:"uniqueIndex;size:64;not null"`
	Address           string          `json:"address" gorm:"size:80;index;not null"`
	Type              string          `json:"type" gorm:"size:4;index;not null"`
	AmountToken       decimal.Decimal `json:"amount_token" gorm:"type:decimal(30,9);not null"`
	AmountTon         decimal.Decimal `json:"amount_ton" gorm:"type:decimal(30,9);not null"`
	TimeOfTransaction time.Time       `json:"time_of_transaction" gorm:"index"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for Transaction
func (Transaction) TableName() string {
	return "all_transactions"
}
