package sheets_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"jetton-tracker/models"
	"jetton-tracker/sheets"
)

func walletRow(display, raw, volume string) models.Wallet {
	vol := decimal.RequireFromString(volume)
	return models.Wallet{
		Address:    display,
		RawAddress: raw,
		Volume:     vol,
		BuysVol:    vol,
		SellVol:    decimal.Zero,
		SaldoVol:   vol,
	}
}

func TestBuildRowsHeaderAndContent(t *testing.T) {
	wallets := []models.Wallet{
		walletRow("whale", "0:aaa", "500"),
		walletRow("minnow", "0:bbb", "10.5"),
	}

	rows := sheets.BuildRows(wallets, "")
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	header := rows[0]
	want := []string{"Place", "address", "volume", "sells", "buys", "trade_balance"}
	for i, col := range want {
		if header[i] != col {
			t.Errorf("header column %d: expected %q, got %v", i, col, header[i])
		}
	}

	if rows[1][0] != "1" || rows[1][1] != "whale" {
		t.Errorf("expected whale in first place, got %v", rows[1])
	}
	if rows[1][2] != 500.0 {
		t.Errorf("expected volume 500, got %v", rows[1][2])
	}
	if rows[2][0] != "2" || rows[2][1] != "minnow" {
		t.Errorf("expected minnow in second place, got %v", rows[2])
	}
}

func TestBuildRowsExcludesJettonWallet(t *testing.T) {
	wallets := []models.Wallet{
		walletRow("whale", "0:aaa", "500"),
		walletRow("the token itself", "0:jetton", "9999"),
		walletRow("minnow", "0:bbb", "10.5"),
	}

	rows := sheets.BuildRows(wallets, "0:jetton")
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	for _, row := range rows[1:] {
		if row[1] == "the token itself" {
			t.Fatal("jetton wallet must not appear in the leaderboard")
		}
	}

	// The excluded row's place number stays consumed.
	if rows[2][0] != "3" {
		t.Errorf("expected minnow to keep place 3, got %v", rows[2][0])
	}
}

func TestBuildRowsEmptyRegistry(t *testing.T) {
	rows := sheets.BuildRows(nil, "0:jetton")
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
