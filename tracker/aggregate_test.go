package tracker_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jetton-tracker/models"
	"jetton-tracker/tracker"
)

func insertLedgerRow(t *testing.T, st tracker.Store, eventID, raw, tradeType, amountToken string, ts time.Time) {
	t.Helper()
	err := st.InsertTransaction(&models.Transaction{
		EventID:           eventID,
		Address:           raw,
		Type:              tradeType,
		AmountToken:       decimal.RequireFromString(amountToken),
		AmountTon:         decimal.RequireFromString("1"),
		TimeOfTransaction: ts,
	})
	if err != nil {
		t.Fatalf("insert %s: %v", eventID, err)
	}
}

func TestRecomputeWalletInvariants(t *testing.T) {
	st := newTestStore(t)
	if err := st.AddWallet("wallet-one", testRaw); err != nil {
		t.Fatalf("add wallet: %v", err)
	}

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, tracker.LocalOffset)
	insertLedgerRow(t, st, "ev-1", testRaw, models.TradeBuy, "340", base)
	insertLedgerRow(t, st, "ev-2", testRaw, models.TradeBuy, "60.5", base.Add(time.Minute))
	insertLedgerRow(t, st, "ev-3", testRaw, models.TradeSell, "100.5", base.Add(2*time.Minute))

	aggregator := tracker.NewAggregator(st, newTestLogger())
	if err := aggregator.RecomputeWallet(testRaw); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	w, err := st.WalletByRaw(testRaw)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if w == nil {
		t.Fatal("wallet missing")
	}

	wantBuys := decimal.RequireFromString("400.5")
	wantSells := decimal.RequireFromString("100.5")
	if !w.BuysVol.Equal(wantBuys) {
		t.Errorf("expected buys %s, got %s", wantBuys, w.BuysVol)
	}
	if !w.SellVol.Equal(wantSells) {
		t.Errorf("expected sells %s, got %s", wantSells, w.SellVol)
	}
	if !w.SaldoVol.Equal(w.BuysVol.Sub(w.SellVol)) {
		t.Errorf("saldo %s is not buys - sells", w.SaldoVol)
	}
	if !w.Volume.Equal(w.BuysVol.Add(w.SellVol)) {
		t.Errorf("volume %s is not buys + sells", w.Volume)
	}
}

func TestRecomputeIsFullNotIncremental(t *testing.T) {
	st := newTestStore(t)
	if err := st.AddWallet("wallet-one", testRaw); err != nil {
		t.Fatalf("add wallet: %v", err)
	}

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, tracker.LocalOffset)
	insertLedgerRow(t, st, "ev-1", testRaw, models.TradeBuy, "100", base)

	aggregator := tracker.NewAggregator(st, newTestLogger())
	// Recomputing repeatedly must not accumulate.
	for i := 0; i < 3; i++ {
		if err := aggregator.RecomputeWallet(testRaw); err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
	}

	w, err := st.WalletByRaw(testRaw)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !w.Volume.Equal(decimal.RequireFromString("100")) {
		t.Errorf("expected volume 100 after repeated recomputes, got %s", w.Volume)
	}
}

func TestRecomputeAllCoversEveryWallet(t *testing.T) {
	st := newTestStore(t)
	if err := st.AddWallet("wallet-one", "0:aaa"); err != nil {
		t.Fatalf("add wallet: %v", err)
	}
	if err := st.AddWallet("wallet-two", "0:bbb"); err != nil {
		t.Fatalf("add wallet: %v", err)
	}

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, tracker.LocalOffset)
	insertLedgerRow(t, st, "ev-1", "0:aaa", models.TradeBuy, "10", base)
	insertLedgerRow(t, st, "ev-2", "0:bbb", models.TradeSell, "7", base)

	aggregator := tracker.NewAggregator(st, newTestLogger())
	if err := aggregator.RecomputeAll(); err != nil {
		t.Fatalf("recompute all: %v", err)
	}

	wallets, err := st.Wallets()
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	for _, w := range wallets {
		if !w.Volume.Equal(w.BuysVol.Add(w.SellVol)) {
			t.Errorf("wallet %s: volume %s is not buys + sells", w.RawAddress, w.Volume)
		}
		if !w.SaldoVol.Equal(w.BuysVol.Sub(w.SellVol)) {
			t.Errorf("wallet %s: saldo %s is not buys - sells", w.RawAddress, w.SaldoVol)
		}
	}
}
