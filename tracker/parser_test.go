package tracker_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jetton-tracker/models"
	"jetton-tracker/tonapi"
	"jetton-tracker/tracker"
)

func tradeEvent(ts time.Time, description string) *tonapi.Event {
	return &tonapi.Event{
		EventID:   "event-1",
		Timestamp: ts.Unix(),
		Actions: []tonapi.Action{
			{Type: "JettonSwap", SimplePreview: tonapi.SimplePreview{Description: description}},
		},
	}
}

func TestParseTradeDescriptions(t *testing.T) {
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, tracker.LocalOffset)
	ts := time.Date(2024, 5, 10, 12, 30, 0, 0, tracker.LocalOffset)

	cases := []struct {
		name        string
		description string
		wantType    string
		wantToken   string
		wantTon     string
		wantNil     bool
	}{
		{
			name:        "buy when TON is on the left",
			description: "12.5 TON for 340 TOKEN",
			wantType:    models.TradeBuy,
			wantToken:   "340",
			wantTon:     "12.5",
		},
		{
			name:        "sell when TON is on the right",
			description: "340 TOKEN for 12.5 TON",
			wantType:    models.TradeSell,
			wantToken:   "340",
			wantTon:     "12.5",
		},
		{
			name:        "no separator is not a trade",
			description: "swap executed",
			wantNil:     true,
		},
		{
			name:        "empty description is not a trade",
			description: "",
			wantNil:     true,
		},
		{
			name:        "missing amounts are not a trade",
			description: "TON for TOKEN",
			wantNil:     true,
		},
		{
			name:        "amount only on one side is not a trade",
			description: "12.5 TON for TOKEN",
			wantNil:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trade := tracker.ParseTrade(tradeEvent(ts, tc.description), nil, windowStart)

			if tc.wantNil {
				if trade != nil {
					t.Fatalf("expected no trade, got %+v", trade)
				}
				return
			}
			if trade == nil {
				t.Fatal("expected a trade, got nil")
			}
			if trade.Type != tc.wantType {
				t.Errorf("expected type %s, got %s", tc.wantType, trade.Type)
			}
			if !trade.AmountToken.Equal(decimal.RequireFromString(tc.wantToken)) {
				t.Errorf("expected token amount %s, got %s", tc.wantToken, trade.AmountToken)
			}
			if !trade.AmountTon.Equal(decimal.RequireFromString(tc.wantTon)) {
				t.Errorf("expected TON amount %s, got %s", tc.wantTon, trade.AmountTon)
			}
			if !trade.Time.Equal(ts) {
				t.Errorf("expected time %s, got %s", ts, trade.Time)
			}
		})
	}
}

func TestParseTradeWindowStart(t *testing.T) {
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, tracker.LocalOffset)
	before := windowStart.Add(-time.Second)

	trade := tracker.ParseTrade(tradeEvent(before, "12.5 TON for 340 TOKEN"), nil, windowStart)
	if trade != nil {
		t.Fatalf("expected transaction before window start to be rejected, got %+v", trade)
	}

	// Exactly at the window start is accepted (inclusive bound).
	trade = tracker.ParseTrade(tradeEvent(windowStart, "12.5 TON for 340 TOKEN"), nil, windowStart)
	if trade == nil {
		t.Fatal("expected transaction at window start to be accepted")
	}
}

func TestParseTradeWatermark(t *testing.T) {
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, tracker.LocalOffset)
	watermark := time.Date(2024, 5, 10, 12, 0, 0, 0, tracker.LocalOffset)

	// At or before the watermark: rejected regardless of the window.
	for _, ts := range []time.Time{watermark, watermark.Add(-time.Hour)} {
		trade := tracker.ParseTrade(tradeEvent(ts, "12.5 TON for 340 TOKEN"), &watermark, windowStart)
		if trade != nil {
			t.Fatalf("expected event at %s to be rejected by watermark %s", ts, watermark)
		}
	}

	trade := tracker.ParseTrade(tradeEvent(watermark.Add(time.Second), "12.5 TON for 340 TOKEN"), &watermark, windowStart)
	if trade == nil {
		t.Fatal("expected event after the watermark to be accepted")
	}
}

func TestParseTradeWithoutActions(t *testing.T) {
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, tracker.LocalOffset)
	event := &tonapi.Event{
		EventID:   "event-2",
		Timestamp: time.Date(2024, 5, 10, 12, 0, 0, 0, tracker.LocalOffset).Unix(),
	}

	if trade := tracker.ParseTrade(event, nil, windowStart); trade != nil {
		t.Fatalf("expected event without actions to yield no trade, got %+v", trade)
	}
}

func TestParseTradeNormalizesOffset(t *testing.T) {
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, tracker.LocalOffset)
	utc := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	trade := tracker.ParseTrade(tradeEvent(utc, "12.5 TON for 340 TOKEN"), nil, windowStart)
	if trade == nil {
		t.Fatal("expected a trade")
	}

	_, offset := trade.Time.Zone()
	if offset != 3*60*60 {
		t.Errorf("expected UTC+3 offset, got %d", offset)
	}
	if trade.Time.Hour() != 12 {
		t.Errorf("expected 09:00 UTC to normalize to 12:00, got %02d:00", trade.Time.Hour())
	}
}
