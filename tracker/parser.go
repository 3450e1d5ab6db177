package tracker

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jetton-tracker/models"
	"jetton-tracker/tonapi"
)

// LocalOffset is the fixed offset every stored and compared timestamp uses.
// The deployment is single-timezone; this is a documented simplification,
// not a bug.
var LocalOffset = time.FixedZone("UTC+3", 3*60*60)

// The upstream preview renders a trade as two quantities joined by "for",
// with the native-currency unit on one side. These are the upstream's fixed
// formats for the tracked deployment.
const (
	nativeMarker  = "TON"
	pairSeparator = "for"
)

// First run of digits/decimal point on each side of the separator. Upstream
// amounts carry no thousands separators in this deployment.
var amountPattern = regexp.MustCompile(`[\d.]+`)

// Trade is the structured result of parsing one event's description.
type Trade struct {
	Type        string
	AmountToken decimal.Decimal
	AmountTon   decimal.Decimal
	Time        time.Time
}

// ParseTrade turns one event detail into a Trade, or nil when the event is
// not a trade this system tracks or falls outside the accepted time range.
// nil is the expected case for most event kinds, never an error.
//
// watermark, when present, is an exclusive lower bound (already-stored
// range); windowStart is the inclusive lower bound below which nothing is
// ever accepted. Pure function of its inputs and the constants above.
func ParseTrade(detail *tonapi.Event, watermark *time.Time, windowStart time.Time) *Trade {
	ts := time.Unix(detail.Timestamp, 0).In(LocalOffset)
	if watermark != nil && !ts.After(*watermark) {
		return nil
	}
	if ts.Before(windowStart) {
		return nil
	}

	if len(detail.Actions) == 0 {
		return nil
	}
	description := detail.Actions[0].SimplePreview.Description

	left, right, found := strings.Cut(description, pairSeparator)
	if !found {
		return nil
	}

	leftAmount, okLeft := firstAmount(left)
	rightAmount, okRight := firstAmount(right)
	if !okLeft || !okRight {
		return nil
	}

	trade := &Trade{Time: ts}
	if strings.Contains(left, nativeMarker) {
		// Native spent for token received.
		trade.Type = models.TradeBuy
		trade.AmountTon = leftAmount
		trade.AmountToken = rightAmount
	} else {
		// Token spent for native received.
		trade.Type = models.TradeSell
		trade.AmountToken = leftAmount
		trade.AmountTon = rightAmount
	}
	return trade
}

func firstAmount(s string) (decimal.Decimal, bool) {
	m := amountPattern.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
