package sheets

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"jetton-tracker/models"
)

// Publisher renders the wallet leaderboard to one worksheet of a Google
// spreadsheet. Every publish clears the worksheet and rewrites it from A1,
// so readers only ever see one complete snapshot.
type Publisher struct {
	srv           *sheetsapi.Service
	spreadsheetID string
	worksheet     string
}

// NewPublisher authenticates with a service-account credentials file.
func NewPublisher(ctx context.Context, credentialsFile, spreadsheetID, worksheet string) (*Publisher, error) {
	srv, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Publisher{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// BuildRows renders wallets (already ranked by volume) into sheet rows.
// The tracked jetton's own wallet row is excluded; its place number is still
// consumed so the remaining numbering is stable across publishes.
func BuildRows(wallets []models.Wallet, excludeRaw string) [][]interface{} {
	rows := [][]interface{}{
		{"Place", "address", "volume", "sells", "buys", "trade_balance"},
	}
	for i, w := range wallets {
		if w.RawAddress == excludeRaw {
			continue
		}
		volume, _ := w.Volume.Float64()
		sells, _ := w.SellVol.Float64()
		buys, _ := w.BuysVol.Float64()
		saldo, _ := w.SaldoVol.Float64()
		rows = append(rows, []interface{}{
			strconv.Itoa(i + 1), w.Address, volume, sells, buys, saldo,
		})
	}
	return rows
}

// Publish overwrites the worksheet with the given ranked wallets.
func (p *Publisher) Publish(ctx context.Context, wallets []models.Wallet, excludeRaw string) error {
	_, err := p.srv.Spreadsheets.Values.
		Clear(p.spreadsheetID, p.worksheet, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear worksheet %s: %w", p.worksheet, err)
	}

	vr := &sheetsapi.ValueRange{Values: BuildRows(wallets, excludeRaw)}
	_, err = p.srv.Spreadsheets.Values.
		Update(p.spreadsheetID, p.worksheet+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update worksheet %s: %w", p.worksheet, err)
	}
	return nil
}
