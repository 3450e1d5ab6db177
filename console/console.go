package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"jetton-tracker/models"
	"jetton-tracker/tracker"
)

// Console is the operator command loop. Every command is a direct call into
// the core contracts; a failing command prints a notice and the loop keeps
// running.
type Console struct {
	resolver   tracker.AddressResolver
	registry   *tracker.Registry
	syncer     *tracker.Syncer
	aggregator *tracker.Aggregator
	store      tracker.Store
	publish    func(ctx context.Context) error
	log        *logrus.Logger
	in         io.Reader
}

func New(
	resolver tracker.AddressResolver,
	registry *tracker.Registry,
	syncer *tracker.Syncer,
	aggregator *tracker.Aggregator,
	store tracker.Store,
	publish func(ctx context.Context) error,
	log *logrus.Logger,
	in io.Reader,
) *Console {
	return &Console{
		resolver:   resolver,
		registry:   registry,
		syncer:     syncer,
		aggregator: aggregator,
		store:      store,
		publish:    publish,
		log:        log,
		in:         in,
	}
}

// Run reads commands until exit or EOF.
func (c *Console) Run(ctx context.Context) {
	color.Yellow("Available commands: add_wallet, fetch_wallets, wallet_transactions, fetch_all_transactions, update_google_sheets, update_tables, delete_wallet, exit")

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		command := strings.TrimSpace(scanner.Text())

		switch command {
		case "":
			continue

		case "add_wallet":
			address, ok := c.prompt(scanner, "Wallet address: ")
			if !ok {
				return
			}
			if err := c.addWallet(ctx, address); err != nil {
				color.Red("Failed to add wallet: %v", err)
				c.log.Errorf("add wallet %s: %v", address, err)
			}

		case "fetch_wallets":
			c.printWallets()

		case "wallet_transactions":
			address, ok := c.prompt(scanner, "Wallet address: ")
			if !ok {
				return
			}
			c.printWalletTransactions(ctx, address)

		case "fetch_all_transactions":
			c.printAllTransactions()

		case "update_google_sheets":
			if err := c.publish(ctx); err != nil {
				color.Red("Failed to update Google Sheets: %v", err)
				c.log.Errorf("publish leaderboard: %v", err)
			} else {
				color.Green("Google Sheets updated")
			}

		case "update_tables":
			c.syncer.SyncAll(ctx)
			if err := c.aggregator.RecomputeAll(); err != nil {
				color.Red("Failed to recompute volumes: %v", err)
				c.log.Errorf("recompute wallet volumes: %v", err)
			} else {
				color.Green("Tables updated")
			}

		case "delete_wallet":
			address, ok := c.prompt(scanner, "Wallet address to delete: ")
			if !ok {
				return
			}
			if err := c.registry.RemoveWallet(ctx, address); err != nil {
				color.Red("Failed to delete wallet: %v", err)
				c.log.Errorf("delete wallet %s: %v", address, err)
			}

		case "exit":
			return

		default:
			fmt.Println("Unknown command")
		}
	}
}

// addWallet registers the wallet, ingests its history and refreshes its
// aggregates in one go, so a freshly added wallet shows up with data.
func (c *Console) addWallet(ctx context.Context, address string) error {
	rawAddress, err := c.registry.AddWallet(ctx, address)
	if err != nil {
		return err
	}
	if err := c.syncer.SyncWallet(ctx, address); err != nil {
		return err
	}
	return c.aggregator.RecomputeWallet(rawAddress)
}

func (c *Console) printWallets() {
	wallets, err := c.store.Wallets()
	if err != nil {
		color.Red("Failed to list wallets: %v", err)
		c.log.Errorf("list wallets: %v", err)
		return
	}
	for _, w := range wallets {
		fmt.Printf("%s (%s) volume=%s buys=%s sells=%s saldo=%s\n",
			w.Address, w.RawAddress, w.Volume, w.BuysVol, w.SellVol, w.SaldoVol)
	}
}

func (c *Console) printWalletTransactions(ctx context.Context, address string) {
	rawAddress, err := c.resolver.ResolveAddress(ctx, address)
	if err != nil {
		color.Red("Failed to resolve address: %v", err)
		c.log.Errorf("resolve %s: %v", address, err)
		return
	}

	txns, err := c.store.WalletTransactions(rawAddress)
	if err != nil {
		color.Red("Failed to list transactions: %v", err)
		c.log.Errorf("wallet transactions %s: %v", rawAddress, err)
		return
	}
	for _, t := range txns {
		printTransaction(t)
	}
}

func (c *Console) printAllTransactions() {
	txns, err := c.store.AllTransactions()
	if err != nil {
		color.Red("Failed to list transactions: %v", err)
		c.log.Errorf("all transactions: %v", err)
		return
	}
	for _, t := range txns {
		printTransaction(t)
	}
}

func printTransaction(t models.Transaction) {
	fmt.Printf("Event ID: %s\n", t.EventID)
	fmt.Printf("Address: %s\n", t.Address)
	fmt.Printf("Type: %s\n", t.Type)
	fmt.Printf("Amount Token: %s\n", t.AmountToken)
	fmt.Printf("Amount TON: %s\n", t.AmountTon)
	fmt.Printf("Time of Transaction: %s\n", t.TimeOfTransaction.Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("-", 40))
}

func (c *Console) prompt(scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
