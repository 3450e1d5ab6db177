package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"jetton-tracker/tonapi"
	"jetton-tracker/tracker"
)

// Debug tool: fetch one event by id and show what the parser makes of it.
//
//	go run ./run/test <event_id>
func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}
	apiKey := os.Getenv("TONAPI_KEY")

	if len(os.Args) < 2 {
		log.Fatal("usage: test <event_id>")
	}
	eventID := os.Args[1]

	client := tonapi.NewClient(apiKey, tonapi.NewMemoryCache())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	detail, err := client.EventDetail(ctx, eventID)
	if err != nil {
		log.Fatalf("Error fetching event: %s", err)
	}

	fmt.Println("=== Raw Event Detail ===")
	marshalled, _ := json.MarshalIndent(detail, "", "  ")
	fmt.Println(string(marshalled))

	// Zero watermark and window so the time cut never hides the result.
	trade := tracker.ParseTrade(detail, nil, time.Time{})

	fmt.Println("\n=== Parsed Trade ===")
	if trade == nil {
		fmt.Println("not a tracked trade")
		return
	}
	marshalledTrade, _ := json.MarshalIndent(trade, "", "  ")
	fmt.Println(string(marshalledTrade))
}
