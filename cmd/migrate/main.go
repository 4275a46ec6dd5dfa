package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ignite/kol-metrics/internal/repository"
)

// migrate creates the results schema on the database named by DATABASE_URL.
// With --list it prints the row count per platform instead.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := repository.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer store.Close()
	log.Printf("Connected to database (driver=%s), schema ensured", store.Driver)

	if !listOnly {
		log.Println("Migrations complete")
		return
	}

	rows, err := store.DB.QueryContext(ctx, "SELECT platform, COUNT(*) FROM results GROUP BY platform ORDER BY platform")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()
	total := 0
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-10s %d\n", platform, n)
		total += n
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Total: %d results\n", total)
}
