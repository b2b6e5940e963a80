// Command seed_products fills an empty shop database with sample gift
// boxes. It reads the same DB_* variables as the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"belekbox/internal/config"
	"belekbox/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type sampleProduct struct {
	name        string
	description string
	price       int64
	sortOrder   int
}

var samples = []sampleProduct{
	{"New Year box", "Tangerines, chocolate, a candle and a hand-written card", 2500, 0},
	{"Tea ceremony box", "Three Kyrgyz herbal teas, honey and a ceramic cup", 1800, 1},
	{"Sweet mini box", "Chocolate bars and dried fruit in a kraft box", 950, 2},
	{"Spa box", "Bath salt, soap, a towel and aroma oil", 3200, 3},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	dbConfig := config.DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", "postgres"),
		Database:        getEnv("DB_NAME", "belekbox"),
		MaxConnections:  2,
		MinConnections:  1,
		MaxConnLifetime: 60,
		AutoMigrate:     true,
	}

	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		fmt.Printf("Database already has %d products, nothing to do\n", count)
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range samples {
		batch.Queue(
			"INSERT INTO products (name, description, price, sort_order) VALUES ($1, $2, $3, $4)",
			p.name, p.description, p.price, p.sortOrder,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for _, p := range samples {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert %s: %w", p.name, err)
		}
		fmt.Printf("  - %s (%d som)\n", p.name, p.price)
	}

	fmt.Printf("\nSeeded %d products\n", len(samples))
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
