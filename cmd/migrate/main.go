package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/shiftledger/shiftledger/internal/clickhouse"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/migrations"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, migrations.PostgresDDL()); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	log.Infow("postgres schema applied")

	store, err := clickhouse.NewClickHouseStore(cfg)
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer store.Close()

	for _, stmt := range migrations.ClickHouseStatements() {
		if err := store.GetConn().Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply clickhouse schema: %w", err)
		}
	}
	log.Infow("clickhouse schema applied")

	return nil
}
