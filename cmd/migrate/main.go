package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/speaker-registry/internal/config"
	"github.com/ignite/speaker-registry/internal/pkg/distlock"
	"github.com/ignite/speaker-registry/internal/pkg/logger"
	"github.com/ignite/speaker-registry/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config")
	listOnly := flag.Bool("list", false, "print the embedded migrations and exit")
	flag.Parse()

	if *listOnly {
		migrations, err := postgres.Migrations()
		if err != nil {
			fatal(err)
		}
		for _, m := range migrations {
			fmt.Printf("  %03d %s\n", m.Version, m.Name)
		}
		fmt.Printf("Total: %d migrations\n", len(migrations))
		return
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}
	if cfg.Database.URL == "" {
		fatal(fmt.Errorf("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		fatal(fmt.Errorf("connect: %w", err))
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		fatal(fmt.Errorf("ping: %w", err))
	}

	var client *redis.Client
	if cfg.Redis.Enabled() {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
	}

	n, err := postgres.Migrate(ctx, db, distlock.NewLock(client, db, "migrate", 10*time.Minute))
	if err != nil {
		fatal(err)
	}
	logger.Info("migrations complete", "applied", n)
}

func fatal(err error) {
	logger.Error("migrate failed", "error", err)
	os.Exit(1)
}
