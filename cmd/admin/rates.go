package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/expenseally/backend/internal/infrastructure/fx"
)

var ratesCmd = &cobra.Command{
	Use:   "update-rates",
	Short: "Fetch fresh exchange rates and store them",
	Long: `Update-rates pulls the latest exchange rates from the configured
provider and writes them to the shared rate store, the same way the
scheduled refresh job does. Requires FX to be enabled in config.`,
	RunE: runUpdateRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}

func runUpdateRates(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if !cfg.FX.Enabled {
		return fmt.Errorf("fx is not enabled in configuration")
	}

	ctx := cmd.Context()

	var store fx.RateStore
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis rate store: %w", err)
		}
		store = fx.NewRedisRateStore(client)
	} else {
		return fmt.Errorf("update-rates needs redis so refreshed rates outlive this process")
	}

	service := fx.NewService(cfg.FX, fx.NewHTTPRateProvider(cfg.FX), store, log)
	if err := service.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh rates: %w", err)
	}

	fmt.Printf("Exchange rates refreshed (base %s)\n", cfg.FX.BaseCurrency)
	return nil
}
