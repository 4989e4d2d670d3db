package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eshop/config"
	"eshop/database/seeders"
	"eshop/pkg/database"
)

// eshop seed — run every registered database seeder.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all registered database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if err := database.Connect(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = database.Disconnect(ctx)
		}()

		fmt.Println("Seeding database…")
		return seeders.RunAll(cmd.Context(), database.DB())
	},
}
