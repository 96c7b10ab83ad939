package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models with recorded metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		models, err := store.Models(ctx)
		if err != nil {
			return err
		}

		for _, modelID := range models {
			count, err := store.Count(ctx, modelID)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d record(s)\n", modelID, count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
