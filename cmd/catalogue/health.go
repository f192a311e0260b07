package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the configured store and search cache",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if err := a.store.Ping(ctx); err != nil {
		return fmt.Errorf("%s store: %w", cfg.Store.Backend, err)
	}
	fmt.Fprintf(out, "store (%s): ok\n", cfg.Store.Backend)
	if a.cache != nil {
		if err := a.cache.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		fmt.Fprintln(out, "cache (redis): ok")
	}
	return nil
}
