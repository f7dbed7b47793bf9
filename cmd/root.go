package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "auction-engine",
	Short: "Batch-auction DEX off-chain engine",
	Long: `Batch-auction DEX off-chain engine.

Collects open trade intents into periodic auctions, dispatches each
auction to external solvers, scores and ranks their proposed
settlements, and emits the winning settlement on-chain.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Best-effort: a missing .env is normal outside local development.
	_ = godotenv.Load()
}
