package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/batchauction/engine/internal/app"
	"github.com/batchauction/engine/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the auction engine",
	Long: `Starts the auction engine, which will:
1. Collect open orders into periodic auctions
2. Dispatch each auction to every allowed solver
3. Encode, score, rank and merge the returning settlement candidates
4. Emit the winning settlement on-chain and report competition metadata`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
