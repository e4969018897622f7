// Command marketskt runs the MarketSKT inventory: the HTTP server plus
// operator commands for products, categories, settings and backups.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the schema revisions.
	_ "github.com/marketskt/marketskt/database/migrations"
	"github.com/marketskt/marketskt/internal/app"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "marketskt",
	Short:         "MarketSKT perishable inventory",
	Long:          "MarketSKT tracks stock and expiry dates for a small market. Run the API with serve or manage the inventory directly.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// openApp builds the application context; tests swap it for an in-memory
// one.
var openApp = app.Open

// withApp opens the App for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)

	// Inventory
	rootCmd.AddCommand(productAddCmd)
	rootCmd.AddCommand(productListCmd)
	rootCmd.AddCommand(productUpdateCmd)
	rootCmd.AddCommand(productRemoveCmd)
	rootCmd.AddCommand(categoryAddCmd)
	rootCmd.AddCommand(categoryListCmd)
	rootCmd.AddCommand(categoryRemoveCmd)
	rootCmd.AddCommand(settingsThresholdCmd)
	rootCmd.AddCommand(logsListCmd)
	rootCmd.AddCommand(logsClearCmd)
	rootCmd.AddCommand(reportCmd)

	// Backups
	rootCmd.AddCommand(backupCreateCmd)
	rootCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupListCmd)
}
