package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/marketskt/marketskt/config"
	"github.com/marketskt/marketskt/pkg/database"
	"github.com/marketskt/marketskt/pkg/migration"
)

// openDB is replaced in tests.
var openDB = func() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect()
}

func withDB(fn func(db *gorm.DB) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

// marketskt migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			n, err := migration.New(db).WithOutput(cmd.OutOrStdout()).Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied.\n", n)
			return nil
		})
	},
}

// marketskt migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return migration.New(db).WithOutput(cmd.OutOrStdout()).Rollback()
		})
	},
}

// marketskt migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			states, err := migration.New(db).Status()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
			for _, st := range states {
				status, batch := "pending", "-"
				if st.Ran {
					status, batch = "ran", fmt.Sprint(st.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", st.Name, status, batch)
			}
			return w.Flush()
		})
	},
}
