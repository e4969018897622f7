package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketskt/marketskt/internal/app"
	"github.com/marketskt/marketskt/internal/model"
)

// marketskt category:add <name>
var categoryAddCmd = &cobra.Command{
	Use:   "category:add <name>",
	Short: "Add a category unless one with the same name exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c, added, err := a.Engine.AddCategory(ctx, args[0])
			if err != nil && c.ID == "" {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "Category %q already exists.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s %q\n", c.ID, c.Name)
			return err
		})
	},
}

// marketskt category:list
var categoryListCmd = &cobra.Command{
	Use:   "category:list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, c := range a.Engine.Categories() {
				fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
			}
			return w.Flush()
		})
	},
}

// marketskt category:remove <id>
var categoryRemoveCmd = &cobra.Command{
	Use:   "category:remove <id>",
	Short: "Remove a category; products keep their category name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ok, err := a.Engine.RemoveCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("category %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed category %s.\n", args[0])
			return nil
		})
	},
}

// marketskt settings:threshold [days]
var settingsThresholdCmd = &cobra.Command{
	Use:   "settings:threshold [days]",
	Short: "Show or set the expiry warning window in days",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days := -1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("days must be a whole number >= 0, got %q", args[0])
			}
			days = n
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if days < 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning window: %d days.\n", a.Engine.Settings().WarningThresholdDays)
				return nil
			}
			s, err := a.Engine.UpdateSettings(ctx, model.AppSettings{WarningThresholdDays: days})
			if err != nil && s.ID == 0 {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Warning window set to %d days.\n", s.WarningThresholdDays)
			return err
		})
	},
}

var logsLimitFlag int

// marketskt logs:list
var logsListCmd = &cobra.Command{
	Use:   "logs:list",
	Short: "Show the newest activity log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			logs := a.Engine.Logs()
			if logsLimitFlag > 0 && len(logs) > logsLimitFlag {
				logs = logs[:logsLimitFlag]
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tACTION\tDESCRIPTION")
			for _, l := range logs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.Date.Local().Format("2006-01-02 15:04:05"), l.Action, l.Description)
			}
			return w.Flush()
		})
	},
}

// marketskt logs:clear
var logsClearCmd = &cobra.Command{
	Use:   "logs:clear",
	Short: "Delete every activity log entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Engine.ClearLogs(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logs cleared.")
			return nil
		})
	},
}

// marketskt report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print stock totals and the expired and expiring products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			e := a.Engine
			st := e.Stats()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Date:            %s\n", st.Today)
			fmt.Fprintf(out, "Products:        %d\n", st.TotalProducts)
			fmt.Fprintf(out, "Units in stock:  %d\n", st.TotalStock)
			fmt.Fprintf(out, "Stock value:     %.2f\n", st.TotalValue)
			fmt.Fprintf(out, "Good / warning / expired: %d / %d / %d (window %d days)\n",
				st.Status.Good, st.Status.Warning, st.Status.Expired, st.WarningThresholdDays)

			if byCat := e.ValueByCategory(); len(byCat) > 0 {
				fmt.Fprintln(out, "\nValue by category:")
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, cv := range byCat {
					fmt.Fprintf(w, "  %s\t%.2f\n", cv.Category, cv.Value)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			fmt.Fprintln(out, "\nExpired:")
			if err := printProducts(cmd, e, e.ExpiredProducts()); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nExpiring soon:")
			return printProducts(cmd, e, e.WarningProducts())
		})
	},
}

func init() {
	logsListCmd.Flags().IntVarP(&logsLimitFlag, "limit", "n", 20, "entries to show, 0 for all")
}
