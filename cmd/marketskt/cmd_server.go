package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketskt/marketskt/config"
	"github.com/marketskt/marketskt/internal/api"
	"github.com/marketskt/marketskt/internal/app"
	"github.com/marketskt/marketskt/internal/server"
	"github.com/marketskt/marketskt/pkg/schedule"
)

var servePortFlag string

// marketskt serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the JSON API, the /ws change feed and /metrics. When BACKUP_SCHEDULE holds a cron expression a snapshot is archived on that schedule.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			sched, err := scheduleArchives(a)
			if err != nil {
				return err
			}
			if sched != nil {
				sched.Start(ctx)
				defer sched.Wait()
			}

			h := api.New(ctx, a)
			defer h.Close()

			port := servePortFlag
			if port == "" {
				port = config.AppPort()
			}
			return server.Start(ctx, server.Addr(port), h.Handler(), a.Log)
		})
	},
}

// scheduleArchives returns nil when BACKUP_SCHEDULE is empty.
func scheduleArchives(a *app.App) (*schedule.Scheduler, error) {
	expr := config.BackupSchedule()
	if expr == "" {
		return nil, nil
	}
	if err := schedule.ParseCron(expr); err != nil {
		return nil, fmt.Errorf("BACKUP_SCHEDULE: %w", err)
	}
	s := schedule.New(a.Log)
	s.Cron(expr).Name("backup.archive").WithoutOverlapping().Run(func(ctx context.Context) error {
		_, err := a.Archiver.Archive(ctx)
		return err
	})
	return s, nil
}

// marketskt route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range api.RouteTable() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePortFlag, "port", "p", "", "listen port (default APP_PORT)")
}
