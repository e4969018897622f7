package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marketskt/marketskt/config"
	"github.com/marketskt/marketskt/internal/app"
	"github.com/marketskt/marketskt/internal/backup"
)

var backupFlags struct {
	out     string
	archive bool
	name    string
}

// marketskt backup:create [--out file | --archive]
var backupCreateCmd = &cobra.Command{
	Use:   "backup:create",
	Short: "Write a snapshot of the whole store",
	Long:  "Write a JSON snapshot to --out, to stdout when --out is \"-\", or to the BACKUP_DISK archive with --archive. Without flags the file is named after today in the working directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if backupFlags.archive && backupFlags.out != "" {
			return errors.New("use either --out or --archive")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if backupFlags.archive {
				p, err := a.Archiver.Archive(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived to %s on the %s disk.\n", p, config.BackupDisk())
				return nil
			}

			data, err := a.Codec.Create(ctx)
			if err != nil {
				return err
			}
			out := backupFlags.out
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if out == "" {
				out = backup.ArchiveName(a.Engine.Today())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s (%d bytes).\n", out, len(data))
			return nil
		})
	},
}

// marketskt backup:restore <file> | --archive name
var backupRestoreCmd = &cobra.Command{
	Use:   "backup:restore [file]",
	Short: "Replace the whole store with a snapshot",
	Long:  "Restore a snapshot file, or an archived snapshot with --archive NAME (\"latest\" picks the newest). Invalid snapshots are rejected before anything is cleared.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (backupFlags.name != "") {
			return errors.New("give either a snapshot file or --archive")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if name := backupFlags.name; name != "" {
				if name == "latest" {
					f, ok, err := a.Archiver.Latest(ctx)
					if err != nil {
						return err
					}
					if !ok {
						return errors.New("no archived backups")
					}
					name = path.Base(f.Path)
				}
				if err := a.Archiver.Restore(ctx, name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %s: %d products.\n", name, a.Engine.TotalProducts())
				return nil
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			if err := a.Codec.Restore(ctx, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s: %d products.\n", args[0], a.Engine.TotalProducts())
			return nil
		})
	},
}

// marketskt backup:list
var backupListCmd = &cobra.Command{
	Use:   "backup:list",
	Short: "List archived snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			files, err := a.Archiver.List(ctx)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived backups.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
			for _, f := range files {
				mod := "-"
				if !f.Modified.IsZero() {
					mod = f.Modified.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", path.Base(f.Path), f.Size, mod)
			}
			return w.Flush()
		})
	},
}

func init() {
	backupCreateCmd.Flags().StringVarP(&backupFlags.out, "out", "o", "", "output file, - for stdout")
	backupCreateCmd.Flags().BoolVar(&backupFlags.archive, "archive", false, "store on the backup disk")
	backupRestoreCmd.Flags().StringVar(&backupFlags.name, "archive", "", "archived snapshot name or \"latest\"")
}
