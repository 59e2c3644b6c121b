package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subforge/internal/backups"
)

func newBackupsCommand(ctx *commandContext) *cobra.Command {
	backupsCmd := &cobra.Command{
		Use:   "backups",
		Short: "Inspect and manage autosave copies",
	}
	backupsCmd.AddCommand(newBackupsListCommand(ctx))
	backupsCmd.AddCommand(newBackupsPruneCommand(ctx))
	backupsCmd.AddCommand(newBackupsRestoreCommand(ctx))
	backupsCmd.AddCommand(newBackupsCheckCommand(ctx))
	return backupsCmd
}

func withCatalog(ctx *commandContext, fn func(*backups.Catalog) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	catalog, err := backups.Open(cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()
	return fn(catalog)
}

// scriptKey turns a script argument into the path the catalogue stores.
func scriptKey(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	return filepath.Abs(args[0])
}

func newBackupsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [script]",
		Short: "List autosave copies, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := scriptKey(args)
			if err != nil {
				return err
			}
			return withCatalog(ctx, func(catalog *backups.Catalog) error {
				list, err := catalog.List(cmd.Context(), script)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No backups recorded")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, b := range list {
					rows = append(rows, []string{
						strconv.FormatInt(b.ID, 10),
						b.CreatedAt.Local().Format(time.DateTime),
						b.ScriptPath,
						filepath.Base(b.BackupPath),
						strconv.FormatInt(b.SizeBytes, 10),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Created", "Script", "Backup", "Bytes"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newBackupsPruneCommand(ctx *commandContext) *cobra.Command {
	var retain int
	cmd := &cobra.Command{
		Use:   "prune [script]",
		Short: "Delete all but the newest autosave copies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := scriptKey(args)
			if err != nil {
				return err
			}
			keep := retain
			if !cmd.Flags().Changed("retain") {
				keep = ctx.configValue().Autosave.Retain
			}
			if keep < 0 {
				return errors.New("--retain must not be negative")
			}
			return withCatalog(ctx, func(catalog *backups.Catalog) error {
				removed, err := catalog.Prune(cmd.Context(), script, keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d backups (kept %d per script)\n", len(removed), keep)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&retain, "retain", 0, "Backups to keep per script (defaults to autosave.retain)")
	return cmd
}

func newBackupsRestoreCommand(ctx *commandContext) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "restore <script>",
		Short: "Restore the newest autosave copy of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := scriptKey(args)
			if err != nil {
				return err
			}
			dest := target
			if dest == "" {
				dest = script
			}
			return withCatalog(ctx, func(catalog *backups.Catalog) error {
				latest, ok, err := catalog.Latest(cmd.Context(), script)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no backups recorded for %s", script)
				}
				if err := backups.Restore(latest, dest); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", dest, filepath.Base(latest.BackupPath))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "Write the restored script here instead of over the original")
	return cmd
}

func newBackupsCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the backup catalogue and the files it lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(ctx, func(catalog *backups.Catalog) error {
				health, err := catalog.Check(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				writeSection(out, "Backup catalogue")
				fmt.Fprintf(out, "Database:  %s\n", health.DBPath)
				fmt.Fprintf(out, "Integrity: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Scripts:   %d\n", health.Scripts)
				fmt.Fprintf(out, "Backups:   %d\n", health.Backups)
				for _, missing := range health.MissingFiles {
					fmt.Fprintf(out, "Missing:   %s\n", missing)
				}
				if !health.IntegrityCheck || len(health.MissingFiles) > 0 {
					return errors.New("backup catalogue has problems")
				}
				return nil
			})
		},
	}
}
