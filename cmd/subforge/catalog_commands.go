package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subforge/internal/document"
	"subforge/internal/history"
	"subforge/internal/stylecatalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Share styles between scripts through YAML catalogues",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogExportCommand(ctx))
	catalogCmd.AddCommand(newCatalogImportCommand(ctx))
	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored catalogues",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ctx.configValue().Catalog.Dir
			names, err := stylecatalog.List(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintf(out, "No catalogues in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				c, err := stylecatalog.Load(dir, name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, strconv.Itoa(len(c.Styles))})
			}
			fmt.Fprintln(out, renderTable([]string{"Catalogue", "Styles"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func newCatalogExportCommand(ctx *commandContext) *cobra.Command {
	var styles []string
	cmd := &cobra.Command{
		Use:   "export <script> <catalogue>",
		Short: "Save the styles of a script as a catalogue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadScript(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			c, err := stylecatalog.FromDocument(args[1], doc, styles...)
			if err != nil {
				return err
			}
			path, err := stylecatalog.Save(ctx.configValue().Catalog.Dir, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d styles to %s\n", len(c.Styles), path)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&styles, "style", nil, "Only export these styles (repeatable)")
	return cmd
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	var flags editFlags
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <script> <catalogue>",
		Short: "Copy the styles of a catalogue into a script",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := stylecatalog.Load(ctx.configValue().Catalog.Dir, args[1])
			if err != nil {
				return err
			}
			return runEdit(cmd, ctx, args[0], flags, false, func(s *editSession) error {
				added, replaced, err := c.Apply(s.doc(), overwrite)
				if err != nil {
					return err
				}
				if added+replaced > 0 {
					s.commit(fmt.Sprintf("import styles from %s", c.Name), history.KindStyles, history.NoAmend, document.Handle{})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d styles added, %d replaced\n", added, replaced)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace styles that already exist in the script")
	return cmd
}
