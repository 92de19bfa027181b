package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docdesigner/internal/domain"
	"docdesigner/internal/registry"
)

func newTemplatesCmd(opts *rootOpts) *cobra.Command {
	var docType string

	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"ls"},
		Short:   "List stored templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.DocumentType(docType)
			if docType != "" && !filter.Valid() {
				return fmt.Errorf("unknown document type %q", docType)
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			list, err := a.Templates.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var rows [][]string
			for _, t := range list {
				if docType != "" && t.DocumentType != filter {
					continue
				}
				rows = append(rows, []string{
					t.ID, t.Name, string(t.DocumentType),
					fmt.Sprint(len(t.Components)), t.UpdatedAt.Format("2006-01-02 15:04"),
				})
			}
			if len(rows) == 0 {
				printEmpty(out, "templates")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Name", "Type", "Components", "Updated"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&docType, "type", "", "only list templates of this document type")
	return cmd
}

// newKindsCmd lists the palette without opening the database.
func newKindsCmd(_ *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List component kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			printTitle(out, "Component kinds")
			var rows [][]string
			for _, k := range registry.Default().Kinds() {
				accepts := make([]string, 0, len(k.Accepts))
				for _, a := range k.Accepts {
					accepts = append(accepts, string(a))
				}
				binds := strings.Join(accepts, ",")
				if binds == "" {
					binds = "-"
				}
				rows = append(rows, []string{
					string(k.Type), k.Label, fmt.Sprintf("%.0fx%.0f", k.DefaultWidth, k.DefaultHeight), binds,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Type", "Label", "Size", "Binds"}, rows))
			return nil
		},
	}
}

func newImportCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import template JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				t, err := a.Templates.ImportJSON(cmd.Context(), f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printSuccess(cmd.OutOrStdout(), "imported %s as %s (%s)", path, t.ID, t.Name)
			}
			return nil
		},
	}
}

func newExportCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write every template to a directory as JSON",
		Long:  "Write every template to dir, or to the configured export directory when dir is omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			prog := newProgress(loggerFromContext(ctx))
			dir := a.Config().ExportDir()
			if len(args) == 1 {
				dir = args[0]
			}
			res, err := a.Exports.ExportTo(ctx, dir)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("exported %d templates", len(res.Files)))
			printSuccess(cmd.OutOrStdout(), "%d files in %s", len(res.Files), res.Dir)
			return nil
		},
	}
}
