package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docdesigner/internal/render"
)

type renderOpts struct {
	output   string
	scale    float64
	hideGrid bool
}

func newRenderCmd(root *rootOpts) *cobra.Command {
	opts := renderOpts{scale: 1}

	cmd := &cobra.Command{
		Use:   "render <templateId>",
		Short: "Render a PNG preview of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.scale <= 0 {
				return fmt.Errorf("scale must be positive, got %g", opts.scale)
			}
			ctx := cmd.Context()
			a, err := root.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(ctx)

			id := args[0]
			frame, err := a.Editor.Open(ctx, id)
			if err != nil {
				return err
			}
			defer a.Editor.Close(id)

			var buf bytes.Buffer
			if err := render.PNG(&buf, frame, render.Options{Scale: opts.scale, HideGrid: opts.hideGrid}); err != nil {
				return err
			}
			out := opts.output
			if out == "" {
				out = id + ".png"
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			loggerFromContext(ctx).Info("preview written", "template", id, "file", out, "bytes", buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file ("-" for stdout; default <templateId>.png)`)
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "pixel scale of the page")
	cmd.Flags().BoolVar(&opts.hideGrid, "no-grid", false, "omit grid lines")
	return cmd
}
