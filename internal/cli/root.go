package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"docdesigner/internal/app"
	"docdesigner/internal/config"
)

var version = "dev"

// rootOpts holds the persistent flags shared by every command.
type rootOpts struct {
	configPath string
	dataDir    string
	verbose    bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOpts{configPath: config.DefaultPath()}

	root := &cobra.Command{
		Use:          "docdesigner",
		Short:        "Design printable business document templates",
		Long:         `docdesigner lays out quotations, invoices, delivery orders and purchase orders on an A4 canvas, binds components to document data keys, and stores the templates in SQLite.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the TOML config file")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "override the data directory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMCPCmd(opts))
	root.AddCommand(newTemplatesCmd(opts))
	root.AddCommand(newKindsCmd(opts))
	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newExportCmd(opts))

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOpts) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	return cfg, nil
}

// openApp builds an App from the config. The caller must Shutdown it.
func (o *rootOpts) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, loggerFromContext(ctx))
}
