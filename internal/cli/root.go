package cli

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/drblury/catalogflow"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type rootOptions struct {
	configFile string
	url        string
	user       string
	timeout    time.Duration
	verbose    bool
	noColor    bool
}

// NewRootCommand creates the catalogctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Register and inspect records of a data catalog",
		Long: `catalogctl talks to the same catalog service as the catalogflow wrappers.
It infers data source metadata from Go source files, registers single records,
reads them back and decodes registration events written by the io sink.

Settings are read from ` + defaultConfigPath() + `, CATALOG_* environment
variables and the flags below, later sources winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default "+defaultConfigPath()+")")
	flags.StringVar(&opts.url, "url", "", "catalog base URL (default "+catalogflow.DefaultConfig().URL+")")
	flags.StringVar(&opts.user, "user", "", "value of the X-User header (default "+catalogflow.DefaultConfig().User+")")
	flags.DurationVar(&opts.timeout, "timeout", 0, "timeout of each catalog request (default 10s)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every catalog request")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newInferCommand())
	rootCmd.AddCommand(newRegisterCommand(opts))
	rootCmd.AddCommand(newGetCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newSinksCommand())
	rootCmd.AddCommand(newEventsCommand())

	return rootCmd
}

// Execute runs catalogctl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// newClient builds a catalog client from the merged configuration. Logs go to
// the command's error stream so stdout stays machine readable.
func (o *rootOptions) newClient(cmd *cobra.Command) (*catalogflow.Client, error) {
	conf, err := loadConfig(o.configFile, cmd)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	logger := catalogflow.NewSlogServiceLogger(slog.New(handler))

	return catalogflow.NewClient(conf, logger, catalogflow.ClientDependencies{})
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printFields(cmd.OutOrStdout(),
				"catalogctl version", Version,
				"Git commit", GitCommit,
				"Build date", BuildDate,
				"Go version", runtime.Version(),
			)
		},
	}
}
