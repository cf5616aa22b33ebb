// Package cli implements the explorer command-line shell.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"movie-explorer/internal/app"
	"movie-explorer/internal/config"
	"movie-explorer/internal/outwriter"
	"movie-explorer/internal/services"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

// runtime holds what every subcommand needs once the root pre-run is done.
type runtime struct {
	configFile string
	verbose    bool
	noColor    bool

	cfg     *config.Config
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewRootCmd builds the explorer command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "explorer",
		Short:         "Filter a movie catalog and inspect the derived views",
		Long:          `Explorer loads a movie catalog, derives the filter options and computes the score-over-time and Oscars distribution views for a set of filter criteria.`,
		Version:       app.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configFile, "config", "", "config file (default ./movie-explorer.yaml)")
	config.AddDatasetFlags(flags)
	flags.BoolVarP(&rt.verbose, "verbose", "v", false, "write info and debug logs to stderr")
	flags.BoolVar(&rt.noColor, "no-color", false, "disable colored table output")

	root.AddCommand(
		newOptionsCmd(rt),
		newViewsCmd(rt),
		newCheckCmd(rt),
		newExportCmd(rt),
		newSessionCmd(rt),
	)

	return root
}

// Execute runs the explorer CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		return 1
	}
	return 0
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags(), config.DatasetFlags); err != nil {
		return err
	}

	cfg, err := loader.Load(rt.configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt.cfg = cfg

	rt.logger = logging.NewStructuredLogger("movie-explorer-cli", app.Version, logging.WarnLevel)
	rt.logger.SetOutput(cmd.ErrOrStderr())
	if rt.verbose {
		rt.logger.SetLevel(min(cfg.LogLevel(), logging.InfoLevel))
	}

	// the CLI exposes no metrics endpoint; collectors still back the service timers
	rt.metrics = metrics.NewCollector("movie_explorer", prometheus.NewRegistry())

	return nil
}

func (rt *runtime) explorer(ctx context.Context) (*services.ExplorerService, error) {
	explorer, _, err := app.NewExplorer(ctx, rt.cfg, rt.logger, rt.metrics)
	return explorer, err
}

func (rt *runtime) writer(out io.Writer, format outwriter.Format) *outwriter.Writer {
	return outwriter.New(out, format, !rt.noColor && !color.NoColor)
}
