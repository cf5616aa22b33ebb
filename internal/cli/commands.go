package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"movie-explorer/internal/app"
	"movie-explorer/internal/engine"
	"movie-explorer/internal/export"
	"movie-explorer/internal/models"
	"movie-explorer/internal/outwriter"
)

// criteriaFlags overlays command-line filter values on the default criteria.
type criteriaFlags struct {
	minScore  float64
	minOscars int
	from      string
	to        string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.minScore, "min-score", 0, "minimum Metacritic score (default: smallest score option)")
	cmd.Flags().IntVar(&f.minOscars, "min-oscars", 0, "minimum Oscars won (default: smallest option)")
	cmd.Flags().StringVar(&f.from, "from", "", "release date range start, YYYY-MM-DD (default: earliest release)")
	cmd.Flags().StringVar(&f.to, "to", "", "release date range end, YYYY-MM-DD (default: latest release)")
}

func (f *criteriaFlags) apply(cmd *cobra.Command, defaults models.FilterCriteria) (models.FilterCriteria, error) {
	c := defaults
	if cmd.Flags().Changed("min-score") {
		c.MinMetacriticScore = f.minScore
	}
	if cmd.Flags().Changed("min-oscars") {
		c.MinOscarsWon = f.minOscars
	}
	if f.from != "" {
		d, err := time.Parse(engine.DateLayout, f.from)
		if err != nil {
			return c, fmt.Errorf("invalid --from %q, expected YYYY-MM-DD", f.from)
		}
		c.DateStart = d
	}
	if f.to != "" {
		d, err := time.Parse(engine.DateLayout, f.to)
		if err != nil {
			return c, fmt.Errorf("invalid --to %q, expected YYYY-MM-DD", f.to)
		}
		c.DateEnd = d
	}
	return c, nil
}

func outputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", string(outwriter.TableOut), "output format: table or json")
}

func newOptionsCmd(rt *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the legal values of each filter control",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outwriter.ParseFormat(output)
			if err != nil {
				return err
			}
			explorer, err := rt.explorer(cmd.Context())
			if err != nil {
				return err
			}
			return rt.writer(cmd.OutOrStdout(), format).WriteOptions(explorer.Options(), explorer.DefaultCriteria())
		},
	}
	outputFlag(cmd, &output)
	return cmd
}

func newViewsCmd(rt *runtime) *cobra.Command {
	var (
		output string
		flags  criteriaFlags
	)

	cmd := &cobra.Command{
		Use:   "views",
		Short: "Compute the score series and the Oscars distribution",
		Long: `Compute both views for one set of filter criteria. Unset filters take
their default value: the smallest score and Oscars option and the full
release date range.

Examples:
  explorer views --min-score 90
  explorer views --min-oscars 3 --from 1990-01-01 --to 2009-12-31 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outwriter.ParseFormat(output)
			if err != nil {
				return err
			}
			explorer, err := rt.explorer(cmd.Context())
			if err != nil {
				return err
			}
			criteria, err := flags.apply(cmd, explorer.DefaultCriteria())
			if err != nil {
				return err
			}
			views, err := explorer.Views(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return rt.writer(cmd.OutOrStdout(), format).WriteViews(criteria, views)
		},
	}
	flags.register(cmd)
	outputFlag(cmd, &output)
	return cmd
}

func newCheckCmd(rt *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the dataset and report rejected rows",
		Long:  `Check reads and normalizes the configured dataset and prints how many rows were accepted, how many were rejected and why. It fails when no row is usable.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outwriter.ParseFormat(output)
			if err != nil {
				return err
			}
			_, report, loadErr := app.LoadCatalog(cmd.Context(), rt.cfg, rt.logger, rt.metrics)
			if report != nil {
				if err := rt.writer(cmd.OutOrStdout(), format).WriteReport(report); err != nil {
					return err
				}
			}
			return loadErr
		},
	}
	outputFlag(cmd, &output)
	return cmd
}

func newExportCmd(rt *runtime) *cobra.Command {
	var (
		dir   string
		flags criteriaFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write both views to Parquet files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			explorer, err := rt.explorer(cmd.Context())
			if err != nil {
				return err
			}
			criteria, err := flags.apply(cmd, explorer.DefaultCriteria())
			if err != nil {
				return err
			}
			views, err := explorer.Views(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			paths, err := export.WriteViews(views, dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), "wrote", p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	flags.register(cmd)
	return cmd
}

// isInvalidCriteria reports whether err only rejects the criteria, as opposed
// to a failure of the explorer itself.
func isInvalidCriteria(err error) bool {
	var invalid *models.InvalidCriteriaError
	return errors.As(err, &invalid)
}
