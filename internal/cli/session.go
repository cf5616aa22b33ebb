package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"movie-explorer/internal/engine"
	"movie-explorer/internal/models"
	"movie-explorer/internal/outwriter"
	"movie-explorer/internal/services"
)

const sessionHelp = `commands:
  score N                       minimum Metacritic score
  oscars N                      minimum Oscars won
  dates YYYY-MM-DD YYYY-MM-DD   release date range
  reset                         back to the default criteria
  show                          print the current views
  help                          this text
  quit                          leave the session`

func newSessionCmd(rt *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Change filters interactively, one command per line",
		Long:  "Session keeps a filter state and recomputes both views after every change.\nA rejected change leaves the previous views in place.\n\n" + sessionHelp,
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
			session, err := services.NewSession(cmd.Context(), explorer)
			if err != nil {
				return err
			}
			return runSession(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout(), rt.writer(cmd.OutOrStdout(), format))
		},
	}
	outputFlag(cmd, &output)
	return cmd
}

// sessionCommand turns the fields of one non-empty input line into a
// criteria change.
func sessionCommand(fields []string) (func(*models.FilterCriteria), error) {
	switch strings.ToLower(fields[0]) {
	case "score":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: score N")
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q", fields[1])
		}
		return func(c *models.FilterCriteria) { c.MinMetacriticScore = v }, nil

	case "oscars":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: oscars N")
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid oscars %q", fields[1])
		}
		return func(c *models.FilterCriteria) { c.MinOscarsWon = v }, nil

	case "dates":
		if len(fields) != 3 {
			return nil, fmt.Errorf("usage: dates YYYY-MM-DD YYYY-MM-DD")
		}
		start, err := time.Parse(engine.DateLayout, fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q", fields[1])
		}
		end, err := time.Parse(engine.DateLayout, fields[2])
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q", fields[2])
		}
		return func(c *models.FilterCriteria) {
			c.DateStart = start
			c.DateEnd = end
		}, nil

	default:
		return nil, fmt.Errorf("unknown command %q, type help", fields[0])
	}
}

func runSession(ctx context.Context, session *services.Session, in io.Reader, out io.Writer, w *outwriter.Writer) error {
	if err := w.WriteViews(session.Criteria(), session.Views()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		if _, err := fmt.Fprint(out, "> "); err != nil {
			return err
		}
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return nil
		case "help":
			_, _ = fmt.Fprintln(out, sessionHelp)
			continue
		case "show":
			if err := w.WriteViews(session.Criteria(), session.Views()); err != nil {
				return err
			}
			continue
		case "reset":
			if _, err := session.Reset(ctx); err != nil {
				return err
			}
			if err := w.WriteViews(session.Criteria(), session.Views()); err != nil {
				return err
			}
			continue
		}

		change, err := sessionCommand(fields)
		if err != nil {
			_, _ = fmt.Fprintln(out, "error:", err)
			continue
		}

		if _, err := session.Update(ctx, change); err != nil {
			if !isInvalidCriteria(err) {
				return err
			}
			_, _ = fmt.Fprintln(out, "rejected:", err, "(keeping previous views)")
			continue
		}
		if err := w.WriteViews(session.Criteria(), session.Views()); err != nil {
			return err
		}
	}
}
