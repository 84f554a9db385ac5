package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/restpipe/auth"
	"github.com/jonwraymond/restpipe/client"
	"github.com/jonwraymond/restpipe/health"
)

// ErrUnhealthy is returned by status when any check is unhealthy.
var ErrUnhealthy = errors.New("backend unhealthy")

// StatusOptions holds options for the status command.
type StatusOptions struct {
	ProbePath string
}

// NewStatusCommand creates the status command.
func NewStatusCommand(global *GlobalOptions) *cobra.Command {
	opts := &StatusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report backend reachability and session state",
		Long: `Probes the backend and inspects the stored session, then prints a JSON
health report. Exits non-zero when any check is unhealthy; an expired or
missing session only degrades the report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, global, func(ctx context.Context, s *session) error {
				return runStatus(ctx, s.client, s.auth, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.ProbePath, "probe", "/health", "Path requested to probe the backend")

	return cmd
}

func runStatus(ctx context.Context, c *client.Client, svc *auth.Service, opts *StatusOptions, out io.Writer) error {
	agg := health.NewAggregator()
	agg.Register("backend", client.NewBackendChecker(c, opts.ProbePath))
	agg.Register("session", auth.NewSessionChecker(svc))

	report := agg.Report(ctx)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if report.Status == health.StatusUnhealthy {
		return ErrUnhealthy
	}
	return nil
}
