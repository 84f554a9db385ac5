// Package commands implements the restpipe command line.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/restpipe/auth"
	"github.com/jonwraymond/restpipe/client"
	"github.com/jonwraymond/restpipe/config"
)

// GlobalOptions are flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand builds the restpipe command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	root := &cobra.Command{
		Use:   "restpipe",
		Short: "Call a REST backend with managed bearer credentials",
		Long: `restpipe issues authenticated requests against a REST backend.

Credentials from "restpipe login" are kept in the configured token storage
and refreshed automatically when the backend answers 401. Settings come from
defaults, an optional YAML file and RESTPIPE_ environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log requests at debug level to stderr")

	root.AddCommand(
		NewGetCommand(opts),
		NewLoginCommand(opts),
		NewLogoutCommand(opts),
		NewStatusCommand(opts),
	)
	return root
}

// session bundles what a command needs to talk to the backend.
type session struct {
	client *client.Client
	auth   *auth.Service
	built  *config.Built
}

func (s *session) Close(ctx context.Context) error {
	return s.built.Close(ctx)
}

func openSession(ctx context.Context, opts *GlobalOptions) (*session, error) {
	cfg, err := config.Load(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.Telemetry.Log.Enabled = true
		cfg.Telemetry.Log.Level = "debug"
	}

	built, err := cfg.Build(ctx)
	if err != nil {
		return nil, err
	}

	c, err := client.New(built.Client)
	if err != nil {
		_ = built.Close(ctx)
		return nil, err
	}
	svc, err := auth.NewService(c)
	if err != nil {
		_ = built.Close(ctx)
		return nil, err
	}
	return &session{client: c, auth: svc, built: built}, nil
}

// withSession runs fn with an open session and closes it afterwards.
func withSession(cmd *cobra.Command, opts *GlobalOptions, fn func(context.Context, *session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()
	return fn(ctx, s)
}
