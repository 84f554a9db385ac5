package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/restpipe/auth"
)

// LoginOptions holds options for the login command.
type LoginOptions struct {
	Username string
	Password string
	Data     string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(global *GlobalOptions) *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the returned credentials",
		Example: `  restpipe login -u ada -P "$PASSWORD"

  # Backends with other credential shapes
  restpipe login --data '{"email":"ada@example.com","otp":"123456"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, global, func(ctx context.Context, s *session) error {
				return runLogin(ctx, s.auth, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&opts.Password, "password", "P", "", "Password")
	cmd.Flags().StringVar(&opts.Data, "data", "", "Raw JSON credentials, instead of username and password")

	return cmd
}

func (o *LoginOptions) credentials() (any, error) {
	if o.Data != "" {
		if !json.Valid([]byte(o.Data)) {
			return nil, errors.New("--data is not valid JSON")
		}
		return json.RawMessage(o.Data), nil
	}
	if o.Username == "" || o.Password == "" {
		return nil, errors.New("--username and --password are required unless --data is set")
	}
	return map[string]string{"username": o.Username, "password": o.Password}, nil
}

func runLogin(ctx context.Context, svc *auth.Service, opts *LoginOptions, out io.Writer) error {
	creds, err := opts.credentials()
	if err != nil {
		return err
	}
	if _, err := svc.Login(ctx, creds); err != nil {
		return err
	}

	if id, err := svc.Identity(ctx); err == nil && id.Principal != "" {
		_, err = fmt.Fprintf(out, "Logged in as %s\n", id.Principal)
		return err
	}
	_, err = fmt.Fprintln(out, "Logged in")
	return err
}
