package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/restpipe/client"
)

// GetOptions holds options for the get command.
type GetOptions struct {
	Params  []string
	Headers []string
	NoCache bool
	NoAuth  bool
	Raw     bool
}

// NewGetCommand creates the get command.
func NewGetCommand(global *GlobalOptions) *cobra.Command {
	opts := &GetOptions{}

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Send a GET request and print the response body",
		Example: `  # Fetch the current user
  restpipe get /me

  # Query parameters repeat for list values
  restpipe get /items -p page=2 -p tag=a -p tag=b`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, global, func(ctx context.Context, s *session) error {
				return runGet(ctx, s.client, args[0], opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Request header as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&opts.NoAuth, "no-auth", false, "Send the request without credentials")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print the body without JSON indentation")

	return cmd
}

func runGet(ctx context.Context, c *client.Client, path string, opts *GetOptions, out io.Writer) error {
	params, err := parsePairs(opts.Params)
	if err != nil {
		return fmt.Errorf("param: %w", err)
	}
	headers, err := parsePairs(opts.Headers)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}

	reqOpts := []client.RequestOption{client.WithParams(paramValues(params))}
	for k, v := range headers {
		reqOpts = append(reqOpts, client.WithHeader(k, v[len(v)-1]))
	}
	if opts.NoCache {
		reqOpts = append(reqOpts, client.WithCache(false))
	}
	if opts.NoAuth {
		reqOpts = append(reqOpts, client.WithoutAuth())
	}

	resp, err := c.Get(ctx, path, reqOpts...)
	if err != nil {
		return err
	}
	return printBody(out, resp.Body, opts.Raw)
}

// parsePairs splits key=value arguments, collecting repeated keys.
func parsePairs(args []string) (map[string][]string, error) {
	out := make(map[string][]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[k] = append(out[k], v)
	}
	return out, nil
}

func paramValues(pairs map[string][]string) map[string]any {
	params := make(map[string]any, len(pairs))
	for k, v := range pairs {
		if len(v) == 1 {
			params[k] = v[0]
		} else {
			params[k] = v
		}
	}
	return params
}

func printBody(out io.Writer, body []byte, raw bool) error {
	if !raw && json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}
	if _, err := out.Write(body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, err := io.WriteString(out, "\n")
		return err
	}
	return nil
}
