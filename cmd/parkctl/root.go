package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simp-lee/parkdash/internal/api"
)

const (
	defaultAPIURL  = "http://localhost:3000/api/v1"
	requestTimeout = 30 * time.Second
)

var nowFunc = time.Now

// Output formats.
const (
	outputTable = "table"
	outputYAML  = "yaml"
)

// cli holds the global flags and streams shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	credsPath string
	apiURL    string
	output    string
	noColor   bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "parkctl",
		Short: "Command-line client for the parking API",
		Long: `parkctl signs in to the parking API and lists slots, vehicles,
orders and users as terminal tables.

Sign in once with "parkctl login"; the token is kept in the credentials file
until "parkctl logout" or until it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.output != outputTable && c.output != outputYAML {
				return fmt.Errorf("unknown output format %q (want %s or %s)", c.output, outputTable, outputYAML)
			}
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.credsPath, "credentials", defaultCredentialsPath(), "credentials file")
	flags.StringVar(&c.apiURL, "api-url", os.Getenv("PARKCTL_API_URL"), "API base URL (default from credentials, then "+defaultAPIURL+")")
	flags.StringVarP(&c.output, "output", "o", outputTable, "output format (table, yaml)")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.slotsCmd(),
		c.vehiclesCmd(),
		c.ordersCmd(),
		c.usersCmd(),
	)
	return root
}

// run executes args and returns the process exit code.
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd(in, out, errOut)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(errOut, "Error:", err)
		}
		return 1
	}
	return 0
}

// baseURL picks the API root: flag or env, then the signed-in API, then the
// local default.
func (c *cli) baseURL(creds *credentials) string {
	switch {
	case c.apiURL != "":
		return c.apiURL
	case creds != nil && creds.APIURL != "":
		return creds.APIURL
	default:
		return defaultAPIURL
	}
}

// client returns an API client carrying the stored token.
func (c *cli) client() (*api.Client, *credentials, error) {
	creds, err := loadCredentials(c.credsPath)
	if err != nil {
		return nil, nil, err
	}
	if creds == nil || creds.Token == "" {
		return nil, nil, errors.New(`not signed in; run "parkctl login" first`)
	}
	if creds.expired(nowFunc()) {
		return nil, nil, errors.New(`session expired; run "parkctl login" again`)
	}
	client, err := api.New(api.Options{BaseURL: c.baseURL(creds), Timeout: requestTimeout})
	if err != nil {
		return nil, nil, err
	}
	return client.WithToken(creds.Token), creds, nil
}

// colors reports whether output should be colored: only for a terminal and
// never with --no-color.
func (c *cli) colors() bool {
	if c.noColor || color.NoColor {
		return false
	}
	f, ok := c.out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *cli) success(format string, args ...any) {
	if c.colors() {
		color.New(color.FgGreen).Fprintf(c.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(c.out, format+"\n", args...)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}
