// Package votecli implements the vote command line tool.
package votecli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/langvote/internal/client"
	"github.com/okian/langvote/internal/view"
	"github.com/okian/langvote/pkg/logger"
)

// Environment variables consulted for flag defaults.
const (
	EnvAPIURL    = "LANGVOTE_API_URL"
	EnvStateFile = "LANGVOTE_STATE_FILE"
)

type rootFlags struct {
	apiURL    string
	stateFile string
	timeout   time.Duration
	logLevel  string
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	flags    rootFlags
	api      *client.Client
	local    *client.LocalStore
	renderer *view.Renderer
	out      io.Writer
}

// Execute runs the tool with args (without the program name).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout, renderer: view.New()}

	cmd := cobra.Command{
		Use:           "vote",
		Short:         "Vote for your favourite programming language",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return a.init(stderr)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.apiURL, "api-url", envOr(EnvAPIURL, client.DefaultBaseURL), "voting API base URL")
	pf.StringVar(&a.flags.stateFile, "state-file", os.Getenv(EnvStateFile), "file remembering your last vote (default: user config dir)")
	pf.DurationVar(&a.flags.timeout, "timeout", 10*time.Second, "request timeout")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	cmd.AddCommand(newSubmitCmd(a))
	cmd.AddCommand(newResultsCmd(a))
	cmd.AddCommand(newLanguagesCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newForgetCmd(a))

	return &cmd
}

func (a *app) init(stderr io.Writer) error {
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(a.flags.logLevel); err != nil {
		return err
	}

	path := a.flags.stateFile
	if path == "" {
		p, err := client.DefaultLocalStorePath()
		if err != nil {
			return err
		}
		path = p
	}
	a.local = client.NewLocalStore(path)
	a.api = client.New(a.flags.apiURL, client.WithHTTPClient(newHTTPClient(a.flags.timeout)))
	return nil
}

func (a *app) session(opts ...client.SessionOption) *client.Session {
	opts = append([]client.SessionOption{
		client.WithLocalStore(a.local),
		client.WithSessionLogger(logger.Named("vote")),
	}, opts...)
	return client.NewSession(a.api, opts...)
}

func (a *app) println(s string) {
	_, _ = fmt.Fprintln(a.out, s)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
