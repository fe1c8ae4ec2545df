package votecli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/langvote/internal/client"
	"github.com/okian/langvote/internal/domain/validation"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newSubmitCmd(a *app) *cobra.Command {
	var (
		name, email, language, reason string
		showResults                   bool
	)

	cmd := cobra.Command{
		Use:   "submit",
		Short: "Submit or update your vote",
		Long: "Submit a vote. Fields not given as flags are taken from your last " +
			"successful vote. Voting again with the same email updates the vote.",
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s := a.session(client.WithRefreshDelay(0))

			flags := c.Flags()
			for field, value := range map[string]string{
				validation.FieldName:     name,
				validation.FieldEmail:    email,
				validation.FieldLanguage: language,
				validation.FieldReason:   reason,
			} {
				if flags.Changed(field) {
					s.Form.SetField(field, value)
				}
			}

			resp, err := s.Submit(c.Context())
			if errors.Is(err, client.ErrInvalidForm) {
				msgs := make([]string, 0, len(s.Form.FieldErrors))
				for _, fe := range s.Form.FieldErrors {
					msgs = append(msgs, fmt.Sprintf("--%s: %s", fe.Field, fe.Message))
				}
				return fmt.Errorf("%w\n  %s", err, strings.Join(msgs, "\n  "))
			}
			if err != nil {
				return errors.New(s.Form.Error)
			}
			a.println(a.renderer.Confirmation(resp))

			s.Wait()
			if showResults {
				a.println("")
				a.println(a.renderer.Results(s.Results.View()))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, validation.FieldName, "", "your name")
	f.StringVar(&email, validation.FieldEmail, "", "your email; one vote per email")
	f.StringVar(&language, validation.FieldLanguage, "", "language key, see 'vote languages'")
	f.StringVar(&reason, validation.FieldReason, "", "why you picked it")
	f.BoolVar(&showResults, "show-results", false, "print the results after voting")

	return &cmd
}

func newResultsCmd(a *app) *cobra.Command {
	cmd := cobra.Command{
		Use:   "results",
		Short: "Show the current tally and every submission",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			s := a.session()
			if err := s.Refresh(c.Context()); err != nil {
				return fmt.Errorf("fetch results: %w", err)
			}
			a.println(a.renderer.Results(s.Results.View()))
			return nil
		},
	}
	return &cmd
}

func newLanguagesCmd(a *app) *cobra.Command {
	cmd := cobra.Command{
		Use:   "languages",
		Short: "List the languages you can vote for",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			a.println(a.renderer.Languages())
		},
	}
	return &cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	cmd := cobra.Command{
		Use:   "whoami",
		Short: "Show the email of your last vote",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			email, err := a.local.UserEmail()
			if err != nil {
				return err
			}
			if email == "" {
				a.println("You have not voted from this machine yet.")
				return nil
			}
			a.println(email)
			return nil
		},
	}
	return &cmd
}

func newForgetCmd(a *app) *cobra.Command {
	cmd := cobra.Command{
		Use:   "forget",
		Short: "Forget your last vote on this machine (the server keeps it)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			had := a.local.HasSubmitted()
			if err := a.local.Clear(); err != nil {
				return err
			}
			if !had {
				a.println("No saved vote to forget.")
				return nil
			}
			a.println("Forgot the saved vote.")
			return nil
		},
	}
	return &cmd
}
