package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-userforms/components/accounts"
	"github.com/goliatone/go-userforms/internal/logging"
	"github.com/goliatone/go-userforms/pkg/client"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/renderers/tui"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// newPromptDriver is replaced in tests.
var newPromptDriver = tui.NewSurveyDriver

var clientCommands = map[string]struct {
	op   accounts.Operation
	page render.PageKind
	done string
}{
	"register": {accounts.OpRegister, render.PageRegistration, "Registration complete."},
	"login":    {accounts.OpLogin, render.PageLogin, "Logged in."},
	"forgot":   {accounts.OpRequestReset, render.PageForgotPassword, "Check your email for the reset link."},
}

func newClientCmd(name, short string) *cobra.Command {
	var (
		siteURL  string
		rounds   int
		deadline time.Duration
	)
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, ok := clientCommands[name]
			if !ok {
				return fmt.Errorf("unknown client command %q", name)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if siteURL == "" {
				siteURL = cfg.Site.URL
			}
			schema, err := registrationSchema(cfg.Forms.SchemaPath)
			if err != nil {
				return err
			}
			schemas := accounts.NewOptions(accounts.WithRegistrationSchema(schema)).Schemas

			controller, err := client.New(siteURL,
				client.WithBasePath(cfg.Server.BasePath),
				client.WithSchemas(schemas),
				client.WithTimeout(deadline),
				client.WithLogger(logging.Logger()),
			)
			if err != nil {
				return err
			}
			engine := validation.New(
				validation.WithMinPasswordLength(cfg.Forms.MinPasswordLength),
				validation.WithMessages(cfg.Messages),
			)
			prompter, err := tui.New(
				tui.WithPromptDriver(newPromptDriver(cmd.OutOrStdout())),
				tui.WithEngine(engine),
			)
			if err != nil {
				return err
			}

			page := render.Page{Kind: spec.page, Operation: string(spec.op), Schema: schemaFor(schemas, spec.op)}
			return runClient(cmd.Context(), cmd.OutOrStdout(), controller, prompter, spec.op, page, rounds, spec.done)
		},
	}
	cmd.Flags().StringVar(&siteURL, "url", "", "site URL (default from site.url)")
	cmd.Flags().IntVar(&rounds, "rounds", 3, "submissions to try before giving up")
	cmd.Flags().DurationVar(&deadline, "timeout", client.DefaultTimeout, "per submission timeout")
	return cmd
}

// runClient prompts page, submits the answers and re-prompts with the server
// errors until the submission succeeds or rounds run out.
func runClient(ctx context.Context, out io.Writer, controller *client.Controller, prompter render.Renderer, op accounts.Operation, page render.Page, rounds int, done string) error {
	if rounds < 1 {
		rounds = 1
	}
	options := render.RenderOptions{}
	for round := 0; round < rounds; round++ {
		encoded, err := prompter.Render(ctx, page, options)
		if err != nil {
			return err
		}
		values, err := url.ParseQuery(string(encoded))
		if err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}

		outcome, err := controller.Submit(ctx, op, values)
		if err != nil {
			var respErr *client.ResponseError
			if errors.As(err, &respErr) && respErr.Forbidden() {
				return fmt.Errorf("%s rejected: %s", op, respErr.Message)
			}
			return err
		}
		if outcome.Success {
			fmt.Fprintln(out, done)
			return nil
		}

		fmt.Fprintf(out, "Please correct: %s\n", strings.Join(outcome.Highlight, ", "))
		options = render.RenderOptions{
			Mode:   render.ModeEdit,
			Values: retained(values),
			Errors: outcome.Errors,
		}
	}
	return fmt.Errorf("%s did not succeed after %d attempts", op, rounds)
}

func schemaFor(schemas accounts.Schemas, op accounts.Operation) model.Schema {
	switch op {
	case accounts.OpLogin:
		return schemas.Login
	case accounts.OpRequestReset:
		return schemas.Forgot
	case accounts.OpPerformReset:
		return schemas.Reset
	}
	return schemas.Registration
}

// retained keeps the previous answers as edit mode defaults.
func retained(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for name, list := range values {
		switch len(list) {
		case 0:
		case 1:
			out[name] = list[0]
		default:
			out[name] = append([]string(nil), list...)
		}
	}
	return out
}
