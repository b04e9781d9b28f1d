package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-userforms/internal/logging"
	"github.com/goliatone/go-userforms/pkg/render"
)

var renderPages = []render.PageKind{
	render.PageRegistration,
	render.PageLogin,
	render.PageForgotPassword,
	render.PageResetPassword,
	render.PageProfile,
}

func newRenderCmd() *cobra.Command {
	var (
		output string
		key    string
		login  string
	)
	cmd := &cobra.Command{
		Use:       "render <registration|login|forgot-password|reset-password|profile>",
		Short:     "Print the markup of a form",
		Args:      cobra.ExactArgs(1),
		ValidArgs: pageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logging.Logger(), nil)
			if err != nil {
				return err
			}
			markup, err := a.renderPage(cmd, render.PageKind(args[0]), key, login)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}
			_, err = io.WriteString(out, markup)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write markup to file (default stdout)")
	cmd.Flags().StringVar(&key, "key", "", "reset key for the reset-password page")
	cmd.Flags().StringVar(&login, "login", "", "login for the reset-password page")
	return cmd
}

func (a *app) renderPage(cmd *cobra.Command, kind render.PageKind, key, login string) (string, error) {
	ctx := cmd.Context()
	switch kind {
	case render.PageRegistration:
		return a.component.RegistrationForm(ctx)
	case render.PageLogin:
		return a.component.LoginForm(ctx)
	case render.PageForgotPassword:
		return a.component.ForgotPasswordForm(ctx)
	case render.PageResetPassword:
		return a.component.ResetPasswordForm(ctx, url.Values{"key": {key}, "login": {login}})
	case render.PageProfile:
		// The in-memory host starts empty, so the profile is rendered for a
		// throwaway account.
		id, err := a.host.CreateAccount(ctx, "preview@example.com", "preview-password", "preview@example.com")
		if err != nil {
			return "", err
		}
		return a.component.ProfileFields(ctx, id)
	}
	return "", fmt.Errorf("unknown page %q (want one of %s)", kind, strings.Join(pageNames(), ", "))
}

func pageNames() []string {
	names := make([]string, 0, len(renderPages))
	for _, kind := range renderPages {
		names = append(names, string(kind))
	}
	return names
}
