package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-userforms/internal/config"
	"github.com/goliatone/go-userforms/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the userforms CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "userforms",
		Short: "Schema driven registration, login and password reset forms",
		Long: `userforms renders registration, login and password reset forms from one
field schema, validates submissions and delegates accounts to a host platform.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.String("schema", "", "registration schema file (YAML or JSON)")
	flags.String("templates-dir", "", "directory overriding the built-in templates")
	flags.String("site-name", "", "site name used in emails")
	flags.String("site-url", "", "public site URL")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newCheckSchemaCmd())
	cmd.AddCommand(newClientCmd("register", "Register an account from the terminal"))
	cmd.AddCommand(newClientCmd("login", "Log in from the terminal"))
	cmd.AddCommand(newClientCmd("forgot", "Request a password reset email from the terminal"))

	return cmd
}

// loadConfig layers the config file, environment and the flags of cmd, and
// initialises the global logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	cfg.Logging.Output = cmd.ErrOrStderr()
	logging.Init(cfg.Logging)
	return cfg, nil
}
