// Package cli implements the adminctl commands and the terminal views they mount.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/erp/adminpanel/internal/application/validation"
	"github.com/erp/adminpanel/internal/infrastructure/config"
	"github.com/erp/adminpanel/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI is the adminctl command tree
type CLI struct {
	rootCmd    *cobra.Command
	app        *App
	configPath string
	logLevel   string
}

// New creates the command tree. Services are built lazily before a
// subcommand runs.
func New() *CLI {
	c := &CLI{}

	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Manage users and products of the admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./adminctl.toml or ~/.config/adminctl/adminctl.toml)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newUsersCmd())
	rootCmd.AddCommand(c.newProductsCmd())
	rootCmd.AddCommand(c.newDashboardCmd())
	return c
}

// Execute runs the command selected by the arguments and releases the
// services afterwards, whether or not the command failed
func (c *CLI) Execute(ctx context.Context) error {
	err := c.rootCmd.ExecuteContext(ctx)
	if c.app != nil {
		closeErr := c.app.Close(context.WithoutCancel(ctx))
		logger.Sync(c.app.Logger)
		c.app = nil
		if err == nil {
			err = closeErr
		}
	}
	return err
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetIO redirects the command streams. Used for testing.
func (c *CLI) SetIO(in io.Reader, out, errOut io.Writer) {
	c.rootCmd.SetIn(in)
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

func (c *CLI) init(cmd *cobra.Command) error {
	if c.app != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}
	log = log.With(zap.String("env", cfg.App.Env))

	app, err := NewApp(cmd.Context(), cfg, log, NewTerminalNotifier(cmd.ErrOrStderr(), log))
	if err != nil {
		return fmt.Errorf("starting adminctl: %w", err)
	}
	c.app = app
	log.Debug("adminctl started", zap.String("command", cmd.CommandPath()), zap.String("api", cfg.API.BaseURL))
	return nil
}

// pageSize resolves the --page-size flag against the configured default
func (c *CLI) pageSize(flag int) int {
	if flag > 0 {
		return flag
	}
	return c.app.Config.UI.PageSize
}

// reportValidation prints every field message of a validation failure
func reportValidation(w io.Writer, err error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return
	}
	for _, name := range verr.Fields.Names() {
		fmt.Fprintf(w, "  %s: %s\n", name, verr.Fields[name])
	}
}
