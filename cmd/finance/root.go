package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"finance/internal/backend"
	"finance/internal/cli"
	"finance/internal/config"
	applog "finance/internal/log"
	"finance/internal/services"
)

// app carries the state shared by every subcommand for one invocation.
type app struct {
	backendType string
	envFile     bool

	cfg     *config.Config
	logger  *applog.Logger
	backend *backend.BackendResult
}

func (a *app) service() *services.FinanceService {
	return a.backend.Service
}

// run executes the CLI with args and always releases the backend, even
// when a subcommand fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:          "finance",
		Short:        "Track income, expenses and spending goals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&a.backendType, "backend", "b", "", "storage backend (overrides DATA_BACKEND)")
	root.PersistentFlags().BoolVar(&a.envFile, "env-file", true, "load variables from ./.env when present")

	root.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newSummaryCmd(a),
		newGoalCmd(a),
		newSheetsAuthCmd(a),
	)
	return root, a
}

func (a *app) open(ctx context.Context) error {
	if a.envFile {
		cli.LoadEnvFile()
	}

	cfg := config.Load()
	if a.backendType != "" {
		cfg.DataBackend = a.backendType
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so command output stays parseable.
	a.logger = applog.New(applog.Config{
		Level:     cfg.SlogLevel(),
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
	applog.SetDefault(a.logger)

	res, err := cli.OpenBackend(ctx, a.logger, cfg)
	if err != nil {
		return err
	}
	a.backend = res
	return nil
}

func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Cleanup()
	a.backend = nil
	if err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}
