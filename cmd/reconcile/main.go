package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"payrecon/internal/decision"
	"payrecon/internal/platform/config"
	"payrecon/internal/platform/logger"
	"payrecon/internal/sandbox"
)

var (
	cfgFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Decide payment transactions against the mock CRM and ERP",
		Long: `reconcile runs the decision engine in-process against the seeded mock
customer directory, ledger and notifier, the same world the server hosts.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("PAYRECON_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(decideCmd())
	root.AddCommand(scenariosCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newWorld builds a sandbox with the engine settings from config.
func newWorld(cmd *cobra.Command) (*sandbox.World, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	engineCfg, err := cfg.Decision.EngineConfig()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), logLevel, "text")
	return sandbox.New(cmd.Context(),
		sandbox.WithLogger(log),
		sandbox.WithDecisionOptions(decision.WithConfig(engineCfg)),
	)
}
