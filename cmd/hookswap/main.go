package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/hookswap/internal/app"
	"github.com/rovshanmuradov/hookswap/internal/config"
	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

// cli – общее состояние команд: конфигурация и лениво собранное приложение.
type cli struct {
	v   *viper.Viper
	cfg *config.Config
	app *app.App
	ctx context.Context
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "hookswap",
		Short:         "Token-2022 transfer-hook AMM client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadWith(c.v, path)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path (default ./config.yaml)")
	pf.String("rpc", "", "RPC endpoint URL")
	pf.String("network", "", "network name for explorer links (devnet, testnet, localnet)")
	pf.Bool("debug", false, "verbose logging")
	pf.String("wallet", "", "dev wallet keypair file")
	_ = c.v.BindPFlag("rpc_url", pf.Lookup("rpc"))
	_ = c.v.BindPFlag("network", pf.Lookup("network"))
	_ = c.v.BindPFlag("log.debug", pf.Lookup("debug"))
	_ = c.v.BindPFlag("dev_wallet.path", pf.Lookup("wallet"))

	root.AddCommand(
		newDeriveCmd(c),
		newTokenCmd(c),
		newAmmCmd(c),
		newPoolCmd(c),
		newDepositCmd(c),
		newSwapCmd(c),
		newBalanceCmd(c),
		newCounterCmd(c),
		newAirdropCmd(c),
		newTxCmd(c),
		newWorkflowCmd(c),
		newSessionCmd(c),
		newHistoryCmd(c),
		newLogsCmd(c),
	)
	return root
}

// open собирает приложение при первом обращении.
func (c *cli) open() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(c.ctx, c.cfg, app.Options{})
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// hookConfig – адреса программ без сборки всего приложения.
func (c *cli) hookConfig() (*hookamm.Config, error) {
	return c.cfg.HookConfig()
}

func (c *cli) printResult(w io.Writer, res workflow.Result) {
	if !res.Success {
		fmt.Fprintf(w, "✗ %s: %s (%s)\n", res.Step, res.Summary(), res.Kind)
		fmt.Fprintf(w, "  %s\n", res.Error)
		for _, l := range res.Logs {
			fmt.Fprintf(w, "  | %s\n", l)
		}
		if res.Signature != "" {
			fmt.Fprintf(w, "  %s\n", hookamm.ExplorerTxURL(c.cfg.Network, c.cfg.RPCURL, res.Signature))
		}
		return
	}

	fmt.Fprintf(w, "✓ %s: %s\n", res.Step, res.Summary())
	if res.Signature != "" {
		fmt.Fprintf(w, "  signature %s\n", res.Signature)
		fmt.Fprintf(w, "  %s\n", hookamm.ExplorerTxURL(c.cfg.Network, c.cfg.RPCURL, res.Signature))
	}
	for _, k := range sortedKeys(res.Addresses) {
		fmt.Fprintf(w, "  %-14s %s\n", k, res.Addresses[k])
	}
}

// report печатает итог операции и возвращает ошибку для кода выхода.
func (c *cli) report(cmd *cobra.Command, step string, op *hookamm.OpResult, err error) error {
	if err != nil {
		c.printResult(cmd.ErrOrStderr(), workflow.FromError(step, err))
		return err
	}
	c.printResult(cmd.OutOrStdout(), workflow.FromOp(step, op))
	return nil
}

func exitCode(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput, apperrors.KindInvalidSeed:
		return 2
	case apperrors.KindTimeout:
		return 3
	default:
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{v: config.New(), ctx: ctx}
	root := newRootCmd(c)
	if err := root.ExecuteContext(ctx); err != nil {
		_ = c.close()
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}
