package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/logger"
	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

func newWorkflowCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run the end-to-end scenario: tokens, AMM, pool, deposit, swap",
	}

	run := func(name string, steps func(*workflow.Scenario) []workflow.Step) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			a.Runner.OnResult(func(r workflow.Result) {
				w := cmd.OutOrStdout()
				if !r.Success {
					w = cmd.ErrOrStderr()
				}
				c.printResult(w, r)
			})
			list := steps(a.Scenario)
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
				return nil
			}
			started := time.Now()
			if _, err := a.Runner.Run(cmd.Context(), name, list); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s completed in %s, stage %s\n",
				name, time.Since(started).Round(time.Millisecond), a.Runner.Stage())
			return nil
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run every step from scratch",
		Args:  cobra.NoArgs,
		RunE:  run("full", (*workflow.Scenario).FullSteps),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Continue from the saved stage",
		Args:  cobra.NoArgs,
		RunE:  run("resume", (*workflow.Scenario).ResumeSteps),
	})

	swap := &cobra.Command{
		Use:   "swap",
		Short: "Swap the configured amount in the session pool",
		Args:  cobra.NoArgs,
	}
	swap.RunE = func(cmd *cobra.Command, args []string) error {
		bToA, _ := cmd.Flags().GetBool("b-to-a")
		return run("swap", func(s *workflow.Scenario) []workflow.Step {
			return []workflow.Step{s.SwapStep(!bToA)}
		})(cmd, args)
	}
	swap.Flags().Bool("b-to-a", false, "swap B for A")
	cmd.AddCommand(swap)

	return cmd
}

func newSessionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the saved scenario session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			m, err := a.Store.LoadSession(cmd.Context())
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved session")
				return nil
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "network         %s\n", m.Network)
			fmt.Fprintf(w, "wallet          %s\n", m.Wallet)
			fmt.Fprintf(w, "stage           %s\n", m.Stage)
			for _, f := range []struct{ k, v string }{
				{"mint_a", m.MintA}, {"mint_b", m.MintB},
				{"user_account_a", m.UserAccountA}, {"user_account_b", m.UserAccountB},
				{"amm", m.AMM}, {"pool", m.Pool}, {"lp_mint", m.LPMint},
			} {
				if f.v != "" {
					fmt.Fprintf(w, "%-15s %s\n", f.k, f.v)
				}
			}
			fmt.Fprintf(w, "updated_at      %s\n", m.UpdatedAt.Local().Format(time.DateTime))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the saved session; the next run starts from scratch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			if err := a.Store.ResetSession(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session reset")
			return nil
		},
	})

	return cmd
}

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List sent transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			csvPath, _ := cmd.Flags().GetString("csv")

			a, err := c.open()
			if err != nil {
				return err
			}
			txs, err := a.Store.ListTransactions(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}

			if csvPath != "" {
				out, err := logger.NewSafeCSVWriter(csvPath, logger.HistoryHeader, time.Second, a.Logger)
				if err != nil {
					return err
				}
				for _, tx := range txs {
					record := []string{
						tx.CreatedAt.UTC().Format(time.RFC3339),
						tx.Operation,
						tx.Status,
						tx.Kind,
						tx.Signature,
						tx.WalletAddress,
						strconv.FormatBool(tx.AlreadyProcessed),
						strconv.FormatFloat(tx.ExecutionTime, 'f', 3, 64),
						tx.ErrorMessage,
					}
					if err := out.WriteRecord(record); err != nil {
						_ = out.Close()
						return err
					}
				}
				if err := out.Close(); err != nil {
					return err
				}
				a.Logger.Info("History exported", zap.String("path", csvPath), zap.Int("records", len(txs)))
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d transactions to %s\n", len(txs), csvPath)
				return nil
			}

			w := cmd.OutOrStdout()
			if len(txs) == 0 {
				fmt.Fprintln(w, "no transactions yet")
				return nil
			}
			for _, tx := range txs {
				status := tx.Status
				if tx.AlreadyProcessed {
					status += "*"
				}
				fmt.Fprintf(w, "%s  %-28s %-10s %s\n",
					tx.CreatedAt.Local().Format(time.DateTime), tx.Operation, status, tx.Signature)
				if tx.ErrorMessage != "" {
					fmt.Fprintf(w, "    %s: %s\n", tx.Kind, tx.ErrorMessage)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "number of transactions")
	cmd.Flags().String("csv", "", "export to a CSV file instead of printing")
	return cmd
}

func newLogsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("lines")
			if n <= 0 {
				n = 50
			}
			path := c.cfg.Log.File
			if path == "" {
				return errors.New("log.file is not configured")
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()

			ring := make([]string, 0, n)
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
			for scanner.Scan() {
				if len(ring) == n {
					ring = ring[1:]
				}
				ring = append(ring, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			for _, line := range ring {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntP("lines", "n", 50, "number of lines")
	return cmd
}
