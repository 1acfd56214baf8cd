package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

func newBalanceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [mint...]",
		Short: "SOL balance and token balances of the wallet; session mints by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			reader := a.DEX.Reader()
			owner := a.Wallet.PublicKey()
			w := cmd.OutOrStdout()

			sol, err := reader.SOLBalance(ctx, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "wallet  %s\n", owner)
			fmt.Fprintf(w, "SOL     %s\n", hookamm.FormatSOL(sol))

			var mints []string
			if len(args) > 0 {
				mints = args
			} else {
				sess := a.Scenario.Session()
				for _, m := range []solana.PublicKey{sess.MintA, sess.MintB, sess.LPMint} {
					if !m.IsZero() {
						mints = append(mints, m.String())
					}
				}
			}
			for _, s := range mints {
				mint, err := parseKey("mint", s)
				if err != nil {
					return err
				}
				bal, err := reader.OwnerTokenBalance(ctx, owner, mint)
				if err != nil {
					return err
				}
				amount := bal.UIAmount.String()
				if !bal.Exists {
					amount = "no account"
				}
				fmt.Fprintf(w, "%s  %s\n", mint, amount)
			}
			return nil
		},
	}
}

func newCounterCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "counter <mint>",
		Short: "Transfer counters recorded by the hook for a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			tc, err := a.DEX.Reader().TradeCounter(cmd.Context(), mint)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "mint             %s\n", tc.Mint)
			fmt.Fprintf(w, "incoming         %d (volume %d)\n", tc.IncomingTransfers, tc.TotalIncomingVolume)
			fmt.Fprintf(w, "outgoing         %d (volume %d)\n", tc.OutgoingTransfers, tc.TotalOutgoingVolume)
			fmt.Fprintf(w, "last_updated     %s\n", tc.LastUpdatedTime().UTC().Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(w, "hook_owner       %s\n", tc.HookOwner)
			return nil
		},
	}
}

func newAirdropCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop [sol]",
		Short: "Request test SOL for the wallet (devnet, testnet, localnet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := "1"
			if len(args) == 1 {
				amount = args[0]
			}
			lamports, err := hookamm.ParseSOL(amount)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			res, err := a.DEX.Airdrop(cmd.Context(), lamports)
			if err != nil {
				c.printResult(cmd.ErrOrStderr(), workflow.FromError("airdrop", err))
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ airdrop %s SOL\n", hookamm.FormatSOL(res.Lamports))
			fmt.Fprintf(w, "  signature %s\n", res.Signature)
			fmt.Fprintf(w, "  balance   %s SOL\n", hookamm.FormatSOL(res.Balance))
			return nil
		},
	}
}

func newTxCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx <signature>",
		Short: "Program logs of a confirmed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := solana.SignatureFromBase58(args[0])
			if err != nil {
				return apperrors.Wrap(apperrors.KindInvalidInput, err, fmt.Sprintf("invalid signature %q", args[0]))
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("program")
			program, err := programByName(a.DEX.Config(), name)
			if err != nil {
				return err
			}
			logs, err := a.DEX.Reader().TransactionLogs(cmd.Context(), sig, program)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(w, "no logs")
			}
			for _, l := range logs {
				fmt.Fprintln(w, l)
			}
			fmt.Fprintln(w, hookamm.ExplorerTxURL(c.cfg.Network, c.cfg.RPCURL, sig.String()))
			return nil
		},
	}
	cmd.Flags().String("program", "", "only logs of this program: amm, setup, hook or an address")
	return cmd
}

func programByName(hc *hookamm.Config, name string) (solana.PublicKey, error) {
	switch name {
	case "":
		return solana.PublicKey{}, nil
	case "amm":
		return hc.AMMProgramID, nil
	case "setup":
		return hc.TokenSetupProgramID, nil
	case "hook":
		return hc.CounterHookProgramID, nil
	default:
		return parseKey("program", name)
	}
}
