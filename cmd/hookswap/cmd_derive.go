package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func newDeriveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive program addresses offline",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pool <mintA> <mintB>",
		Short: "AMM, pool, pool authority and vault addresses for a mint pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			hc, err := c.hookConfig()
			if err != nil {
				return err
			}
			addrs, err := hc.DerivePoolAddresses(mintA, mintB)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "amm             %s\n", addrs.AMM)
			fmt.Fprintf(w, "pool            %s\n", addrs.Pool)
			fmt.Fprintf(w, "pool_authority  %s (bump %d)\n", addrs.PoolAuthority.Address, addrs.PoolAuthority.Bump)
			fmt.Fprintf(w, "vault_a         %s\n", addrs.VaultA)
			fmt.Fprintf(w, "vault_b         %s\n", addrs.VaultB)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "hook <mint>",
		Short: "Extra account metas and trade counter of a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			hc, err := c.hookConfig()
			if err != nil {
				return err
			}
			hook, err := hookamm.DeriveHookAccounts(hc.CounterHookProgramID, mint)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "hook_program         %s\n", hook.Program)
			fmt.Fprintf(w, "extra_account_metas  %s\n", hook.ExtraAccountMetas)
			fmt.Fprintf(w, "trade_counter        %s\n", hook.TradeCounter)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ata <owner> <mint>",
		Short: "Token-2022 associated token account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseKey("owner", args[0])
			if err != nil {
				return err
			}
			mint, err := parseKey("mint", args[1])
			if err != nil {
				return err
			}
			hc, err := c.hookConfig()
			if err != nil {
				return err
			}
			ata, err := hc.ATA(owner, mint)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ata)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "counter-update <mint> <amount> <sourceOwner> <destinationOwner>",
		Short: "Encode a direct trade counter update (raw amount) and decode it back",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return apperrors.Wrap(apperrors.KindInvalidInput, err, fmt.Sprintf("invalid amount %q", args[1]))
			}
			src, err := parseKey("source owner", args[2])
			if err != nil {
				return err
			}
			dst, err := parseKey("destination owner", args[3])
			if err != nil {
				return err
			}
			hc, err := c.hookConfig()
			if err != nil {
				return err
			}

			plan, err := hookamm.NewBuilder(hc).UpdateMintTradeCounter(mint, hookamm.UpdateMintTradeCounterArgs{
				Amount:           amount,
				SourceOwner:      src,
				DestinationOwner: dst,
			})
			if err != nil {
				return err
			}
			ix := plan.Instructions[0]
			data, err := ix.Data()
			if err != nil {
				return err
			}
			var decoded hookamm.UpdateMintTradeCounterArgs
			if err := hookamm.DecodeArgs(hookamm.OpUpdateMintTradeCounter, data, &decoded); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "program        %s\n", ix.ProgramID())
			for _, m := range ix.Accounts() {
				fmt.Fprintf(w, "account        %s writable=%t signer=%t\n", m.PublicKey, m.IsWritable, m.IsSigner)
			}
			fmt.Fprintf(w, "data           %s\n", hex.EncodeToString(data))
			fmt.Fprintf(w, "decoded        amount=%d source=%s destination=%s\n",
				decoded.Amount, decoded.SourceOwner, decoded.DestinationOwner)
			return nil
		},
	})

	return cmd
}
