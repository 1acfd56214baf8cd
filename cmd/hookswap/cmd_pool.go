package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
)

func newPoolCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Create and inspect the liquidity pool of a pair",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <mintA> <mintB>",
		Short: "Create the pool and its LP mint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			op, err := a.DEX.CreatePool(cmd.Context(), mintA, mintB)
			return c.report(cmd, "create_pool", op, err)
		},
	})

	accounts := &cobra.Command{
		Use:   "accounts <mintA> <mintB>",
		Short: "Create the pool vaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			s, _ := cmd.Flags().GetString("lp-mint")
			lp, err := optionalKey("lp mint", s)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			op, err := a.DEX.CreatePoolTokenAccounts(cmd.Context(), mintA, mintB, lp)
			return c.report(cmd, "create_pool_token_accounts", op, err)
		},
	}
	accounts.Flags().String("lp-mint", "", "LP mint (default read from the pool)")
	cmd.AddCommand(accounts)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats <mintA> <mintB>",
		Short: "Reserves, liquidity and price of the pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			st, err := a.DEX.Reader().PoolStats(cmd.Context(), mintA, mintB)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "pool             %s\n", st.Address)
			fmt.Fprintf(w, "lp_mint          %s\n", st.Pool.LPMint)
			fmt.Fprintf(w, "reserve_a        %s\n", st.ReserveA)
			fmt.Fprintf(w, "reserve_b        %s\n", st.ReserveB)
			fmt.Fprintf(w, "total_liquidity  %d\n", st.TotalLiquidity)
			fmt.Fprintf(w, "price_a_in_b     %s\n", st.PriceAInB.StringFixed(9))
			fmt.Fprintf(w, "explorer         %s\n", hookamm.ExplorerAddressURL(c.cfg.Network, c.cfg.RPCURL, st.Address.String()))
			return nil
		},
	})

	return cmd
}

func newDepositCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit <mintA> <mintB> <amountA> <amountB>",
		Short: "Deposit liquidity into the pool",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			s, _ := flags.GetString("lp-mint")
			lp, err := optionalKey("lp mint", s)
			if err != nil {
				return err
			}
			s, _ = flags.GetString("hook")
			hook, err := optionalKey("hook program", s)
			if err != nil {
				return err
			}

			a, err := c.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			amountA, err := parseTokenAmount(ctx, a, mintA, args[2])
			if err != nil {
				return err
			}
			amountB, err := parseTokenAmount(ctx, a, mintB, args[3])
			if err != nil {
				return err
			}
			op, err := a.DEX.DepositLiquidity(ctx, mintA, mintB, lp, amountA, amountB, hook)
			return c.report(cmd, "deposit_liquidity", op, err)
		},
	}
	cmd.Flags().String("lp-mint", "", "LP mint (default read from the pool)")
	cmd.Flags().String("hook", "", "transfer hook program (default counter hook)")
	return cmd
}

func newSwapCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <mintA> <mintB> <amount>",
		Short: "Swap an exact input amount, A to B unless --b-to-a",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			bToA, _ := flags.GetBool("b-to-a")
			bps, _ := flags.GetUint64("slippage-bps")
			minOutStr, _ := flags.GetString("min-out")
			s, _ := flags.GetString("hook")
			hook, err := optionalKey("hook program", s)
			if err != nil {
				return err
			}

			a, err := c.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			in, out := mintA, mintB
			if bToA {
				in, out = mintB, mintA
			}
			amount, err := parseTokenAmount(ctx, a, in, args[2])
			if err != nil {
				return err
			}
			minOut := amount * (10_000 - min(bps, 10_000)) / 10_000
			if minOutStr != "" {
				if minOut, err = parseTokenAmount(ctx, a, out, minOutStr); err != nil {
					return err
				}
			}

			op, err := a.DEX.Swap(ctx, hookamm.SwapParams{
				MintA:           mintA,
				MintB:           mintB,
				SwapA:           !bToA,
				InputAmount:     amount,
				MinOutputAmount: minOut,
				HookProgramA:    hook,
				HookProgramB:    hook,
			})
			return c.report(cmd, "swap", op, err)
		},
	}
	cmd.Flags().Bool("b-to-a", false, "swap B for A")
	cmd.Flags().Uint64("slippage-bps", 500, "max slippage in basis points, used when --min-out is not set")
	cmd.Flags().String("min-out", "", "minimum output amount")
	cmd.Flags().String("hook", "", "transfer hook program (default counter hook)")
	return cmd
}
