package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
)

func newAmmCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amm",
		Short: "Manage the AMM registry entry of a mint pair",
	}

	create := &cobra.Command{
		Use:   "create <mintA> <mintB>",
		Short: "Create the AMM for a pair",
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
			fee := c.cfg.DefaultSolFee
			if s, _ := cmd.Flags().GetString("fee"); s != "" {
				if fee, err = hookamm.ParseSOL(s); err != nil {
					return err
				}
			}
			s, _ := cmd.Flags().GetString("collector")
			collector, err := optionalKey("collector", s)
			if err != nil {
				return err
			}
			if collector.IsZero() {
				collector = a.DEX.Payer()
			}
			op, err := a.DEX.CreateAmm(cmd.Context(), mintA, mintB, fee, collector)
			return c.report(cmd, "create_amm", op, err)
		},
	}
	create.Flags().String("fee", "", "SOL fee per swap, e.g. 0.01 (default from config)")
	create.Flags().String("collector", "", "fee collector (default wallet)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "update-admin <mintA> <mintB> <newAdmin>",
		Short: "Transfer AMM admin rights",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			admin, err := parseKey("admin", args[2])
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			op, err := a.DEX.UpdateAdmin(cmd.Context(), mintA, mintB, admin)
			return c.report(cmd, "update_admin", op, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update-fee <mintA> <mintB> <sol>",
		Short: "Change the SOL fee charged per swap",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mintA, mintB, err := parsePair(args)
			if err != nil {
				return err
			}
			fee, err := hookamm.ParseSOL(args[2])
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			op, err := a.DEX.UpdateFee(cmd.Context(), mintA, mintB, fee)
			return c.report(cmd, "update_fee", op, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <mintA> <mintB>",
		Short: "Print the AMM account",
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
			amm, addr, err := a.DEX.Reader().Amm(cmd.Context(), mintA, mintB)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "address    %s\n", addr)
			fmt.Fprintf(w, "admin      %s\n", amm.Admin)
			fmt.Fprintf(w, "sol_fee    %s SOL\n", hookamm.FormatSOL(amm.SolFee))
			fmt.Fprintf(w, "collector  %s\n", amm.SolFeeCollector)
			fmt.Fprintf(w, "created    %t\n", amm.Created)
			fmt.Fprintf(w, "immutable  %t\n", amm.IsImmutable)
			return nil
		},
	})

	return cmd
}
