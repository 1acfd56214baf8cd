package main

import (
	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

func newTokenCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create and mint Token-2022 tokens with the counter hook",
	}

	def := workflow.DefaultScenarioConfig().TokenA
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a mint with transfer hook and metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open()
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			symbol, _ := cmd.Flags().GetString("symbol")
			uri, _ := cmd.Flags().GetString("uri")
			op, err := a.DEX.CreateTokenWithHook(cmd.Context(), name, symbol, uri)
			return c.report(cmd, "create_token", op, err)
		},
	}
	create.Flags().String("name", def.Name, "token name")
	create.Flags().String("symbol", def.Symbol, "token symbol")
	create.Flags().String("uri", def.URI, "metadata URI")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "mint <mint> <amount>",
		Short: "Mint tokens to the wallet's associated account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			a, err := c.open()
			if err != nil {
				return err
			}
			amount, err := parseTokenAmount(cmd.Context(), a, mint, args[1])
			if err != nil {
				return err
			}
			op, err := a.DEX.MintTokens(cmd.Context(), mint, amount)
			return c.report(cmd, "mint_tokens", op, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init-hook <mint>",
		Short: "Initialize extra account metas and the trade counter for a mint",
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
			op, err := a.DEX.InitializeExtraAccountMetaList(cmd.Context(), mint)
			if err := c.report(cmd, "initialize_extra_account_meta_list", op, err); err != nil {
				return err
			}
			op, err = a.DEX.InitializeMintTradeCounter(cmd.Context(), mint)
			return c.report(cmd, "initialize_mint_trade_counter", op, err)
		},
	})

	return cmd
}
