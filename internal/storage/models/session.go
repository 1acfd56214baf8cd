// internal/storage/models/session.go
package models

import "time"

// Session – адреса, созданные сценарием, и достигнутая стадия.
type Session struct {
	Network      string    `yaml:"network"`
	Wallet       string    `yaml:"wallet"`
	MintA        string    `yaml:"mint_a,omitempty"`
	MintB        string    `yaml:"mint_b,omitempty"`
	UserAccountA string    `yaml:"user_account_a,omitempty"`
	UserAccountB string    `yaml:"user_account_b,omitempty"`
	AMM          string    `yaml:"amm,omitempty"`
	Pool         string    `yaml:"pool,omitempty"`
	LPMint       string    `yaml:"lp_mint,omitempty"`
	Stage        string    `yaml:"stage"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}
