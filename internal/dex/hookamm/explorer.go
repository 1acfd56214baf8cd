// =============================
// File: internal/dex/hookamm/explorer.go
// =============================
package hookamm

import (
	"fmt"
	"net/url"
)

const explorerBase = "https://explorer.solana.com"

// explorerCluster возвращает query-параметры кластера для ссылки на explorer.
func explorerCluster(network, rpcURL string) string {
	switch network {
	case "", "mainnet", "mainnet-beta":
		return ""
	case "devnet", "testnet":
		return "?cluster=" + network
	default:
		// localnet и любые свои узлы
		return "?cluster=custom&customUrl=" + url.QueryEscape(rpcURL)
	}
}

// ExplorerTxURL возвращает ссылку на транзакцию в explorer.
func ExplorerTxURL(network, rpcURL, signature string) string {
	return fmt.Sprintf("%s/tx/%s%s", explorerBase, signature, explorerCluster(network, rpcURL))
}

// ExplorerAddressURL возвращает ссылку на аккаунт в explorer.
func ExplorerAddressURL(network, rpcURL, address string) string {
	return fmt.Sprintf("%s/address/%s%s", explorerBase, address, explorerCluster(network, rpcURL))
}
