package hookamm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplorerURLs(t *testing.T) {
	tests := []struct {
		network string
		rpc     string
		want    string
	}{
		{"", "", "https://explorer.solana.com/tx/SIG"},
		{"mainnet-beta", "", "https://explorer.solana.com/tx/SIG"},
		{"devnet", "https://api.devnet.solana.com", "https://explorer.solana.com/tx/SIG?cluster=devnet"},
		{"localnet", "http://127.0.0.1:8899", "https://explorer.solana.com/tx/SIG?cluster=custom&customUrl=http%3A%2F%2F127.0.0.1%3A8899"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExplorerTxURL(tt.network, tt.rpc, "SIG"), tt.network)
	}

	assert.Equal(t, "https://explorer.solana.com/address/ADDR?cluster=testnet",
		ExplorerAddressURL("testnet", "", "ADDR"))
}
