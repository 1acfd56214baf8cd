package solbc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func simulationError(logs ...string) *jsonrpc.RPCError {
	raw := make([]interface{}, len(logs))
	for i, l := range logs {
		raw[i] = l
	}
	return &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1773",
		Data: map[string]interface{}{
			"logs": raw,
			"err":  map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 6003}}},
		},
	}
}

func TestExtractLogs(t *testing.T) {
	err := fmt.Errorf("send: %w", simulationError("Program log: Instruction: Swap", "Program log: AnchorError occurred."))

	logs := ExtractLogs(err)
	assert.Equal(t, []string{"Program log: Instruction: Swap", "Program log: AnchorError occurred."}, logs)
	assert.Nil(t, ExtractLogs(errors.New("dial tcp: connection refused")))
}

func TestParseAnchorErrorLog(t *testing.T) {
	line := "Program log: AnchorError occurred. Error Code: SlippageExceeded. Error Number: 6003. Error Message: Slippage exceeded."

	got := ParseAnchorErrorLog(line)
	assert.Equal(t, 6003, got.Code)
	assert.Equal(t, "SlippageExceeded", got.Name)
	assert.Equal(t, "Slippage exceeded", got.Msg)
	assert.Equal(t, "SlippageExceeded (6003): Slippage exceeded", got.String())
}

func TestAnalyzeRPCError(t *testing.T) {
	ea := NewErrorAnalyzer(zaptest.NewLogger(t))
	analysis := ea.AnalyzeRPCError(simulationError(
		"Program log: AnchorError occurred. Error Code: InvalidFee. Error Number: 6000. Error Message: Invalid fee amount.",
	))

	assert.Equal(t, "rpc_error", analysis["type"])
	assert.Equal(t, true, analysis["simulation_failed"])
	require.Contains(t, analysis, "anchor_error")
	assert.Equal(t, "InvalidFee", analysis["anchor_error"].(AnchorError).Name)
	assert.Contains(t, ea.FormatErrorAnalysis(analysis), "InvalidFee")
}

func TestAlreadyProcessedRecovery(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	sig, err := key.Sign([]byte("payload"))
	require.NoError(t, err)

	withSig := fmt.Errorf("Transaction simulation failed: This transaction has already been processed, signature: %s", sig)
	assert.True(t, IsAlreadyProcessed(withSig))
	assert.Equal(t, sig, RecoverSignature(withSig, nil))

	fallback := solana.Signature{1, 2, 3}
	tx := &solana.Transaction{Signatures: []solana.Signature{fallback}}
	bare := errors.New("AlreadyProcessed")
	assert.True(t, IsAlreadyProcessed(bare))
	assert.Equal(t, fallback, RecoverSignature(bare, tx))

	assert.False(t, IsAlreadyProcessed(errors.New("blockhash not found")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("context deadline exceeded (Client.Timeout exceeded)"), true},
		{"rate limited", errors.New("HTTP status 429 Too Many Requests"), true},
		{"node behind", &jsonrpc.RPCError{Code: -32005, Message: "Node is behind"}, true},
		{"simulation", simulationError(), false},
		{"blockhash", errors.New("Blockhash not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestFilterProgramLogs(t *testing.T) {
	prog := solana.MustPublicKeyFromBase58("H7dswT3BXcCEeVjjLWkfpBP2p5imuJy7Qaq9i5VCpoos")
	logs := []string{
		"Program ComputeBudget111111111111111111111111111111 invoke [1]",
		"Program ComputeBudget111111111111111111111111111111 success",
		"\x1b[32mProgram " + prog.String() + " invoke [1]\x1b[0m",
		"Program log: Instruction: SwapExactTokensForTokens",
		"Program " + prog.String() + " consumed 42000 of 200000 compute units",
		"Program " + prog.String() + " success",
		"Program log: stray",
	}

	got := FilterProgramLogs(logs, prog)
	assert.Equal(t, []string{
		"Program " + prog.String() + " invoke [1]",
		"Program log: Instruction: SwapExactTokensForTokens",
		"Program " + prog.String() + " consumed 42000 of 200000 compute units",
		"Program " + prog.String() + " success",
	}, got)
}
