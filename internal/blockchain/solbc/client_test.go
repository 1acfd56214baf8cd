package solbc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func TestIsAccountNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rpc not found", rpc.ErrNotFound, true},
		{"wrapped rpc not found", fmt.Errorf("get account: %w", rpc.ErrNotFound), true},
		{"client error", apperrors.New(apperrors.KindAccountNotFound, "ata"), true},
		{"invalid param", &jsonrpc.RPCError{Code: -32602, Message: "Invalid param: could not find account"}, true},
		{"method not found", &jsonrpc.RPCError{Code: -32601, Message: "Method not found"}, false},
		{"blockhash not found", errors.New("Blockhash not found"), false},
		{"transport", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAccountNotFoundError(tt.err))
		})
	}
}
