// =============================
// File: internal/dex/hookamm/encoder.go
// =============================
package hookamm

import (
	"crypto/sha256"
	"math"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

// Operation – имя инструкции программы, как оно записано в IDL.
type Operation string

const (
	OpCreateAmm                      Operation = "create_amm"
	OpUpdateAdmin                    Operation = "update_admin"
	OpUpdateFee                      Operation = "update_fee"
	OpCreatePool                     Operation = "create_pool"
	OpCreateTokenAccounts            Operation = "create_token_accounts"
	OpDepositLiquidity               Operation = "deposit_liquidity"
	OpSwapExactTokensForTokens       Operation = "swap_exact_tokens_for_tokens"
	OpCreateTokenWithHook            Operation = "create_token_with_hook"
	OpMintTokens                     Operation = "mint_tokens"
	OpInitializeExtraAccountMetaList Operation = "initialize_extra_account_meta_list"
	OpInitializeMintTradeCounter     Operation = "initialize_mint_trade_counter"
	OpUpdateMintTradeCounter         Operation = "update_mint_trade_counter"
)

// Instruction discriminators extracted from the IDL
var discriminators = map[Operation][8]byte{
	OpCreateAmm:                      {242, 91, 21, 170, 5, 68, 125, 64},
	OpUpdateAdmin:                    {161, 176, 40, 213, 60, 184, 179, 228},
	OpUpdateFee:                      {232, 253, 195, 247, 148, 212, 73, 222},
	OpCreatePool:                     {233, 146, 209, 142, 207, 104, 64, 188},
	OpCreateTokenAccounts:            {163, 216, 49, 204, 97, 16, 80, 167},
	OpDepositLiquidity:               {245, 99, 59, 25, 151, 71, 233, 249},
	OpSwapExactTokensForTokens:       {249, 86, 253, 50, 177, 221, 73, 162},
	OpCreateTokenWithHook:            {186, 132, 153, 159, 183, 146, 10, 218},
	OpMintTokens:                     {59, 132, 24, 246, 122, 39, 8, 243},
	OpInitializeExtraAccountMetaList: {92, 197, 174, 197, 41, 124, 19, 3},
	OpInitializeMintTradeCounter:     {22, 209, 170, 141, 84, 237, 5, 252},
	OpUpdateMintTradeCounter:         {21, 222, 164, 135, 94, 64, 24, 138},
}

// CalculateDiscriminator вычисляет дискриминатор Anchor: sha256("global:<name>")[:8].
func CalculateDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// Discriminator возвращает дискриминатор операции из таблицы.
func Discriminator(op Operation) ([8]byte, error) {
	d, ok := discriminators[op]
	if !ok {
		return [8]byte{}, apperrors.Encoding("unknown operation %q", op)
	}
	return d, nil
}

// Аргументы инструкций в порядке объявления в программе.

type CreateAmmArgs struct {
	MintA           solana.PublicKey
	MintB           solana.PublicKey
	SolFee          uint64
	SolFeeCollector solana.PublicKey
}

type UpdateAdminArgs struct {
	NewAdmin solana.PublicKey
}

type UpdateFeeArgs struct {
	NewSolFee uint64
}

type DepositLiquidityArgs struct {
	AmountA uint64
	AmountB uint64
}

type SwapArgs struct {
	SwapA           bool
	InputAmount     uint64
	MinOutputAmount uint64
}

type CreateTokenWithHookArgs struct {
	Name   string
	Symbol string
	URI    string
}

type MintTokensArgs struct {
	Amount uint64
}

type UpdateMintTradeCounterArgs struct {
	Amount           uint64
	SourceOwner      solana.PublicKey
	DestinationOwner solana.PublicKey
}

// encode собирает дискриминатор и borsh-сериализованные аргументы.
func encode(op Operation, args interface{}) ([]byte, error) {
	disc, err := Discriminator(op)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 8, 64)
	copy(data, disc[:])
	if args == nil {
		return data, nil
	}

	body, err := borsh.Serialize(args)
	if err != nil {
		return nil, apperrors.Encoding("%s: %v", op, err)
	}
	return append(data, body...), nil
}

func checkString(field, s string) error {
	if !utf8.ValidString(s) {
		return apperrors.Encoding("%s is not valid UTF-8", field)
	}
	if uint64(len(s)) > math.MaxUint32 {
		return apperrors.Encoding("%s is %d bytes, does not fit a u32 length prefix", field, len(s))
	}
	return nil
}

func EncodeCreateAmm(args CreateAmmArgs) ([]byte, error) {
	return encode(OpCreateAmm, args)
}

func EncodeUpdateAdmin(args UpdateAdminArgs) ([]byte, error) {
	return encode(OpUpdateAdmin, args)
}

func EncodeUpdateFee(args UpdateFeeArgs) ([]byte, error) {
	return encode(OpUpdateFee, args)
}

func EncodeCreatePool() ([]byte, error) {
	return encode(OpCreatePool, nil)
}

func EncodeCreateTokenAccounts() ([]byte, error) {
	return encode(OpCreateTokenAccounts, nil)
}

// EncodeDepositLiquidity: 8 байт дискриминатора + u64 amountA + u64 amountB.
func EncodeDepositLiquidity(args DepositLiquidityArgs) ([]byte, error) {
	return encode(OpDepositLiquidity, args)
}

func EncodeSwap(args SwapArgs) ([]byte, error) {
	return encode(OpSwapExactTokensForTokens, args)
}

func EncodeCreateTokenWithHook(args CreateTokenWithHookArgs) ([]byte, error) {
	for field, v := range map[string]string{"name": args.Name, "symbol": args.Symbol, "uri": args.URI} {
		if err := checkString(field, v); err != nil {
			return nil, err
		}
	}
	return encode(OpCreateTokenWithHook, args)
}

func EncodeMintTokens(args MintTokensArgs) ([]byte, error) {
	return encode(OpMintTokens, args)
}

func EncodeInitializeExtraAccountMetaList() ([]byte, error) {
	return encode(OpInitializeExtraAccountMetaList, nil)
}

func EncodeInitializeMintTradeCounter() ([]byte, error) {
	return encode(OpInitializeMintTradeCounter, nil)
}

// EncodeUpdateMintTradeCounter кодирует вызов hook: u64 amount + source owner + destination owner.
func EncodeUpdateMintTradeCounter(args UpdateMintTradeCounterArgs) ([]byte, error) {
	return encode(OpUpdateMintTradeCounter, args)
}

// DecodeArgs разбирает аргументы инструкции обратно (для логов и диагностики).
func DecodeArgs(op Operation, data []byte, out interface{}) (err error) {
	disc, err := Discriminator(op)
	if err != nil {
		return err
	}
	if len(data) < 8 || [8]byte(data[:8]) != disc {
		return apperrors.Decode(string(op), "instruction discriminator mismatch")
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Decode(string(op), "borsh panic: %v", r)
		}
	}()
	if err := borsh.Deserialize(out, data[8:]); err != nil {
		return apperrors.Decode(string(op), "%v", err)
	}
	return nil
}
