package solbc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"
)

// AnchorError represents an error from Anchor framework
type AnchorError struct {
	Code int    `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// String форматирует ошибку Anchor для сообщений клиенту.
func (a AnchorError) String() string {
	if a.Name == "" {
		return ""
	}
	return fmt.Sprintf("%s (%d): %s", a.Name, a.Code, a.Msg)
}

var (
	// base58 подпись в тексте ошибки узла, например "signature: 5Vf..."
	signaturePattern = regexp.MustCompile(`signature:? ?([1-9A-HJ-NP-Za-km-z]{64,88})`)
	ansiPattern      = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// ErrorAnalyzer provides methods to analyze Solana transaction errors
type ErrorAnalyzer struct {
	logger *zap.Logger
}

// NewErrorAnalyzer creates a new ErrorAnalyzer instance
func NewErrorAnalyzer(logger *zap.Logger) *ErrorAnalyzer {
	return &ErrorAnalyzer{
		logger: logger.Named("error-analyzer"),
	}
}

// AnalyzeRPCError analyzes a jsonrpc.RPCError and extracts detailed information
func (ea *ErrorAnalyzer) AnalyzeRPCError(err error) map[string]interface{} {
	if err == nil {
		return map[string]interface{}{
			"error": "No error provided",
		}
	}

	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return map[string]interface{}{
			"type":    "generic_error",
			"message": err.Error(),
		}
	}

	result := map[string]interface{}{
		"type":    "rpc_error",
		"code":    rpcErr.Code,
		"message": rpcErr.Message,
	}
	if strings.Contains(rpcErr.Message, "Transaction simulation failed") {
		result["simulation_failed"] = true
	}

	logs := ExtractLogs(err)
	if len(logs) > 0 {
		result["logs"] = logs
		if anchorErr, ok := FindAnchorError(logs); ok {
			result["anchor_error"] = anchorErr
			ea.logger.Warn("Anchor error detected",
				zap.Int("code", anchorErr.Code),
				zap.String("name", anchorErr.Name),
				zap.String("message", anchorErr.Msg))
		}
	}

	if dataMap, ok := rpcErr.Data.(map[string]interface{}); ok {
		if instrErr, ok := dataMap["err"]; ok && instrErr != nil {
			result["instruction_error"] = instrErr
		}
	}

	return result
}

// FormatErrorAnalysis formats the error analysis for logging or display
func (ea *ErrorAnalyzer) FormatErrorAnalysis(analysis map[string]interface{}) string {
	jsonBytes, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error formatting analysis: %v", err)
	}
	return string(jsonBytes)
}

// ExtractLogs возвращает логи программ, приложенные узлом к ошибке RPC.
// Логи возвращаются как есть, без интерпретации.
func ExtractLogs(err error) []string {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Data == nil {
		return nil
	}
	dataMap, ok := rpcErr.Data.(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := dataMap["logs"].([]interface{})
	if !ok {
		return nil
	}
	logs := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			logs = append(logs, s)
		}
	}
	return logs
}

// FindAnchorError ищет первую ошибку Anchor в логах.
func FindAnchorError(logs []string) (AnchorError, bool) {
	for _, line := range logs {
		if strings.Contains(line, "AnchorError") {
			return ParseAnchorErrorLog(line), true
		}
	}
	return AnchorError{}, false
}

// ParseAnchorErrorLog parses an Anchor error log string
// Example: "Program log: AnchorError occurred. Error Code: SlippageExceeded. Error Number: 6003. Error Message: Slippage exceeded."
func ParseAnchorErrorLog(logStr string) AnchorError {
	result := AnchorError{}

	if parts := strings.SplitN(logStr, "Error Number:", 2); len(parts) == 2 {
		numParts := strings.SplitN(parts[1], ".", 2)
		fmt.Sscanf(strings.TrimSpace(numParts[0]), "%d", &result.Code)
	}

	if parts := strings.SplitN(logStr, "Error Code:", 2); len(parts) == 2 {
		result.Name = strings.TrimSpace(strings.SplitN(parts[1], ".", 2)[0])
	}

	if parts := strings.SplitN(logStr, "Error Message:", 2); len(parts) == 2 {
		result.Msg = strings.TrimSuffix(strings.TrimSpace(parts[1]), ".")
	}

	return result
}

// IsAlreadyProcessed сообщает, что узел уже видел эту транзакцию.
func IsAlreadyProcessed(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already been processed") ||
		strings.Contains(msg, "AlreadyProcessed")
}

// RecoverSignature извлекает подпись из текста ошибки "already processed".
// Если в тексте её нет, используется подпись плательщика из самой транзакции.
func RecoverSignature(err error, tx *solana.Transaction) solana.Signature {
	if err != nil {
		if m := signaturePattern.FindStringSubmatch(err.Error()); len(m) == 2 {
			if sig, perr := solana.SignatureFromBase58(m[1]); perr == nil {
				return sig
			}
		}
	}
	if tx != nil && len(tx.Signatures) > 0 {
		return tx.Signatures[0]
	}
	return solana.Signature{}
}

// IsRetryable сообщает, стоит ли повторно отправлять те же подписанные байты.
// Повторяются только транспортные сбои; отказ симуляции или программы не повторяется.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		// -32005 node is behind, -32004 block not available
		switch rpcErr.Code {
		case -32005, -32004, 429:
			return true
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"timeout", "connection reset", "connection refused", "eof", "429", "too many requests", "502", "503", "504"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// StripANSI удаляет escape-последовательности цвета из строки лога.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// FilterProgramLogs оставляет только строки, относящиеся к программе programID.
func FilterProgramLogs(logs []string, programID solana.PublicKey) []string {
	id := programID.String()
	var out []string
	inside := false
	for _, raw := range logs {
		line := StripANSI(raw)
		switch {
		case strings.HasPrefix(line, "Program "+id+" invoke"):
			inside = true
			out = append(out, line)
		case strings.HasPrefix(line, "Program "+id+" success"),
			strings.HasPrefix(line, "Program "+id+" failed"):
			inside = false
			out = append(out, line)
		case inside && (strings.HasPrefix(line, "Program log:") || strings.HasPrefix(line, "Program data:")):
			out = append(out, line)
		case strings.HasPrefix(line, "Program "+id+" consumed"):
			out = append(out, line)
		}
	}
	return out
}
