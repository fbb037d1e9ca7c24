package blockchain

import (
	"strings"
)

// TxError carries a user-presentable translation of an RPC failure. The bot
// shows Message (and Action) instead of raw node output.
type TxError struct {
	Code    int
	Raw     string
	Message string
	Action  string
}

func (e *TxError) Error() string {
	return e.Message
}

// ParseTxError translates a node error into something a user can act on.
func ParseTxError(err error) *TxError {
	if err == nil {
		return nil
	}

	raw := err.Error()
	txErr := &TxError{Raw: raw}
	if rpcErr, ok := err.(*RPCError); ok {
		txErr.Code = rpcErr.Code
	}

	switch {
	case contains(raw, "no record of a prior credit"):
		txErr.Message = "Insufficient balance: wallet has 0 SOL"
		txErr.Action = "Deposit SOL to your wallet address"

	case contains(raw, "insufficient funds"), contains(raw, "insufficient lamports"):
		txErr.Message = "Insufficient balance for trade plus fees"
		txErr.Action = "Deposit more SOL"

	case contains(raw, "slippage"), contains(raw, "ExceededSlippage"):
		txErr.Message = "Slippage exceeded: price moved too much"
		txErr.Action = "Try again in a moment"

	case contains(raw, "blockhash not found"), contains(raw, "block height exceeded"):
		txErr.Message = "Transaction expired before confirmation"
		txErr.Action = "Retry immediately"

	case contains(raw, "429"), contains(raw, "rate limit"):
		txErr.Message = "RPC rate limited"
		txErr.Action = "Wait a few seconds and retry"

	case contains(raw, "account not found"), contains(raw, "AccountNotFound"):
		txErr.Message = "Token account not found: you may not hold this token"
		txErr.Action = "Check your balances"

	case contains(raw, "custom program error"), contains(raw, "0x1"):
		txErr.Message = "The DEX rejected the swap"
		txErr.Action = "Check the token's liquidity"

	case contains(raw, "connection refused"), contains(raw, "timeout"):
		txErr.Message = "RPC node unreachable"
		txErr.Action = "Retry shortly"

	case contains(raw, "simulation failed"):
		txErr.Message = "Transaction would fail on-chain"
		txErr.Action = "Check the token and amount"

	default:
		txErr.Message = "Transaction failed"
		txErr.Action = "Try again"
	}

	return txErr
}

// HumanError returns the user-presentable message for an error.
func HumanError(err error) string {
	if err == nil {
		return ""
	}
	return ParseTxError(err).Message
}

// HumanErrorWithAction returns message plus the suggested next step.
func HumanErrorWithAction(err error) string {
	if err == nil {
		return ""
	}
	txErr := ParseTxError(err)
	return txErr.Message + ". " + txErr.Action
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
