package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/blockchain"
	"solana-honey-bot/internal/orca"
	"solana-honey-bot/internal/storage"
)

// SwapBuilder produces unsigned serialized swap transactions.
type SwapBuilder interface {
	GetSwapTransaction(ctx context.Context, inputMint, outputMint, userPubkey string, amountLamports uint64) (string, error)
}

// Node is the slice of the RPC client the executor needs.
type Node interface {
	SendTransaction(ctx context.Context, signedTx string) (string, error)
	GetBalance(ctx context.Context, pubkey string) (uint64, error)
}

// Recorder appends executed swaps to the journal.
type Recorder interface {
	Record(e *storage.Entry) error
}

// Executor turns "buy X SOL of this mint" into a signed, submitted
// transaction. Each call rebuilds the wallet from the caller's stored
// secret, so one executor serves every user.
type Executor struct {
	swaps   SwapBuilder
	node    Node
	journal Recorder
}

// NewExecutor wires the trade path.
func NewExecutor(swaps SwapBuilder, node Node, journal Recorder) *Executor {
	return &Executor{swaps: swaps, node: node, journal: journal}
}

// Buy swaps solAmount SOL into mint and returns the transaction signature.
func (e *Executor) Buy(ctx context.Context, secret, mint string, solAmount float64) (string, error) {
	return e.execute(ctx, secret, orca.SOLMint, mint, solAmount, storage.SideBuy)
}

// Sell swaps a position slice worth solAmount SOL back into SOL.
func (e *Executor) Sell(ctx context.Context, secret, mint string, solAmount float64) (string, error) {
	return e.execute(ctx, secret, mint, orca.SOLMint, solAmount, storage.SideSell)
}

func (e *Executor) execute(ctx context.Context, secret, inputMint, outputMint string, solAmount float64, side string) (string, error) {
	if solAmount <= 0 {
		return "", fmt.Errorf("amount must be > 0")
	}

	wallet, err := blockchain.WalletFromSecret(secret)
	if err != nil {
		return "", fmt.Errorf("load wallet: %w", err)
	}

	lamports := uint64(solAmount * orca.LamportsPerSOL)

	if side == storage.SideBuy {
		// Fail fast on an empty wallet instead of burning the swap call.
		balance, err := e.node.GetBalance(ctx, wallet.Address())
		if err == nil && balance < lamports {
			return "", fmt.Errorf("insufficient balance: have %.4f SOL, need %.4f",
				float64(balance)/orca.LamportsPerSOL, solAmount)
		}
	}

	start := time.Now()
	unsigned, err := e.swaps.GetSwapTransaction(ctx, inputMint, outputMint, wallet.Address(), lamports)
	if err != nil {
		return "", fmt.Errorf("build swap: %w", err)
	}

	signed, err := wallet.SignSerializedTransaction(unsigned)
	if err != nil {
		return "", fmt.Errorf("sign swap: %w", err)
	}

	sig, err := e.node.SendTransaction(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("send swap: %w", err)
	}

	mint := outputMint
	if side == storage.SideSell {
		mint = inputMint
	}
	if e.journal != nil {
		if err := e.journal.Record(&storage.Entry{
			UserID:    wallet.Address(),
			Mint:      mint,
			Side:      side,
			AmountSol: solAmount,
			TxSig:     sig,
		}); err != nil {
			log.Error().Err(err).Str("tx", sig).Msg("journal write failed")
		}
	}

	log.Info().
		Str("side", side).
		Str("mint", mint).
		Float64("sol", solAmount).
		Str("tx", sig).
		Dur("latency", time.Since(start)).
		Msg("swap executed")

	return sig, nil
}

// SellTokens liquidates an exact raw token amount into SOL. Used by
// sell-all, where the size is known in token units, not SOL.
func (e *Executor) SellTokens(ctx context.Context, secret, mint string, rawAmount uint64) (string, error) {
	if rawAmount == 0 {
		return "", fmt.Errorf("amount must be > 0")
	}

	wallet, err := blockchain.WalletFromSecret(secret)
	if err != nil {
		return "", fmt.Errorf("load wallet: %w", err)
	}

	unsigned, err := e.swaps.GetSwapTransaction(ctx, mint, orca.SOLMint, wallet.Address(), rawAmount)
	if err != nil {
		return "", fmt.Errorf("build swap: %w", err)
	}

	signed, err := wallet.SignSerializedTransaction(unsigned)
	if err != nil {
		return "", fmt.Errorf("sign swap: %w", err)
	}

	sig, err := e.node.SendTransaction(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("send swap: %w", err)
	}

	if e.journal != nil {
		if err := e.journal.Record(&storage.Entry{
			UserID: wallet.Address(),
			Mint:   mint,
			Side:   storage.SideSell,
			TxSig:  sig,
		}); err != nil {
			log.Error().Err(err).Str("tx", sig).Msg("journal write failed")
		}
	}

	log.Info().Str("mint", mint).Uint64("rawAmount", rawAmount).Str("tx", sig).Msg("holding liquidated")
	return sig, nil
}

// BalanceSOL reports the wallet balance behind a stored secret.
func (e *Executor) BalanceSOL(ctx context.Context, secret string) (float64, error) {
	wallet, err := blockchain.WalletFromSecret(secret)
	if err != nil {
		return 0, fmt.Errorf("load wallet: %w", err)
	}
	lamports, err := e.node.GetBalance(ctx, wallet.Address())
	if err != nil {
		return 0, err
	}
	return float64(lamports) / orca.LamportsPerSOL, nil
}
