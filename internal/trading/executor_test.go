package trading

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"testing"

	"solana-honey-bot/internal/blockchain"
	"solana-honey-bot/internal/orca"
	"solana-honey-bot/internal/storage"
)

type fakeSwaps struct {
	lastInput  string
	lastOutput string
	lastAmount uint64
	err        error
}

func (f *fakeSwaps) GetSwapTransaction(_ context.Context, inputMint, outputMint, _ string, amountLamports uint64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastInput = inputMint
	f.lastOutput = outputMint
	f.lastAmount = amountLamports

	// One empty signature slot followed by a message body.
	tx := make([]byte, 1+ed25519.SignatureSize+8)
	tx[0] = 1
	copy(tx[1+ed25519.SignatureSize:], "swapmsg0")
	return base64.StdEncoding.EncodeToString(tx), nil
}

type fakeNode struct {
	balance uint64
	sendErr error
	sent    []string
}

func (f *fakeNode) SendTransaction(_ context.Context, signedTx string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, signedTx)
	return "txsig", nil
}

func (f *fakeNode) GetBalance(_ context.Context, _ string) (uint64, error) {
	return f.balance, nil
}

type fakeJournal struct {
	entries []*storage.Entry
}

func (f *fakeJournal) Record(e *storage.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func testSecret(t *testing.T) string {
	t.Helper()
	w, err := blockchain.GenerateWallet()
	if err != nil {
		t.Fatal(err)
	}
	return w.Secret()
}

func TestBuyRoutesSolIntoMint(t *testing.T) {
	swaps := &fakeSwaps{}
	node := &fakeNode{balance: 10 * orca.LamportsPerSOL}
	journal := &fakeJournal{}
	e := NewExecutor(swaps, node, journal)

	sig, err := e.Buy(context.Background(), testSecret(t), "MintA", 0.5)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if sig != "txsig" {
		t.Errorf("unexpected signature %q", sig)
	}
	if swaps.lastInput != orca.SOLMint || swaps.lastOutput != "MintA" {
		t.Errorf("wrong route: %s -> %s", swaps.lastInput, swaps.lastOutput)
	}
	if swaps.lastAmount != uint64(0.5*orca.LamportsPerSOL) {
		t.Errorf("wrong lamports: %d", swaps.lastAmount)
	}
	if len(journal.entries) != 1 || journal.entries[0].Side != storage.SideBuy || journal.entries[0].Mint != "MintA" {
		t.Errorf("journal entry wrong: %+v", journal.entries)
	}
}

func TestSellRoutesMintIntoSol(t *testing.T) {
	swaps := &fakeSwaps{}
	node := &fakeNode{}
	journal := &fakeJournal{}
	e := NewExecutor(swaps, node, journal)

	if _, err := e.Sell(context.Background(), testSecret(t), "MintA", 0.3); err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if swaps.lastInput != "MintA" || swaps.lastOutput != orca.SOLMint {
		t.Errorf("wrong route: %s -> %s", swaps.lastInput, swaps.lastOutput)
	}
	if journal.entries[0].Mint != "MintA" || journal.entries[0].Side != storage.SideSell {
		t.Errorf("journal entry wrong: %+v", journal.entries[0])
	}
}

func TestBuyRejectsInsufficientBalance(t *testing.T) {
	e := NewExecutor(&fakeSwaps{}, &fakeNode{balance: 1000}, nil)
	if _, err := e.Buy(context.Background(), testSecret(t), "MintA", 1); err == nil {
		t.Fatal("expected insufficient balance error")
	}
}

func TestSendFailureDoesNotJournal(t *testing.T) {
	journal := &fakeJournal{}
	node := &fakeNode{sendErr: errors.New("node down")}
	e := NewExecutor(&fakeSwaps{}, node, journal)

	if _, err := e.Sell(context.Background(), testSecret(t), "MintA", 0.1); err == nil {
		t.Fatal("expected send error")
	}
	if len(journal.entries) != 0 {
		t.Errorf("failed swap must not be journaled: %+v", journal.entries)
	}
}

func TestSellTokensUsesRawAmount(t *testing.T) {
	swaps := &fakeSwaps{}
	journal := &fakeJournal{}
	e := NewExecutor(swaps, &fakeNode{}, journal)

	sig, err := e.SellTokens(context.Background(), testSecret(t), "MintA", 123456)
	if err != nil {
		t.Fatalf("SellTokens: %v", err)
	}
	if sig != "txsig" {
		t.Errorf("unexpected signature %q", sig)
	}
	if swaps.lastInput != "MintA" || swaps.lastOutput != orca.SOLMint {
		t.Errorf("wrong route: %s -> %s", swaps.lastInput, swaps.lastOutput)
	}
	if swaps.lastAmount != 123456 {
		t.Errorf("raw amount not forwarded: %d", swaps.lastAmount)
	}
	if len(journal.entries) != 1 || journal.entries[0].Side != storage.SideSell || journal.entries[0].AmountSol != 0 {
		t.Errorf("journal entry wrong: %+v", journal.entries)
	}

	if _, err := e.SellTokens(context.Background(), testSecret(t), "MintA", 0); err == nil {
		t.Error("zero amount must be rejected")
	}
}

func TestBadSecretRejected(t *testing.T) {
	e := NewExecutor(&fakeSwaps{}, &fakeNode{}, nil)
	if _, err := e.Buy(context.Background(), "not-a-secret", "MintA", 0.1); err == nil {
		t.Fatal("expected wallet load error")
	}
}
