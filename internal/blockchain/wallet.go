package blockchain

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Wallet holds one user's keypair for signing transactions. Secrets live in
// the user store as base64 of the full 64-byte ed25519 private key.
type Wallet struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	address    string
}

// GenerateWallet creates a fresh keypair.
func GenerateWallet() (*Wallet, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Wallet{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    base58.Encode(publicKey),
	}, nil
}

// WalletFromSecret rebuilds a wallet from the stored base64 secret.
func WalletFromSecret(secret string) (*Wallet, error) {
	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}
	return walletFromBytes(raw)
}

// RestoreWallet accepts the private key in any of the formats users paste:
//   - base64 of the 64-byte private key (our own export format)
//   - a JSON array of 64 byte values (solana-keygen's id.json)
//   - raw text of 64 to 100 characters, padded or truncated to 64 bytes
func RestoreWallet(input string) (*Wallet, error) {
	if raw, err := base64.StdEncoding.DecodeString(input); err == nil && len(raw) == ed25519.PrivateKeySize {
		return walletFromBytes(raw)
	}

	var nums []byte
	if err := json.Unmarshal([]byte(input), &nums); err == nil && len(nums) == ed25519.PrivateKeySize {
		return walletFromBytes(nums)
	}

	if n := len(input); n >= 64 && n <= 100 {
		raw := make([]byte, ed25519.PrivateKeySize)
		copy(raw, input)
		return walletFromBytes(raw)
	}

	return nil, fmt.Errorf("unrecognized private key format (%d chars)", len(input))
}

func walletFromBytes(raw []byte) (*Wallet, error) {
	var privateKey ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		privateKey = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		privateKey = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("invalid private key length: %d (expected 32 or 64)", len(raw))
	}

	publicKey := privateKey.Public().(ed25519.PublicKey)
	return &Wallet{
		privateKey: privateKey,
		publicKey:  publicKey,
		address:    base58.Encode(publicKey),
	}, nil
}

// Address returns the wallet's public key as a base58 string.
func (w *Wallet) Address() string {
	return w.address
}

// Secret returns the private key in our storage format.
func (w *Wallet) Secret() string {
	return base64.StdEncoding.EncodeToString(w.privateKey)
}

// Sign signs a message with the wallet's private key.
func (w *Wallet) Sign(message []byte) []byte {
	return ed25519.Sign(w.privateKey, message)
}

// SignSerializedTransaction signs a base64-encoded serialized transaction as
// produced by a swap builder and returns it ready for sendTransaction.
// Versioned transaction layout: [sig count][signatures...][message].
func (w *Wallet) SignSerializedTransaction(serializedTxBase64 string) (string, error) {
	txBytes, err := base64.StdEncoding.DecodeString(serializedTxBase64)
	if err != nil {
		return "", fmt.Errorf("decode transaction: %w", err)
	}
	if len(txBytes) == 0 {
		return "", fmt.Errorf("empty transaction")
	}

	sigCount := int(txBytes[0])
	if sigCount == 0 {
		message := txBytes[1:]
		signature := w.Sign(message)

		signed := make([]byte, 1+ed25519.SignatureSize+len(message))
		signed[0] = 1
		copy(signed[1:], signature)
		copy(signed[1+ed25519.SignatureSize:], message)
		return base64.StdEncoding.EncodeToString(signed), nil
	}

	messageOffset := 1 + sigCount*ed25519.SignatureSize
	if len(txBytes) <= messageOffset {
		return "", fmt.Errorf("malformed transaction: %d bytes for %d signatures", len(txBytes), sigCount)
	}

	signature := w.Sign(txBytes[messageOffset:])
	copy(txBytes[1:1+ed25519.SignatureSize], signature)
	return base64.StdEncoding.EncodeToString(txBytes), nil
}
