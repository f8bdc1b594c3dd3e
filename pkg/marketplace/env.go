package marketplace

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

// LedgerClient is the subset of the Solana RPC API intents depend on.
// solana.Client satisfies it.
type LedgerClient interface {
	GetLatestBlockhash() (solana.Blockhash, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetTokenAccountBalance(ed25519.PublicKey) (uint64, uint64, error)
	GetMinimumBalanceForRentExemption(size uint64) (uint64, error)
	GetAccountInfo(ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error)
	SubmitTransaction(solana.Transaction, solana.Commitment) (solana.Signature, error)
	GetSignatureStatus(solana.Signature, solana.Commitment) (*solana.SignatureStatus, error)
}

// Signer holds the wallet keys. It pays fees for, and signs, every batch.
type Signer interface {
	PublicKey() ed25519.PublicKey
	SignTransaction(ctx context.Context, txn *solana.Transaction) error
}

type keypairSigner struct {
	key ed25519.PrivateKey
}

// NewKeypairSigner returns a Signer backed by a local private key.
func NewKeypairSigner(key ed25519.PrivateKey) Signer {
	return &keypairSigner{key: key}
}

func (s *keypairSigner) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *keypairSigner) SignTransaction(_ context.Context, txn *solana.Transaction) error {
	return txn.Sign(s.key)
}

// Env is shared by the lifecycle clients. It holds no mutable state.
type Env struct {
	Client LedgerClient
	Signer Signer
	Sender *Sender
}

// NewEnv wires a Sender over client and signer.
func NewEnv(client LedgerClient, signer Signer, configProvider ConfigProvider) *Env {
	return &Env{
		Client: client,
		Signer: signer,
		Sender: NewSender(client, signer, configProvider),
	}
}

func (e *Env) wallet() ed25519.PublicKey {
	return e.Signer.PublicKey()
}

func (e *Env) validate() error {
	if e == nil || e.Client == nil || e.Signer == nil {
		return errors.New("env requires a ledger client and a signer")
	}
	return nil
}
