package marketplace

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/token"
)

type PaymentKind uint8

const (
	PaymentKindNative PaymentKind = iota
	PaymentKindFungibleToken
)

func (k PaymentKind) String() string {
	switch k {
	case PaymentKindNative:
		return "native"
	case PaymentKindFungibleToken:
		return "fungible_token"
	}
	return "unknown"
}

// PaymentMode is resolved once per intent from the auction house treasury
// mint and threaded through every step that depends on the currency.
type PaymentMode struct {
	Kind PaymentKind
	Mint ed25519.PublicKey
}

var zeroKey = make([]byte, ed25519.PublicKeySize)

// ResolvePaymentMode maps the wrapped SOL mint to native payments and any
// other mint to SPL token payments.
func ResolvePaymentMode(mint ed25519.PublicKey) (PaymentMode, error) {
	if len(mint) != ed25519.PublicKeySize || bytes.Equal(mint, zeroKey) {
		return PaymentMode{}, errors.Wrapf(ErrUnsupportedPaymentMode, "invalid treasury mint %q", base58.Encode(mint))
	}

	if token.IsNativeMint(mint) {
		return PaymentMode{Kind: PaymentKindNative, Mint: mint}, nil
	}
	return PaymentMode{Kind: PaymentKindFungibleToken, Mint: mint}, nil
}

func (m PaymentMode) IsNative() bool {
	return m.Kind == PaymentKindNative
}

// ReceivingAccount returns where wallet receives funds: the wallet itself for
// lamports, or its associated token account for the mint.
func (m PaymentMode) ReceivingAccount(wallet ed25519.PublicKey) (ed25519.PublicKey, error) {
	if m.IsNative() {
		return wallet, nil
	}

	ata, err := token.GetAssociatedAccount(wallet, m.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving associated token account")
	}
	return ata, nil
}

// Funding describes how wallet pays amount into the auction house.
type Funding struct {
	Mode              PaymentMode
	Wallet            ed25519.PublicKey
	PaymentAccount    ed25519.PublicKey
	TransferAuthority ed25519.PublicKey
	Amount            uint64

	// authority is only set in fungible token mode. It must never outlive
	// the batch it signs.
	authority ed25519.PrivateKey
}

// Fund resolves the payment account and transfer authority for wallet. Token
// payments get a freshly generated transfer authority on every call.
func (m PaymentMode) Fund(wallet ed25519.PublicKey, amount uint64) (*Funding, error) {
	if m.IsNative() {
		return &Funding{
			Mode:              m,
			Wallet:            wallet,
			PaymentAccount:    wallet,
			TransferAuthority: wallet,
			Amount:            amount,
		}, nil
	}

	paymentAccount, err := m.ReceivingAccount(wallet)
	if err != nil {
		return nil, err
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "error generating transfer authority")
	}

	return &Funding{
		Mode:              m,
		Wallet:            wallet,
		PaymentAccount:    paymentAccount,
		TransferAuthority: pub,
		Amount:            amount,
		authority:         priv,
	}, nil
}

// Signers returns the keys that must co-sign a batch containing the
// bracketed operations.
func (f *Funding) Signers() []ed25519.PrivateKey {
	if f.authority == nil {
		return nil
	}
	return []ed25519.PrivateKey{f.authority}
}

// Bracket surrounds ops with an approve of Amount to the transfer authority
// and a revoke, and marks the authority as a signer of every op referencing
// it. Native funding returns ops unchanged.
func (f *Funding) Bracket(ops ...solana.Instruction) ([]solana.Instruction, error) {
	if len(ops) == 0 {
		return nil, ErrEmptyBatch
	}

	if f.Mode.IsNative() {
		return ops, nil
	}

	bracketed := make([]solana.Instruction, 0, len(ops)+2)
	bracketed = append(bracketed, token.Approve(f.PaymentAccount, f.TransferAuthority, f.Wallet, f.Amount))
	for _, op := range ops {
		promoted, _ := op.WithSigner(f.TransferAuthority)
		bracketed = append(bracketed, promoted)
	}
	bracketed = append(bracketed, token.Revoke(f.PaymentAccount, f.Wallet))

	return bracketed, nil
}
