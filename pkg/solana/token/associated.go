package token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

// AssociatedProgramKey is the associated token account program. It owns no
// state here; it only anchors the derivation of canonical token accounts.
//
// Current key: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
var AssociatedProgramKey = ed25519.PublicKey{140, 151, 37, 143, 78, 36, 137, 241, 187, 61, 16, 41, 20, 142, 13, 131, 11, 90, 19, 153, 218, 255, 16, 132, 4, 142, 123, 216, 219, 233, 248, 89}

// GetAssociatedAccountAndBump derives the canonical token account holding
// mint for wallet, along with its bump seed.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func GetAssociatedAccountAndBump(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	if len(wallet) != ed25519.PublicKeySize {
		return nil, 0, errors.Errorf("invalid wallet length: %d", len(wallet))
	}
	if len(mint) != ed25519.PublicKeySize {
		return nil, 0, errors.Errorf("invalid mint length: %d", len(mint))
	}

	return solana.FindProgramAddressAndBump(AssociatedProgramKey, wallet, ProgramKey, mint)
}

// GetAssociatedAccount is GetAssociatedAccountAndBump without the bump.
func GetAssociatedAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	account, _, err := GetAssociatedAccountAndBump(wallet, mint)
	return account, err
}
