package metaplex

import (
	"crypto/ed25519"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

var (
	MetadataPrefix = []byte("metadata")
	MetaplexPrefix = []byte("metaplex")
	ConfigPrefix   = []byte("config")
)

// GetMetadataAddress returns the token metadata account of mint.
func GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		TOKEN_METADATA_PROGRAM_ID,
		MetadataPrefix,
		TOKEN_METADATA_PROGRAM_ID,
		mint,
	)
}

// GetStoreAddress returns the storefront owned by owner.
func GetStoreAddress(owner ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		MetaplexPrefix,
		PROGRAM_ID,
		owner,
	)
}

// GetStoreConfigAddress returns the account holding the store's settings URI.
func GetStoreConfigAddress(store ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		MetaplexPrefix,
		PROGRAM_ID,
		ConfigPrefix,
		store,
	)
}
