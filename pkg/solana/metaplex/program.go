package metaplex

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/holaplex/marketplace-go/pkg/solana/system"
	"github.com/holaplex/marketplace-go/pkg/solana/token"
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("p1exdMJcjVao65QdewkaZRUnU6VPSXhus9n2GzWfh98")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	TOKEN_METADATA_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"))
	TOKEN_VAULT_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("vau1zxA2LbssAUEF7Gpw91zMM1LvXrvpzJtmZ58rPsn"))
	AUCTION_PROGRAM_ID        = ed25519.PublicKey(mustBase58Decode("auctxRXPeJoc4817jDhf4HbjnhEcr1cCXenosMCK5sU"))

	SYSTEM_PROGRAM_ID    = system.ProgramAccount()
	SPL_TOKEN_PROGRAM_ID = token.ProgramKey
	SYSVAR_RENT_PUBKEY   = system.RentSysVar
)

type InstructionType uint8

const (
	InstructionTypeSetStoreV2 InstructionType = 23
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
