package metaplex

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

type SetStoreV2InstructionArgs struct {
	Public bool

	// SettingsURI is cleared when empty.
	SettingsURI string
}

type SetStoreV2InstructionAccounts struct {
	Store  ed25519.PublicKey
	Config ed25519.PublicKey
	Admin  ed25519.PublicKey
	Payer  ed25519.PublicKey
}

// NewSetStoreV2Instruction creates or updates the storefront of Admin and
// points its config at SettingsURI.
func NewSetStoreV2Instruction(
	accounts *SetStoreV2InstructionAccounts,
	args *SetStoreV2InstructionArgs,
) solana.Instruction {
	// Borsh: instruction tag, public flag, then Option<String>.
	data := []byte{byte(InstructionTypeSetStoreV2), 0, 0}
	if args.Public {
		data[1] = 1
	}
	if len(args.SettingsURI) > 0 {
		data[2] = 1

		length := make([]byte, 4)
		binary.LittleEndian.PutUint32(length, uint32(len(args.SettingsURI)))
		data = append(data, length...)
		data = append(data, args.SettingsURI...)
	}

	return solana.NewInstruction(
		PROGRAM_ID,
		data,
		solana.NewAccountMeta(accounts.Store, false),
		solana.NewAccountMeta(accounts.Config, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
		solana.NewReadonlyAccountMeta(accounts.Payer, true),
		solana.NewReadonlyAccountMeta(SPL_TOKEN_PROGRAM_ID, false),
		solana.NewReadonlyAccountMeta(TOKEN_VAULT_PROGRAM_ID, false),
		solana.NewReadonlyAccountMeta(TOKEN_METADATA_PROGRAM_ID, false),
		solana.NewReadonlyAccountMeta(AUCTION_PROGRAM_ID, false),
		solana.NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false),
		solana.NewReadonlyAccountMeta(SYSVAR_RENT_PUBKEY, false),
	)
}
