package auctionhouse

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	CancelInstructionArgsSize = (8 + // buyer_price
		8) // token_size
)

var cancelSchema = &instructionSchema{
	name:          "cancel",
	discriminator: []byte{232, 219, 223, 41, 219, 236, 220, 190},
	accounts: []accountSpec{
		writable("wallet"),
		writable("tokenAccount"),
		account("tokenMint"),
		account("authority"),
		account("auctionHouse"),
		writable("auctionHouseFeeAccount"),
		writable("tradeState"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
	},
}

type CancelInstructionArgs struct {
	BuyerPrice uint64
	TokenSize  uint64
}

type CancelInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	TokenMint              ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	TradeState             ed25519.PublicKey
}

// NewCancelInstruction closes either a listing or a bid trade state.
func NewCancelInstruction(
	accounts *CancelInstructionAccounts,
	args *CancelInstructionArgs,
) (solana.Instruction, error) {
	if args.TokenSize == 0 {
		return solana.Instruction{}, errors.Wrap(ErrArgumentOutOfRange, "token size must be positive")
	}

	data, offset := cancelSchema.newData(CancelInstructionArgsSize)
	putUint64(data, args.BuyerPrice, &offset)
	putUint64(data, args.TokenSize, &offset)

	return cancelSchema.build(data, map[string]ed25519.PublicKey{
		"wallet":                 accounts.Wallet,
		"tokenAccount":           accounts.TokenAccount,
		"tokenMint":              accounts.TokenMint,
		"authority":              accounts.Authority,
		"auctionHouse":           accounts.AuctionHouse,
		"auctionHouseFeeAccount": accounts.AuctionHouseFeeAccount,
		"tradeState":             accounts.TradeState,
	})
}
