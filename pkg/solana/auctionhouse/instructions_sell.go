package auctionhouse

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	SellInstructionArgsSize = (1 + // trade_state_bump
		1 + // free_trade_state_bump
		1 + // program_as_signer_bump
		8 + // buyer_price
		8) // token_size
)

var sellSchema = &instructionSchema{
	name:          "sell",
	discriminator: []byte{51, 230, 133, 164, 1, 127, 131, 173},
	accounts: []accountSpec{
		signer("wallet"),
		writable("tokenAccount"),
		account("metadata"),
		account("authority"),
		account("auctionHouse"),
		writable("auctionHouseFeeAccount"),
		writable("sellerTradeState"),
		writable("freeSellerTradeState"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		account("programAsSigner"),
		fixed("rent", SYSVAR_RENT_PUBKEY),
	},
}

type SellInstructionArgs struct {
	TradeStateBump      uint8
	FreeTradeStateBump  uint8
	ProgramAsSignerBump uint8
	BuyerPrice          uint64
	TokenSize           uint64
}

type SellInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	Metadata               ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	SellerTradeState       ed25519.PublicKey
	FreeSellerTradeState   ed25519.PublicKey
	ProgramAsSigner        ed25519.PublicKey
}

// NewSellInstruction lists TokenSize tokens from TokenAccount at BuyerPrice.
func NewSellInstruction(
	accounts *SellInstructionAccounts,
	args *SellInstructionArgs,
) (solana.Instruction, error) {
	if args.TokenSize == 0 {
		return solana.Instruction{}, errors.Wrap(ErrArgumentOutOfRange, "token size must be positive")
	}

	data, offset := sellSchema.newData(SellInstructionArgsSize)
	putUint8(data, args.TradeStateBump, &offset)
	putUint8(data, args.FreeTradeStateBump, &offset)
	putUint8(data, args.ProgramAsSignerBump, &offset)
	putUint64(data, args.BuyerPrice, &offset)
	putUint64(data, args.TokenSize, &offset)

	return sellSchema.build(data, map[string]ed25519.PublicKey{
		"wallet":                 accounts.Wallet,
		"tokenAccount":           accounts.TokenAccount,
		"metadata":               accounts.Metadata,
		"authority":              accounts.Authority,
		"auctionHouse":           accounts.AuctionHouse,
		"auctionHouseFeeAccount": accounts.AuctionHouseFeeAccount,
		"sellerTradeState":       accounts.SellerTradeState,
		"freeSellerTradeState":   accounts.FreeSellerTradeState,
		"programAsSigner":        accounts.ProgramAsSigner,
	})
}
