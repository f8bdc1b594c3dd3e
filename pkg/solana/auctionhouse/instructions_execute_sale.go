package auctionhouse

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	ExecuteSaleInstructionArgsSize = (1 + // escrow_payment_bump
		1 + // free_trade_state_bump
		1 + // program_as_signer_bump
		8 + // buyer_price
		8) // token_size
)

var executeSaleSchema = &instructionSchema{
	name:          "execute_sale",
	discriminator: []byte{37, 74, 217, 157, 79, 49, 35, 6},
	accounts: []accountSpec{
		writable("buyer"),
		writable("seller"),
		writable("tokenAccount"),
		account("tokenMint"),
		account("metadata"),
		account("treasuryMint"),
		writable("escrowPaymentAccount"),
		writable("sellerPaymentReceiptAccount"),
		writable("buyerReceiptTokenAccount"),
		account("authority"),
		account("auctionHouse"),
		writable("auctionHouseFeeAccount"),
		writable("auctionHouseTreasury"),
		writable("buyerTradeState"),
		writable("sellerTradeState"),
		writable("freeTradeState"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		fixed("ataProgram", SPL_ASSOCIATED_TOKEN_PROGRAM_ID),
		account("programAsSigner"),
		fixed("rent", SYSVAR_RENT_PUBKEY),
	},
}

type ExecuteSaleInstructionArgs struct {
	EscrowPaymentBump   uint8
	FreeTradeStateBump  uint8
	ProgramAsSignerBump uint8
	BuyerPrice          uint64
	TokenSize           uint64
}

// ExecuteSaleInstructionAccounts holds the fixed accounts of a sale plus the
// creators who receive royalties. Creators are appended after the fixed
// accounts in the order given.
type ExecuteSaleInstructionAccounts struct {
	Buyer                       ed25519.PublicKey
	Seller                      ed25519.PublicKey
	TokenAccount                ed25519.PublicKey
	TokenMint                   ed25519.PublicKey
	Metadata                    ed25519.PublicKey
	TreasuryMint                ed25519.PublicKey
	EscrowPaymentAccount        ed25519.PublicKey
	SellerPaymentReceiptAccount ed25519.PublicKey
	BuyerReceiptTokenAccount    ed25519.PublicKey
	Authority                   ed25519.PublicKey
	AuctionHouse                ed25519.PublicKey
	AuctionHouseFeeAccount      ed25519.PublicKey
	AuctionHouseTreasury        ed25519.PublicKey
	BuyerTradeState             ed25519.PublicKey
	SellerTradeState            ed25519.PublicKey
	FreeTradeState              ed25519.PublicKey
	ProgramAsSigner             ed25519.PublicKey

	RemainingAccounts []solana.AccountMeta
}

func NewExecuteSaleInstruction(
	accounts *ExecuteSaleInstructionAccounts,
	args *ExecuteSaleInstructionArgs,
) (solana.Instruction, error) {
	if args.TokenSize == 0 {
		return solana.Instruction{}, errors.Wrap(ErrArgumentOutOfRange, "token size must be positive")
	}

	data, offset := executeSaleSchema.newData(ExecuteSaleInstructionArgsSize)
	putUint8(data, args.EscrowPaymentBump, &offset)
	putUint8(data, args.FreeTradeStateBump, &offset)
	putUint8(data, args.ProgramAsSignerBump, &offset)
	putUint64(data, args.BuyerPrice, &offset)
	putUint64(data, args.TokenSize, &offset)

	instruction, err := executeSaleSchema.build(data, map[string]ed25519.PublicKey{
		"buyer":                       accounts.Buyer,
		"seller":                      accounts.Seller,
		"tokenAccount":                accounts.TokenAccount,
		"tokenMint":                   accounts.TokenMint,
		"metadata":                    accounts.Metadata,
		"treasuryMint":                accounts.TreasuryMint,
		"escrowPaymentAccount":        accounts.EscrowPaymentAccount,
		"sellerPaymentReceiptAccount": accounts.SellerPaymentReceiptAccount,
		"buyerReceiptTokenAccount":    accounts.BuyerReceiptTokenAccount,
		"authority":                   accounts.Authority,
		"auctionHouse":                accounts.AuctionHouse,
		"auctionHouseFeeAccount":      accounts.AuctionHouseFeeAccount,
		"auctionHouseTreasury":        accounts.AuctionHouseTreasury,
		"buyerTradeState":             accounts.BuyerTradeState,
		"sellerTradeState":            accounts.SellerTradeState,
		"freeTradeState":              accounts.FreeTradeState,
		"programAsSigner":             accounts.ProgramAsSigner,
	})
	if err != nil {
		return solana.Instruction{}, err
	}

	return instruction.WithRemainingAccounts(accounts.RemainingAccounts...), nil
}
