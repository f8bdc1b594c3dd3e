package auctionhouse

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	BuyInstructionArgsSize = (1 + // trade_state_bump
		1 + // escrow_payment_bump
		8 + // buyer_price
		8) // token_size
)

var buyAccounts = []accountSpec{
	signer("wallet"),
	writable("paymentAccount"),
	account("transferAuthority"),
	account("treasuryMint"),
	account("tokenAccount"),
	account("metadata"),
	writable("escrowPaymentAccount"),
	account("authority"),
	account("auctionHouse"),
	writable("auctionHouseFeeAccount"),
	writable("buyerTradeState"),
	fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
	fixed("systemProgram", SYSTEM_PROGRAM_ID),
	fixed("rent", SYSVAR_RENT_PUBKEY),
}

var buySchema = &instructionSchema{
	name:          "buy",
	discriminator: []byte{102, 6, 61, 18, 1, 218, 235, 234},
	accounts:      buyAccounts,
}

var publicBuySchema = &instructionSchema{
	name:          "public_buy",
	discriminator: []byte{169, 84, 218, 35, 42, 206, 16, 171},
	accounts:      buyAccounts,
}

type BuyInstructionArgs struct {
	TradeStateBump    uint8
	EscrowPaymentBump uint8
	BuyerPrice        uint64
	TokenSize         uint64
}

// BuyInstructionAccounts are shared by private and public bids. The
// TransferAuthority is the wallet itself when paying in lamports, or the
// delegate approved on PaymentAccount when paying in SPL tokens.
type BuyInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	PaymentAccount         ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
	TreasuryMint           ed25519.PublicKey
	TokenAccount           ed25519.PublicKey
	Metadata               ed25519.PublicKey
	EscrowPaymentAccount   ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
	BuyerTradeState        ed25519.PublicKey
}

// NewBuyInstruction places a bid bound to the seller's token account.
func NewBuyInstruction(accounts *BuyInstructionAccounts, args *BuyInstructionArgs) (solana.Instruction, error) {
	return newBuyInstruction(buySchema, accounts, args)
}

// NewPublicBuyInstruction places a bid on the mint that any holder can fill.
func NewPublicBuyInstruction(accounts *BuyInstructionAccounts, args *BuyInstructionArgs) (solana.Instruction, error) {
	return newBuyInstruction(publicBuySchema, accounts, args)
}

func newBuyInstruction(
	schema *instructionSchema,
	accounts *BuyInstructionAccounts,
	args *BuyInstructionArgs,
) (solana.Instruction, error) {
	if args.TokenSize == 0 {
		return solana.Instruction{}, errors.Wrap(ErrArgumentOutOfRange, "token size must be positive")
	}

	data, offset := schema.newData(BuyInstructionArgsSize)
	putUint8(data, args.TradeStateBump, &offset)
	putUint8(data, args.EscrowPaymentBump, &offset)
	putUint64(data, args.BuyerPrice, &offset)
	putUint64(data, args.TokenSize, &offset)

	return schema.build(data, map[string]ed25519.PublicKey{
		"wallet":                 accounts.Wallet,
		"paymentAccount":         accounts.PaymentAccount,
		"transferAuthority":      accounts.TransferAuthority,
		"treasuryMint":           accounts.TreasuryMint,
		"tokenAccount":           accounts.TokenAccount,
		"metadata":               accounts.Metadata,
		"escrowPaymentAccount":   accounts.EscrowPaymentAccount,
		"authority":              accounts.Authority,
		"auctionHouse":           accounts.AuctionHouse,
		"auctionHouseFeeAccount": accounts.AuctionHouseFeeAccount,
		"buyerTradeState":        accounts.BuyerTradeState,
	})
}
