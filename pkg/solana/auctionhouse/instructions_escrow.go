package auctionhouse

import (
	"crypto/ed25519"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	EscrowInstructionArgsSize = (1 + // escrow_payment_bump
		8) // amount
)

var depositSchema = &instructionSchema{
	name:          "deposit",
	discriminator: []byte{242, 35, 198, 137, 82, 225, 242, 182},
	accounts: []accountSpec{
		signer("wallet"),
		writable("paymentAccount"),
		account("transferAuthority"),
		writable("escrowPaymentAccount"),
		account("treasuryMint"),
		account("authority"),
		account("auctionHouse"),
		writable("auctionHouseFeeAccount"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		fixed("rent", SYSVAR_RENT_PUBKEY),
	},
}

var withdrawSchema = &instructionSchema{
	name:          "withdraw",
	discriminator: []byte{183, 18, 70, 156, 148, 109, 161, 34},
	accounts: []accountSpec{
		account("wallet"),
		writable("receiptAccount"),
		writable("escrowPaymentAccount"),
		account("treasuryMint"),
		account("authority"),
		account("auctionHouse"),
		writable("auctionHouseFeeAccount"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		fixed("ataProgram", SPL_ASSOCIATED_TOKEN_PROGRAM_ID),
		fixed("rent", SYSVAR_RENT_PUBKEY),
	},
}

type EscrowInstructionArgs struct {
	EscrowPaymentBump uint8
	Amount            uint64
}

type DepositInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	PaymentAccount         ed25519.PublicKey
	TransferAuthority      ed25519.PublicKey
	EscrowPaymentAccount   ed25519.PublicKey
	TreasuryMint           ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
}

func NewDepositInstruction(
	accounts *DepositInstructionAccounts,
	args *EscrowInstructionArgs,
) (solana.Instruction, error) {
	data, offset := depositSchema.newData(EscrowInstructionArgsSize)
	putUint8(data, args.EscrowPaymentBump, &offset)
	putUint64(data, args.Amount, &offset)

	return depositSchema.build(data, map[string]ed25519.PublicKey{
		"wallet":                 accounts.Wallet,
		"paymentAccount":         accounts.PaymentAccount,
		"transferAuthority":      accounts.TransferAuthority,
		"escrowPaymentAccount":   accounts.EscrowPaymentAccount,
		"treasuryMint":           accounts.TreasuryMint,
		"authority":              accounts.Authority,
		"auctionHouse":           accounts.AuctionHouse,
		"auctionHouseFeeAccount": accounts.AuctionHouseFeeAccount,
	})
}

type WithdrawInstructionAccounts struct {
	Wallet                 ed25519.PublicKey
	ReceiptAccount         ed25519.PublicKey
	EscrowPaymentAccount   ed25519.PublicKey
	TreasuryMint           ed25519.PublicKey
	Authority              ed25519.PublicKey
	AuctionHouse           ed25519.PublicKey
	AuctionHouseFeeAccount ed25519.PublicKey
}

func NewWithdrawInstruction(
	accounts *WithdrawInstructionAccounts,
	args *EscrowInstructionArgs,
) (solana.Instruction, error) {
	data, offset := withdrawSchema.newData(EscrowInstructionArgsSize)
	putUint8(data, args.EscrowPaymentBump, &offset)
	putUint64(data, args.Amount, &offset)

	return withdrawSchema.build(data, map[string]ed25519.PublicKey{
		"wallet":                 accounts.Wallet,
		"receiptAccount":         accounts.ReceiptAccount,
		"escrowPaymentAccount":   accounts.EscrowPaymentAccount,
		"treasuryMint":           accounts.TreasuryMint,
		"authority":              accounts.Authority,
		"auctionHouse":           accounts.AuctionHouse,
		"auctionHouseFeeAccount": accounts.AuctionHouseFeeAccount,
	})
}
