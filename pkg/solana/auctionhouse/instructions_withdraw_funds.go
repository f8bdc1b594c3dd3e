package auctionhouse

import (
	"crypto/ed25519"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	WithdrawFundsInstructionArgsSize = 8 // amount
)

var withdrawFromTreasurySchema = &instructionSchema{
	name:          "withdraw_from_treasury",
	discriminator: []byte{0, 164, 86, 76, 56, 72, 12, 170},
	accounts: []accountSpec{
		account("treasuryMint"),
		signer("authority"),
		writable("treasuryWithdrawalDestination"),
		writable("auctionHouseTreasury"),
		writable("auctionHouse"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
	},
}

var withdrawFromFeeSchema = &instructionSchema{
	name:          "withdraw_from_fee",
	discriminator: []byte{179, 208, 190, 154, 32, 179, 19, 59},
	accounts: []accountSpec{
		signer("authority"),
		writable("feeWithdrawalDestination"),
		writable("auctionHouseFeeAccount"),
		writable("auctionHouse"),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
	},
}

type WithdrawFundsInstructionArgs struct {
	Amount uint64
}

type WithdrawFromTreasuryInstructionAccounts struct {
	TreasuryMint                  ed25519.PublicKey
	Authority                     ed25519.PublicKey
	TreasuryWithdrawalDestination ed25519.PublicKey
	AuctionHouseTreasury          ed25519.PublicKey
	AuctionHouse                  ed25519.PublicKey
}

// NewWithdrawFromTreasuryInstruction moves collected sale fees to the
// treasury withdrawal destination.
func NewWithdrawFromTreasuryInstruction(
	accounts *WithdrawFromTreasuryInstructionAccounts,
	args *WithdrawFundsInstructionArgs,
) (solana.Instruction, error) {
	data, offset := withdrawFromTreasurySchema.newData(WithdrawFundsInstructionArgsSize)
	putUint64(data, args.Amount, &offset)

	return withdrawFromTreasurySchema.build(data, map[string]ed25519.PublicKey{
		"treasuryMint":                  accounts.TreasuryMint,
		"authority":                     accounts.Authority,
		"treasuryWithdrawalDestination": accounts.TreasuryWithdrawalDestination,
		"auctionHouseTreasury":          accounts.AuctionHouseTreasury,
		"auctionHouse":                  accounts.AuctionHouse,
	})
}

type WithdrawFromFeeInstructionAccounts struct {
	Authority                ed25519.PublicKey
	FeeWithdrawalDestination ed25519.PublicKey
	AuctionHouseFeeAccount   ed25519.PublicKey
	AuctionHouse             ed25519.PublicKey
}

// NewWithdrawFromFeeInstruction drains lamports from the account that pays
// fees for auction house signed transactions.
func NewWithdrawFromFeeInstruction(
	accounts *WithdrawFromFeeInstructionAccounts,
	args *WithdrawFundsInstructionArgs,
) (solana.Instruction, error) {
	data, offset := withdrawFromFeeSchema.newData(WithdrawFundsInstructionArgsSize)
	putUint64(data, args.Amount, &offset)

	return withdrawFromFeeSchema.build(data, map[string]ed25519.PublicKey{
		"authority":                accounts.Authority,
		"feeWithdrawalDestination": accounts.FeeWithdrawalDestination,
		"auctionHouseFeeAccount":   accounts.AuctionHouseFeeAccount,
		"auctionHouse":             accounts.AuctionHouse,
	})
}
