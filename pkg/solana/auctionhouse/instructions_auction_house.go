package auctionhouse

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	CreateAuctionHouseInstructionArgsSize = (1 + // bump
		1 + // fee_payer_bump
		1 + // treasury_bump
		2 + // seller_fee_basis_points
		1 + // requires_sign_off
		1) // can_change_sale_price
)

var createAuctionHouseSchema = &instructionSchema{
	name:          "create_auction_house",
	discriminator: []byte{221, 66, 242, 159, 249, 206, 134, 241},
	accounts: []accountSpec{
		account("treasuryMint"),
		signer("payer"),
		account("authority"),
		writable("feeWithdrawalDestination"),
		writable("treasuryWithdrawalDestination"),
		account("treasuryWithdrawalDestinationOwner"),
		writable("auctionHouse"),
		writable("auctionHouseFeeAccount"),
		writable("auctionHouseTreasury"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		fixed("ataProgram", SPL_ASSOCIATED_TOKEN_PROGRAM_ID),
		fixed("rent", SYSVAR_RENT_PUBKEY),
	},
}

var updateAuctionHouseSchema = &instructionSchema{
	name:          "update_auction_house",
	discriminator: []byte{84, 215, 2, 172, 241, 0, 245, 219},
	accounts: []accountSpec{
		account("treasuryMint"),
		signer("payer"),
		signer("authority"),
		account("newAuthority"),
		writable("feeWithdrawalDestination"),
		writable("treasuryWithdrawalDestination"),
		account("treasuryWithdrawalDestinationOwner"),
		writable("auctionHouse"),
		fixed("tokenProgram", SPL_TOKEN_PROGRAM_ID),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		fixed("ataProgram", SPL_ASSOCIATED_TOKEN_PROGRAM_ID),
		fixed("rent", SYSVAR_RENT_PUBKEY),
	},
}

type CreateAuctionHouseInstructionArgs struct {
	Bump                 uint8
	FeePayerBump         uint8
	TreasuryBump         uint8
	SellerFeeBasisPoints uint16
	RequiresSignOff      bool
	CanChangeSalePrice   bool
}

type CreateAuctionHouseInstructionAccounts struct {
	TreasuryMint                       ed25519.PublicKey
	Payer                              ed25519.PublicKey
	Authority                          ed25519.PublicKey
	FeeWithdrawalDestination           ed25519.PublicKey
	TreasuryWithdrawalDestination      ed25519.PublicKey
	TreasuryWithdrawalDestinationOwner ed25519.PublicKey
	AuctionHouse                       ed25519.PublicKey
	AuctionHouseFeeAccount             ed25519.PublicKey
	AuctionHouseTreasury               ed25519.PublicKey
}

func NewCreateAuctionHouseInstruction(
	accounts *CreateAuctionHouseInstructionAccounts,
	args *CreateAuctionHouseInstructionArgs,
) (solana.Instruction, error) {
	if args.SellerFeeBasisPoints > MaxBasisPoints {
		return solana.Instruction{}, errors.Wrapf(ErrArgumentOutOfRange, "seller fee basis points %d exceeds %d", args.SellerFeeBasisPoints, MaxBasisPoints)
	}

	data, offset := createAuctionHouseSchema.newData(CreateAuctionHouseInstructionArgsSize)
	putUint8(data, args.Bump, &offset)
	putUint8(data, args.FeePayerBump, &offset)
	putUint8(data, args.TreasuryBump, &offset)
	putUint16(data, args.SellerFeeBasisPoints, &offset)
	putBool(data, args.RequiresSignOff, &offset)
	putBool(data, args.CanChangeSalePrice, &offset)

	return createAuctionHouseSchema.build(data, map[string]ed25519.PublicKey{
		"treasuryMint":                       accounts.TreasuryMint,
		"payer":                              accounts.Payer,
		"authority":                          accounts.Authority,
		"feeWithdrawalDestination":           accounts.FeeWithdrawalDestination,
		"treasuryWithdrawalDestination":      accounts.TreasuryWithdrawalDestination,
		"treasuryWithdrawalDestinationOwner": accounts.TreasuryWithdrawalDestinationOwner,
		"auctionHouse":                       accounts.AuctionHouse,
		"auctionHouseFeeAccount":             accounts.AuctionHouseFeeAccount,
		"auctionHouseTreasury":               accounts.AuctionHouseTreasury,
	})
}

// UpdateAuctionHouseInstructionArgs leaves a setting unchanged when its field
// is nil.
type UpdateAuctionHouseInstructionArgs struct {
	SellerFeeBasisPoints *uint16
	RequiresSignOff      *bool
	CanChangeSalePrice   *bool
}

type UpdateAuctionHouseInstructionAccounts struct {
	TreasuryMint                       ed25519.PublicKey
	Payer                              ed25519.PublicKey
	Authority                          ed25519.PublicKey
	NewAuthority                       ed25519.PublicKey
	FeeWithdrawalDestination           ed25519.PublicKey
	TreasuryWithdrawalDestination      ed25519.PublicKey
	TreasuryWithdrawalDestinationOwner ed25519.PublicKey
	AuctionHouse                       ed25519.PublicKey
}

func NewUpdateAuctionHouseInstruction(
	accounts *UpdateAuctionHouseInstructionAccounts,
	args *UpdateAuctionHouseInstructionArgs,
) (solana.Instruction, error) {
	if args.SellerFeeBasisPoints != nil && *args.SellerFeeBasisPoints > MaxBasisPoints {
		return solana.Instruction{}, errors.Wrapf(ErrArgumentOutOfRange, "seller fee basis points %d exceeds %d", *args.SellerFeeBasisPoints, MaxBasisPoints)
	}

	argsSize := optionalSize(args.SellerFeeBasisPoints != nil, 2) +
		optionalSize(args.RequiresSignOff != nil, 1) +
		optionalSize(args.CanChangeSalePrice != nil, 1)

	data, offset := updateAuctionHouseSchema.newData(argsSize)
	putOptionalUint16(data, args.SellerFeeBasisPoints, &offset)
	putOptionalBool(data, args.RequiresSignOff, &offset)
	putOptionalBool(data, args.CanChangeSalePrice, &offset)

	return updateAuctionHouseSchema.build(data, map[string]ed25519.PublicKey{
		"treasuryMint":                       accounts.TreasuryMint,
		"payer":                              accounts.Payer,
		"authority":                          accounts.Authority,
		"newAuthority":                       accounts.NewAuthority,
		"feeWithdrawalDestination":           accounts.FeeWithdrawalDestination,
		"treasuryWithdrawalDestination":      accounts.TreasuryWithdrawalDestination,
		"treasuryWithdrawalDestinationOwner": accounts.TreasuryWithdrawalDestinationOwner,
		"auctionHouse":                       accounts.AuctionHouse,
	})
}
