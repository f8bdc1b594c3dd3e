package auctionhouse

import (
	"crypto/ed25519"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	PrintReceiptInstructionArgsSize = 1 // receipt_bump
)

// Receipt instructions inspect the instruction that precedes them in the same
// transaction through the instructions sysvar, so they must directly follow
// the sell, buy or execute_sale they record.

var printListingReceiptSchema = &instructionSchema{
	name:          "print_listing_receipt",
	discriminator: []byte{207, 107, 44, 160, 75, 222, 195, 27},
	accounts:      printReceiptAccounts,
}

var printBidReceiptSchema = &instructionSchema{
	name:          "print_bid_receipt",
	discriminator: []byte{94, 249, 90, 230, 239, 64, 68, 218},
	accounts:      printReceiptAccounts,
}

var printReceiptAccounts = []accountSpec{
	writable("receipt"),
	writableSigner("bookkeeper"),
	fixed("systemProgram", SYSTEM_PROGRAM_ID),
	fixed("rent", SYSVAR_RENT_PUBKEY),
	fixed("instruction", SYSVAR_INSTRUCTIONS_PUBKEY),
}

var printPurchaseReceiptSchema = &instructionSchema{
	name:          "print_purchase_receipt",
	discriminator: []byte{227, 154, 251, 7, 180, 56, 100, 143},
	accounts: []accountSpec{
		writable("purchaseReceipt"),
		writable("listingReceipt"),
		writable("bidReceipt"),
		writableSigner("bookkeeper"),
		fixed("systemProgram", SYSTEM_PROGRAM_ID),
		fixed("rent", SYSVAR_RENT_PUBKEY),
		fixed("instruction", SYSVAR_INSTRUCTIONS_PUBKEY),
	},
}

var cancelListingReceiptSchema = &instructionSchema{
	name:          "cancel_listing_receipt",
	discriminator: []byte{171, 59, 138, 126, 246, 189, 91, 11},
	accounts:      cancelReceiptAccounts,
}

var cancelBidReceiptSchema = &instructionSchema{
	name:          "cancel_bid_receipt",
	discriminator: []byte{246, 108, 27, 229, 220, 42, 176, 43},
	accounts:      cancelReceiptAccounts,
}

var cancelReceiptAccounts = []accountSpec{
	writable("receipt"),
	fixed("systemProgram", SYSTEM_PROGRAM_ID),
	fixed("instruction", SYSVAR_INSTRUCTIONS_PUBKEY),
}

type PrintReceiptInstructionArgs struct {
	ReceiptBump uint8
}

type PrintReceiptInstructionAccounts struct {
	Receipt    ed25519.PublicKey
	Bookkeeper ed25519.PublicKey
}

// NewPrintListingReceiptInstruction records the sell that precedes it.
func NewPrintListingReceiptInstruction(
	accounts *PrintReceiptInstructionAccounts,
	args *PrintReceiptInstructionArgs,
) (solana.Instruction, error) {
	return newPrintReceiptInstruction(printListingReceiptSchema, accounts, args)
}

// NewPrintBidReceiptInstruction records the buy or public_buy that precedes it.
func NewPrintBidReceiptInstruction(
	accounts *PrintReceiptInstructionAccounts,
	args *PrintReceiptInstructionArgs,
) (solana.Instruction, error) {
	return newPrintReceiptInstruction(printBidReceiptSchema, accounts, args)
}

func newPrintReceiptInstruction(
	schema *instructionSchema,
	accounts *PrintReceiptInstructionAccounts,
	args *PrintReceiptInstructionArgs,
) (solana.Instruction, error) {
	data, offset := schema.newData(PrintReceiptInstructionArgsSize)
	putUint8(data, args.ReceiptBump, &offset)

	return schema.build(data, map[string]ed25519.PublicKey{
		"receipt":    accounts.Receipt,
		"bookkeeper": accounts.Bookkeeper,
	})
}

type PrintPurchaseReceiptInstructionArgs struct {
	PurchaseReceiptBump uint8
}

type PrintPurchaseReceiptInstructionAccounts struct {
	PurchaseReceipt ed25519.PublicKey
	ListingReceipt  ed25519.PublicKey
	BidReceipt      ed25519.PublicKey
	Bookkeeper      ed25519.PublicKey
}

// NewPrintPurchaseReceiptInstruction records the execute_sale that precedes it.
func NewPrintPurchaseReceiptInstruction(
	accounts *PrintPurchaseReceiptInstructionAccounts,
	args *PrintPurchaseReceiptInstructionArgs,
) (solana.Instruction, error) {
	data, offset := printPurchaseReceiptSchema.newData(PrintReceiptInstructionArgsSize)
	putUint8(data, args.PurchaseReceiptBump, &offset)

	return printPurchaseReceiptSchema.build(data, map[string]ed25519.PublicKey{
		"purchaseReceipt": accounts.PurchaseReceipt,
		"listingReceipt":  accounts.ListingReceipt,
		"bidReceipt":      accounts.BidReceipt,
		"bookkeeper":      accounts.Bookkeeper,
	})
}

type CancelReceiptInstructionAccounts struct {
	Receipt ed25519.PublicKey
}

// NewCancelListingReceiptInstruction marks a listing receipt canceled. It
// must directly follow the cancel it records.
func NewCancelListingReceiptInstruction(accounts *CancelReceiptInstructionAccounts) (solana.Instruction, error) {
	data, _ := cancelListingReceiptSchema.newData(0)
	return cancelListingReceiptSchema.build(data, map[string]ed25519.PublicKey{
		"receipt": accounts.Receipt,
	})
}

// NewCancelBidReceiptInstruction marks a bid receipt canceled. It must
// directly follow the cancel it records.
func NewCancelBidReceiptInstruction(accounts *CancelReceiptInstructionAccounts) (solana.Instruction, error) {
	data, _ := cancelBidReceiptSchema.newData(0)
	return cancelBidReceiptSchema.build(data, map[string]ed25519.PublicKey{
		"receipt": accounts.Receipt,
	})
}
