package auctionhouse

import (
	"crypto/ed25519"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

var (
	AuctionHousePrefix    = []byte("auction_house")
	FeePayerPrefix        = []byte("fee_payer")
	TreasuryPrefix        = []byte("treasury")
	SignerPrefix          = []byte("signer")
	ListingReceiptPrefix  = []byte("listing_receipt")
	BidReceiptPrefix      = []byte("bid_receipt")
	PurchaseReceiptPrefix = []byte("purchase_receipt")
)

type GetAuctionHouseAddressArgs struct {
	Creator      ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
}

func GetAuctionHouseAddress(args *GetAuctionHouseAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		args.Creator,
		args.TreasuryMint,
	)
}

type GetAuctionHouseFeeAddressArgs struct {
	AuctionHouse ed25519.PublicKey
}

func GetAuctionHouseFeeAddress(args *GetAuctionHouseFeeAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		args.AuctionHouse,
		FeePayerPrefix,
	)
}

type GetAuctionHouseTreasuryAddressArgs struct {
	AuctionHouse ed25519.PublicKey
}

func GetAuctionHouseTreasuryAddress(args *GetAuctionHouseTreasuryAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		args.AuctionHouse,
		TreasuryPrefix,
	)
}

type GetEscrowPaymentAddressArgs struct {
	AuctionHouse ed25519.PublicKey
	Wallet       ed25519.PublicKey
}

func GetEscrowPaymentAddress(args *GetEscrowPaymentAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		args.AuctionHouse,
		args.Wallet,
	)
}

func GetProgramAsSignerAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		SignerPrefix,
	)
}

type GetTradeStateAddressArgs struct {
	Wallet       ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	TokenAccount ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
	TokenMint    ed25519.PublicKey
	Price        uint64
	TokenSize    uint64
}

// GetTradeStateAddress derives the address recording an order by Wallet for
// the tokens held in TokenAccount. Price and size are part of the seeds, so
// each distinct order gets its own trade state.
func GetTradeStateAddress(args *GetTradeStateAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		args.Wallet,
		args.AuctionHouse,
		args.TokenAccount,
		args.TreasuryMint,
		args.TokenMint,
		uint64Seed(args.Price),
		uint64Seed(args.TokenSize),
	)
}

type GetPublicBidTradeStateAddressArgs struct {
	Wallet       ed25519.PublicKey
	AuctionHouse ed25519.PublicKey
	TreasuryMint ed25519.PublicKey
	TokenMint    ed25519.PublicKey
	Price        uint64
	TokenSize    uint64
}

func GetPublicBidTradeStateAddress(args *GetPublicBidTradeStateAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AuctionHousePrefix,
		args.Wallet,
		args.AuctionHouse,
		args.TreasuryMint,
		args.TokenMint,
		uint64Seed(args.Price),
		uint64Seed(args.TokenSize),
	)
}

type GetListingReceiptAddressArgs struct {
	TradeState ed25519.PublicKey
}

func GetListingReceiptAddress(args *GetListingReceiptAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		ListingReceiptPrefix,
		args.TradeState,
	)
}

type GetBidReceiptAddressArgs struct {
	TradeState ed25519.PublicKey
}

func GetBidReceiptAddress(args *GetBidReceiptAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		BidReceiptPrefix,
		args.TradeState,
	)
}

type GetPurchaseReceiptAddressArgs struct {
	SellerTradeState ed25519.PublicKey
	BuyerTradeState  ed25519.PublicKey
}

func GetPurchaseReceiptAddress(args *GetPurchaseReceiptAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		PurchaseReceiptPrefix,
		args.SellerTradeState,
		args.BuyerTradeState,
	)
}
