package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

// houseClient is shared by the clients that trade on a single auction house.
type houseClient struct {
	log   *logrus.Entry
	env   *Env
	house *AuctionHouse
}

func newHouseClient(env *Env, house *AuctionHouse, area string) (*houseClient, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	if err := verifyHouse(house); err != nil {
		return nil, err
	}

	return &houseClient{
		log:   logrus.StandardLogger().WithField("type", "marketplace/"+area),
		env:   env,
		house: house,
	}, nil
}

// paymentMode is resolved once per intent.
func (c *houseClient) paymentMode() (PaymentMode, error) {
	return ResolvePaymentMode(c.house.TreasuryMint)
}

// sellSide is a listing by seller and the receipt recording it.
type sellSide struct {
	seller             ed25519.PublicKey
	tokenAccount       ed25519.PublicKey
	tradeState         ed25519.PublicKey
	freeTradeState     ed25519.PublicKey
	freeTradeStateBump uint8
	receipt            ed25519.PublicKey
}

// deriveSellSide computes the trade states of a listing by seller of the
// tokens held in tokenAccount.
func (c *houseClient) deriveSellSide(seller, tokenAccount, tokenMint ed25519.PublicKey, price, size uint64) (*sellSide, uint8, error) {
	tradeState, tradeStateBump, err := auctionhouse.GetTradeStateAddress(&auctionhouse.GetTradeStateAddressArgs{
		Wallet:       seller,
		AuctionHouse: c.house.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: c.house.TreasuryMint,
		TokenMint:    tokenMint,
		Price:        price,
		TokenSize:    size,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving seller trade state")
	}

	freeTradeState, freeTradeStateBump, err := auctionhouse.GetTradeStateAddress(&auctionhouse.GetTradeStateAddressArgs{
		Wallet:       seller,
		AuctionHouse: c.house.Address,
		TokenAccount: tokenAccount,
		TreasuryMint: c.house.TreasuryMint,
		TokenMint:    tokenMint,
		Price:        0,
		TokenSize:    size,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving free trade state")
	}

	receipt, _, err := auctionhouse.GetListingReceiptAddress(&auctionhouse.GetListingReceiptAddressArgs{
		TradeState: tradeState,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving listing receipt")
	}

	return &sellSide{
		seller:             seller,
		tokenAccount:       tokenAccount,
		tradeState:         tradeState,
		freeTradeState:     freeTradeState,
		freeTradeStateBump: freeTradeStateBump,
		receipt:            receipt,
	}, tradeStateBump, nil
}

// listOps returns [sell, print_listing_receipt] for a listing by the wallet.
func (c *houseClient) listOps(nft *Nft, price, size uint64) (*sellSide, []solana.Instruction, error) {
	seller := c.env.wallet()

	side, tradeStateBump, err := c.deriveSellSide(seller, nft.Owner.AssociatedTokenAccountAddress, nft.MintAddress, price, size)
	if err != nil {
		return nil, nil, err
	}

	programAsSigner, programAsSignerBump, err := auctionhouse.GetProgramAsSignerAddress()
	if err != nil {
		return nil, nil, errors.Wrap(err, "error deriving program as signer")
	}

	sell, err := auctionhouse.NewSellInstruction(
		&auctionhouse.SellInstructionAccounts{
			Wallet:                 seller,
			TokenAccount:           side.tokenAccount,
			Metadata:               nft.Address,
			Authority:              c.house.Authority,
			AuctionHouse:           c.house.Address,
			AuctionHouseFeeAccount: c.house.AuctionHouseFeeAccount,
			SellerTradeState:       side.tradeState,
			FreeSellerTradeState:   side.freeTradeState,
			ProgramAsSigner:        programAsSigner,
		},
		&auctionhouse.SellInstructionArgs{
			TradeStateBump:      tradeStateBump,
			FreeTradeStateBump:  side.freeTradeStateBump,
			ProgramAsSignerBump: programAsSignerBump,
			BuyerPrice:          price,
			TokenSize:           size,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	_, receiptBump, err := auctionhouse.GetListingReceiptAddress(&auctionhouse.GetListingReceiptAddressArgs{
		TradeState: side.tradeState,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "error deriving listing receipt")
	}

	printReceipt, err := auctionhouse.NewPrintListingReceiptInstruction(
		&auctionhouse.PrintReceiptInstructionAccounts{
			Receipt:    side.receipt,
			Bookkeeper: seller,
		},
		&auctionhouse.PrintReceiptInstructionArgs{
			ReceiptBump: receiptBump,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	return side, []solana.Instruction{sell, printReceipt}, nil
}

// buySide is a public bid by buyer and the receipt recording it.
type buySide struct {
	buyer             ed25519.PublicKey
	tradeState        ed25519.PublicKey
	escrow            ed25519.PublicKey
	escrowPaymentBump uint8
	receipt           ed25519.PublicKey
}

func (c *houseClient) deriveBuySide(buyer, tokenMint ed25519.PublicKey, price, size uint64) (*buySide, uint8, error) {
	tradeState, tradeStateBump, err := auctionhouse.GetPublicBidTradeStateAddress(&auctionhouse.GetPublicBidTradeStateAddressArgs{
		Wallet:       buyer,
		AuctionHouse: c.house.Address,
		TreasuryMint: c.house.TreasuryMint,
		TokenMint:    tokenMint,
		Price:        price,
		TokenSize:    size,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving buyer trade state")
	}

	escrow, escrowPaymentBump, err := auctionhouse.GetEscrowPaymentAddress(&auctionhouse.GetEscrowPaymentAddressArgs{
		AuctionHouse: c.house.Address,
		Wallet:       buyer,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving escrow payment account")
	}

	receipt, _, err := auctionhouse.GetBidReceiptAddress(&auctionhouse.GetBidReceiptAddressArgs{
		TradeState: tradeState,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving bid receipt")
	}

	return &buySide{
		buyer:             buyer,
		tradeState:        tradeState,
		escrow:            escrow,
		escrowPaymentBump: escrowPaymentBump,
		receipt:           receipt,
	}, tradeStateBump, nil
}

// bidOps returns [public_buy, print_bid_receipt] for a public bid funded by
// funding. The caller brackets them.
func (c *houseClient) bidOps(funding *Funding, nft *Nft, price, size uint64) (*buySide, []solana.Instruction, error) {
	side, tradeStateBump, err := c.deriveBuySide(funding.Wallet, nft.MintAddress, price, size)
	if err != nil {
		return nil, nil, err
	}

	publicBuy, err := auctionhouse.NewPublicBuyInstruction(
		&auctionhouse.BuyInstructionAccounts{
			Wallet:                 funding.Wallet,
			PaymentAccount:         funding.PaymentAccount,
			TransferAuthority:      funding.TransferAuthority,
			TreasuryMint:           c.house.TreasuryMint,
			TokenAccount:           nft.Owner.AssociatedTokenAccountAddress,
			Metadata:               nft.Address,
			EscrowPaymentAccount:   side.escrow,
			Authority:              c.house.Authority,
			AuctionHouse:           c.house.Address,
			AuctionHouseFeeAccount: c.house.AuctionHouseFeeAccount,
			BuyerTradeState:        side.tradeState,
		},
		&auctionhouse.BuyInstructionArgs{
			TradeStateBump:    tradeStateBump,
			EscrowPaymentBump: side.escrowPaymentBump,
			BuyerPrice:        price,
			TokenSize:         size,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	_, receiptBump, err := auctionhouse.GetBidReceiptAddress(&auctionhouse.GetBidReceiptAddressArgs{
		TradeState: side.tradeState,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "error deriving bid receipt")
	}

	printReceipt, err := auctionhouse.NewPrintBidReceiptInstruction(
		&auctionhouse.PrintReceiptInstructionAccounts{
			Receipt:    side.receipt,
			Bookkeeper: funding.Wallet,
		},
		&auctionhouse.PrintReceiptInstructionArgs{
			ReceiptBump: receiptBump,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	return side, []solana.Instruction{publicBuy, printReceipt}, nil
}

// saleOps returns [execute_sale, print_purchase_receipt] settling the bid
// against the listing, with creator royalty accounts appended to the sale.
func (c *houseClient) saleOps(mode PaymentMode, nft *Nft, seller *sellSide, buyer *buySide, price, size uint64) ([]solana.Instruction, error) {
	if err := nft.Validate(); err != nil {
		return nil, err
	}

	programAsSigner, programAsSignerBump, err := auctionhouse.GetProgramAsSignerAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving program as signer")
	}

	sellerPaymentReceiptAccount, err := mode.ReceivingAccount(seller.seller)
	if err != nil {
		return nil, err
	}

	buyerReceiptTokenAccount, err := ReceivingTokenAccount(buyer.buyer, nft.MintAddress)
	if err != nil {
		return nil, err
	}

	royalties, err := ExpandRoyaltyAccounts(nft.Creators, mode)
	if err != nil {
		return nil, err
	}

	executeSale, err := auctionhouse.NewExecuteSaleInstruction(
		&auctionhouse.ExecuteSaleInstructionAccounts{
			Buyer:                       buyer.buyer,
			Seller:                      seller.seller,
			TokenAccount:                seller.tokenAccount,
			TokenMint:                   nft.MintAddress,
			Metadata:                    nft.Address,
			TreasuryMint:                c.house.TreasuryMint,
			EscrowPaymentAccount:        buyer.escrow,
			SellerPaymentReceiptAccount: sellerPaymentReceiptAccount,
			BuyerReceiptTokenAccount:    buyerReceiptTokenAccount,
			Authority:                   c.house.Authority,
			AuctionHouse:                c.house.Address,
			AuctionHouseFeeAccount:      c.house.AuctionHouseFeeAccount,
			AuctionHouseTreasury:        c.house.AuctionHouseTreasury,
			BuyerTradeState:             buyer.tradeState,
			SellerTradeState:            seller.tradeState,
			FreeTradeState:              seller.freeTradeState,
			ProgramAsSigner:             programAsSigner,
			RemainingAccounts:           royalties,
		},
		&auctionhouse.ExecuteSaleInstructionArgs{
			EscrowPaymentBump:   buyer.escrowPaymentBump,
			FreeTradeStateBump:  seller.freeTradeStateBump,
			ProgramAsSignerBump: programAsSignerBump,
			BuyerPrice:          price,
			TokenSize:           size,
		},
	)
	if err != nil {
		return nil, err
	}

	purchaseReceipt, purchaseReceiptBump, err := auctionhouse.GetPurchaseReceiptAddress(&auctionhouse.GetPurchaseReceiptAddressArgs{
		SellerTradeState: seller.tradeState,
		BuyerTradeState:  buyer.tradeState,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving purchase receipt")
	}

	printReceipt, err := auctionhouse.NewPrintPurchaseReceiptInstruction(
		&auctionhouse.PrintPurchaseReceiptInstructionAccounts{
			PurchaseReceipt: purchaseReceipt,
			ListingReceipt:  seller.receipt,
			BidReceipt:      buyer.receipt,
			Bookkeeper:      c.env.wallet(),
		},
		&auctionhouse.PrintPurchaseReceiptInstructionArgs{
			PurchaseReceiptBump: purchaseReceiptBump,
		},
	)
	if err != nil {
		return nil, err
	}

	return []solana.Instruction{executeSale, printReceipt}, nil
}

// cancelOp closes tradeState, owned by the wallet, for the tokens in
// tokenAccount.
func (c *houseClient) cancelOp(tradeState, tokenAccount, tokenMint ed25519.PublicKey, price, size uint64) (solana.Instruction, error) {
	return auctionhouse.NewCancelInstruction(
		&auctionhouse.CancelInstructionAccounts{
			Wallet:                 c.env.wallet(),
			TokenAccount:           tokenAccount,
			TokenMint:              tokenMint,
			Authority:              c.house.Authority,
			AuctionHouse:           c.house.Address,
			AuctionHouseFeeAccount: c.house.AuctionHouseFeeAccount,
			TradeState:             tradeState,
		},
		&auctionhouse.CancelInstructionArgs{
			BuyerPrice: price,
			TokenSize:  size,
		},
	)
}

// checkTradeState compares a recorded trade state against the derived one.
// An unset recorded value is accepted.
func checkTradeState(recorded, derived ed25519.PublicKey) error {
	if len(recorded) == 0 || bytes.Equal(recorded, derived) {
		return nil
	}
	return errors.Wrapf(ErrTradeStateMismatch, "recorded %s, derived %s", base58.Encode(recorded), base58.Encode(derived))
}

// ReceivingTokenAccount is the associated account through which wallet
// receives tokens of mint.
func ReceivingTokenAccount(wallet, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return PaymentMode{Kind: PaymentKindFungibleToken, Mint: mint}.ReceivingAccount(wallet)
}

func requireNft(nft *Nft) error {
	if nft == nil {
		return errors.New("nft is required")
	}
	return nft.Validate()
}

func requireListing(listing *Listing) error {
	if listing == nil {
		return errors.New("listing is required")
	}
	return nil
}

func requireOffer(offer *Offer) error {
	if offer == nil {
		return errors.New("offer is required")
	}
	return nil
}
