package marketplace

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

const listingsMetricsStructName = "marketplace.listings_client"

type PostListingParams struct {
	Nft       *Nft
	Price     uint64
	TokenSize uint64
}

type CancelListingParams struct {
	Listing *Listing
	Nft     *Nft
}

type BuyListingParams struct {
	Listing *Listing
	Nft     *Nft
}

// ListingsClient composes sell orders on a single auction house for the
// wallet of its Env.
type ListingsClient struct {
	*houseClient
}

func NewListingsClient(env *Env, house *AuctionHouse) (*ListingsClient, error) {
	c, err := newHouseClient(env, house, "listings")
	if err != nil {
		return nil, err
	}
	return &ListingsClient{houseClient: c}, nil
}

// Post lists the wallet's tokens at Price: [sell, print_listing_receipt].
func (c *ListingsClient) Post(ctx context.Context, params PostListingParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, listingsMetricsStructName, "Post")
	defer tracer.End()

	pending, err := c.post(params.Nft, params.Price, params.TokenSize)
	tracer.OnError(err)
	return pending, err
}

func (c *ListingsClient) post(nft *Nft, price, size uint64) (*PendingTransaction, error) {
	if err := requireNft(nft); err != nil {
		return nil, err
	}

	side, ops, err := c.listOps(nft, price, size)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":      "Post",
		"mint":        base58.Encode(nft.MintAddress),
		"trade_state": base58.Encode(side.tradeState),
		"price":       price,
	}).Debug("composed listing")

	return Compose(ops)
}

// Cancel closes a listing by the wallet: [cancel, cancel_listing_receipt].
func (c *ListingsClient) Cancel(ctx context.Context, params CancelListingParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, listingsMetricsStructName, "Cancel")
	defer tracer.End()

	pending, err := c.cancel(params)
	tracer.OnError(err)
	return pending, err
}

func (c *ListingsClient) cancel(params CancelListingParams) (*PendingTransaction, error) {
	if err := requireNft(params.Nft); err != nil {
		return nil, err
	}
	if err := requireListing(params.Listing); err != nil {
		return nil, err
	}

	nft, listing := params.Nft, params.Listing

	side, _, err := c.deriveSellSide(c.env.wallet(), nft.Owner.AssociatedTokenAccountAddress, nft.MintAddress, listing.Price, listing.TokenSize)
	if err != nil {
		return nil, err
	}
	if err := checkTradeState(listing.TradeState, side.tradeState); err != nil {
		return nil, err
	}

	cancel, err := c.cancelOp(side.tradeState, side.tokenAccount, nft.MintAddress, listing.Price, listing.TokenSize)
	if err != nil {
		return nil, err
	}

	cancelReceipt, err := auctionhouse.NewCancelListingReceiptInstruction(&auctionhouse.CancelReceiptInstructionAccounts{
		Receipt: side.receipt,
	})
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":      "Cancel",
		"trade_state": base58.Encode(side.tradeState),
	}).Debug("composed listing cancellation")

	return Compose([]solana.Instruction{cancel, cancelReceipt})
}

// Buy fills a listing at its price with the wallet as buyer:
// [public_buy, print_bid_receipt, execute_sale, print_purchase_receipt],
// bracketed by an approve and revoke when paying in SPL tokens.
func (c *ListingsClient) Buy(ctx context.Context, params BuyListingParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, listingsMetricsStructName, "Buy")
	defer tracer.End()

	pending, err := c.buy(params)
	tracer.OnError(err)
	return pending, err
}

func (c *ListingsClient) buy(params BuyListingParams) (*PendingTransaction, error) {
	if err := requireNft(params.Nft); err != nil {
		return nil, err
	}
	if err := requireListing(params.Listing); err != nil {
		return nil, err
	}

	nft, listing := params.Nft, params.Listing

	mode, err := c.paymentMode()
	if err != nil {
		return nil, err
	}

	seller, _, err := c.deriveSellSide(listing.Seller, nft.Owner.AssociatedTokenAccountAddress, nft.MintAddress, listing.Price, listing.TokenSize)
	if err != nil {
		return nil, err
	}
	if err := checkTradeState(listing.TradeState, seller.tradeState); err != nil {
		return nil, err
	}

	funding, err := mode.Fund(c.env.wallet(), listing.Price)
	if err != nil {
		return nil, err
	}

	buyer, bid, err := c.bidOps(funding, nft, listing.Price, listing.TokenSize)
	if err != nil {
		return nil, err
	}

	sale, err := c.saleOps(mode, nft, seller, buyer, listing.Price, listing.TokenSize)
	if err != nil {
		return nil, err
	}

	ops, err := funding.Bracket(append(bid, sale...)...)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":       "Buy",
		"payment_mode": mode.Kind.String(),
		"seller":       base58.Encode(listing.Seller),
		"price":        listing.Price,
	}).Debug("composed listing purchase")

	return Compose(ops, funding.Signers()...)
}
