package marketplace

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

const offersMetricsStructName = "marketplace.offers_client"

type MakeOfferParams struct {
	Nft       *Nft
	Price     uint64
	TokenSize uint64
}

type CancelOfferParams struct {
	Offer *Offer
	Nft   *Nft
}

type AcceptOfferParams struct {
	Offer *Offer
	Nft   *Nft
}

// OffersClient composes public bids on a single auction house.
type OffersClient struct {
	*houseClient
}

func NewOffersClient(env *Env, house *AuctionHouse) (*OffersClient, error) {
	c, err := newHouseClient(env, house, "offers")
	if err != nil {
		return nil, err
	}
	return &OffersClient{houseClient: c}, nil
}

// Make places a public bid of Price from the wallet:
// [public_buy, print_bid_receipt], bracketed by an approve and revoke when
// paying in SPL tokens.
func (c *OffersClient) Make(ctx context.Context, params MakeOfferParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, offersMetricsStructName, "Make")
	defer tracer.End()

	pending, err := c.make(params)
	tracer.OnError(err)
	return pending, err
}

func (c *OffersClient) make(params MakeOfferParams) (*PendingTransaction, error) {
	if err := requireNft(params.Nft); err != nil {
		return nil, err
	}

	mode, err := c.paymentMode()
	if err != nil {
		return nil, err
	}

	funding, err := mode.Fund(c.env.wallet(), params.Price)
	if err != nil {
		return nil, err
	}

	side, bid, err := c.bidOps(funding, params.Nft, params.Price, params.TokenSize)
	if err != nil {
		return nil, err
	}

	ops, err := funding.Bracket(bid...)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":       "Make",
		"payment_mode": mode.Kind.String(),
		"trade_state":  base58.Encode(side.tradeState),
		"price":        params.Price,
	}).Debug("composed offer")

	return Compose(ops, funding.Signers()...)
}

// Cancel withdraws the wallet's bid: [cancel, cancel_bid_receipt].
func (c *OffersClient) Cancel(ctx context.Context, params CancelOfferParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, offersMetricsStructName, "Cancel")
	defer tracer.End()

	pending, err := c.cancel(params)
	tracer.OnError(err)
	return pending, err
}

func (c *OffersClient) cancel(params CancelOfferParams) (*PendingTransaction, error) {
	if err := requireNft(params.Nft); err != nil {
		return nil, err
	}
	if err := requireOffer(params.Offer); err != nil {
		return nil, err
	}

	nft, offer := params.Nft, params.Offer

	side, _, err := c.deriveBuySide(c.env.wallet(), nft.MintAddress, offer.Price, offer.TokenSize)
	if err != nil {
		return nil, err
	}
	if err := checkTradeState(offer.TradeState, side.tradeState); err != nil {
		return nil, err
	}

	cancel, err := c.cancelOp(side.tradeState, nft.Owner.AssociatedTokenAccountAddress, nft.MintAddress, offer.Price, offer.TokenSize)
	if err != nil {
		return nil, err
	}

	cancelReceipt, err := auctionhouse.NewCancelBidReceiptInstruction(&auctionhouse.CancelReceiptInstructionAccounts{
		Receipt: side.receipt,
	})
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":      "Cancel",
		"trade_state": base58.Encode(side.tradeState),
	}).Debug("composed offer cancellation")

	return Compose([]solana.Instruction{cancel, cancelReceipt})
}

// Accept sells the wallet's tokens into an offer:
// [sell, print_listing_receipt, execute_sale, print_purchase_receipt].
func (c *OffersClient) Accept(ctx context.Context, params AcceptOfferParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, offersMetricsStructName, "Accept")
	defer tracer.End()

	pending, err := c.accept(params)
	tracer.OnError(err)
	return pending, err
}

func (c *OffersClient) accept(params AcceptOfferParams) (*PendingTransaction, error) {
	if err := requireNft(params.Nft); err != nil {
		return nil, err
	}
	if err := requireOffer(params.Offer); err != nil {
		return nil, err
	}

	nft, offer := params.Nft, params.Offer

	mode, err := c.paymentMode()
	if err != nil {
		return nil, err
	}

	buyer, _, err := c.deriveBuySide(offer.Buyer, nft.MintAddress, offer.Price, offer.TokenSize)
	if err != nil {
		return nil, err
	}
	if err := checkTradeState(offer.TradeState, buyer.tradeState); err != nil {
		return nil, err
	}

	seller, list, err := c.listOps(nft, offer.Price, offer.TokenSize)
	if err != nil {
		return nil, err
	}

	sale, err := c.saleOps(mode, nft, seller, buyer, offer.Price, offer.TokenSize)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":       "Accept",
		"payment_mode": mode.Kind.String(),
		"buyer":        base58.Encode(offer.Buyer),
		"price":        offer.Price,
		"creators":     len(nft.Creators),
	}).Debug("composed offer acceptance")

	return Compose(append(list, sale...))
}
