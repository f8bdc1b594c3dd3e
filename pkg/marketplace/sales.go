package marketplace

import (
	"context"

	"github.com/holaplex/marketplace-go/pkg/metrics"
)

const salesMetricsStructName = "marketplace.sales_client"

type SellParams struct {
	Nft       *Nft
	Price     uint64
	TokenSize uint64
}

// SalesClient is the older entry point for listing a token. It composes
// exactly what ListingsClient.Post does.
type SalesClient struct {
	listings *ListingsClient
}

func NewSalesClient(env *Env, house *AuctionHouse) (*SalesClient, error) {
	listings, err := NewListingsClient(env, house)
	if err != nil {
		return nil, err
	}
	return &SalesClient{listings: listings}, nil
}

func (c *SalesClient) Sell(ctx context.Context, params SellParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, salesMetricsStructName, "Sell")
	defer tracer.End()

	pending, err := c.listings.post(params.Nft, params.Price, params.TokenSize)
	tracer.OnError(err)
	return pending, err
}
