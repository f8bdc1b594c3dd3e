package marketplace

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
	"github.com/holaplex/marketplace-go/pkg/solana/token"
)

func TestNewListingsClient(t *testing.T) {
	env := setup(t)

	house := newHouse(t, newKey(t), token.NativeMint, 200)
	_, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	house.AuctionHouseFeeAccount = newKey(t)
	_, err = NewListingsClient(env.env, house)
	assert.ErrorIs(t, err, ErrAuctionHouseMismatch)

	_, err = NewListingsClient(env.env, nil)
	assert.Error(t, err)

	_, err = NewListingsClient(&Env{}, newHouse(t, newKey(t), token.NativeMint, 200))
	assert.Error(t, err)
}

func TestListingsClient_Post(t *testing.T) {
	env := setup(t)
	house := newHouse(t, newKey(t), token.NativeMint, 200)
	nft := newNft(t, env.walletKey())

	client, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	pending, err := client.Post(context.Background(), PostListingParams{
		Nft:       nft,
		Price:     1_000_000_000,
		TokenSize: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sell", "print_listing_receipt"}, pending.OperationNames())
	assert.Empty(t, pending.Signers)

	tradeState, _, err := auctionhouse.GetTradeStateAddress(&auctionhouse.GetTradeStateAddressArgs{
		Wallet:       env.walletKey(),
		AuctionHouse: house.Address,
		TokenAccount: nft.Owner.AssociatedTokenAccountAddress,
		TreasuryMint: house.TreasuryMint,
		TokenMint:    nft.MintAddress,
		Price:        1_000_000_000,
		TokenSize:    1,
	})
	require.NoError(t, err)
	assert.True(t, hasAccount(pending.Instructions[0], tradeState))
	assert.True(t, isSigner(pending.Instructions[0], env.walletKey()))

	receipt, _, err := auctionhouse.GetListingReceiptAddress(&auctionhouse.GetListingReceiptAddressArgs{TradeState: tradeState})
	require.NoError(t, err)
	assert.True(t, hasAccount(pending.Instructions[1], receipt))

	// Composition is deterministic.
	again, err := client.Post(context.Background(), PostListingParams{Nft: nft, Price: 1_000_000_000, TokenSize: 1})
	require.NoError(t, err)
	assert.Equal(t, pending, again)

	_, err = env.env.Sender.Send(context.Background(), pending)
	require.NoError(t, err)
}

func TestListingsClient_Post_InvalidArgs(t *testing.T) {
	env := setup(t)
	client, err := NewListingsClient(env.env, newHouse(t, newKey(t), token.NativeMint, 200))
	require.NoError(t, err)

	nft := newNft(t, env.walletKey())
	_, err = client.Post(context.Background(), PostListingParams{Nft: nft, Price: 1, TokenSize: 0})
	assert.ErrorIs(t, err, ErrArgumentOutOfRange)

	nft.Creators = []Creator{{Address: newKey(t), Share: 10_001}}
	_, err = client.Post(context.Background(), PostListingParams{Nft: nft, Price: 1, TokenSize: 1})
	assert.ErrorIs(t, err, ErrArgumentOutOfRange)

	_, err = client.Post(context.Background(), PostListingParams{Price: 1, TokenSize: 1})
	assert.Error(t, err)
}

func TestListingsClient_Cancel(t *testing.T) {
	env := setup(t)
	house := newHouse(t, newKey(t), token.NativeMint, 200)
	nft := newNft(t, env.walletKey())

	client, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	listing := &Listing{
		Seller:    env.walletKey(),
		Price:     250,
		TokenSize: 1,
	}
	side, _, err := client.deriveSellSide(env.walletKey(), nft.Owner.AssociatedTokenAccountAddress, nft.MintAddress, 250, 1)
	require.NoError(t, err)
	listing.TradeState = side.tradeState
	listing.Address = side.receipt

	pending, err := client.Cancel(context.Background(), CancelListingParams{Listing: listing, Nft: nft})
	require.NoError(t, err)
	assert.Equal(t, []string{"cancel", "cancel_listing_receipt"}, pending.OperationNames())
	assert.True(t, hasAccount(pending.Instructions[0], side.tradeState))
	assert.True(t, hasAccount(pending.Instructions[1], side.receipt))
	assert.Empty(t, pending.Signers)

	listing.TradeState = newKey(t)
	_, err = client.Cancel(context.Background(), CancelListingParams{Listing: listing, Nft: nft})
	assert.ErrorIs(t, err, ErrTradeStateMismatch)
}

func TestListingsClient_PostThenCancel(t *testing.T) {
	env := setup(t)
	house := newHouse(t, newKey(t), token.NativeMint, 200)
	nft := newNft(t, env.walletKey())

	client, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	for _, tc := range []struct {
		price     uint64
		tokenSize uint64
	}{
		{price: 1, tokenSize: 1},
		{price: 250, tokenSize: 3},
		{price: 1_000_000_000, tokenSize: 1},
		{price: 18_000_000_000_000_000_000, tokenSize: 1_000_000},
	} {
		posted, err := client.Post(context.Background(), PostListingParams{
			Nft:       nft,
			Price:     tc.price,
			TokenSize: tc.tokenSize,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"sell", "print_listing_receipt"}, posted.OperationNames())

		// sell carries the seller trade state at index 6, and the receipt
		// leads print_listing_receipt.
		listing := &Listing{
			Address:    posted.Instructions[1].Accounts[0].PublicKey,
			TradeState: posted.Instructions[0].Accounts[6].PublicKey,
			Seller:     env.walletKey(),
			Price:      tc.price,
			TokenSize:  tc.tokenSize,
		}

		canceled, err := client.Cancel(context.Background(), CancelListingParams{Listing: listing, Nft: nft})
		require.NoError(t, err, "price=%d size=%d", tc.price, tc.tokenSize)
		assert.Equal(t, []string{"cancel", "cancel_listing_receipt"}, canceled.OperationNames())
		assert.Equal(t, listing.TradeState, canceled.Instructions[0].Accounts[6].PublicKey)
		assert.Equal(t, listing.Address, canceled.Instructions[1].Accounts[0].PublicKey)

		// A different price or size yields a different trade state.
		listing.Price++
		_, err = client.Cancel(context.Background(), CancelListingParams{Listing: listing, Nft: nft})
		assert.ErrorIs(t, err, ErrTradeStateMismatch)

		listing.Price--
		listing.TokenSize++
		_, err = client.Cancel(context.Background(), CancelListingParams{Listing: listing, Nft: nft})
		assert.ErrorIs(t, err, ErrTradeStateMismatch)
	}
}

func TestListingsClient_Buy_Native(t *testing.T) {
	env := setup(t)
	house := newHouse(t, newKey(t), token.NativeMint, 200)

	seller := newKey(t)
	creators := []Creator{
		{Address: newKey(t), Share: 5000},
		{Address: newKey(t), Share: 5000},
	}
	nft := newNft(t, seller, creators...)

	client, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	listing := &Listing{Seller: seller, Price: 2_000_000, TokenSize: 1}

	pending, err := client.Buy(context.Background(), BuyListingParams{Listing: listing, Nft: nft})
	require.NoError(t, err)
	assert.Equal(t, []string{"public_buy", "print_bid_receipt", "execute_sale", "print_purchase_receipt"}, pending.OperationNames())
	assert.Empty(t, pending.Signers)

	executeSale := pending.Instructions[2]
	royalties := tailAccounts(executeSale, 2)
	assert.Equal(t, creators[0].Address, royalties[0].PublicKey)
	assert.Equal(t, creators[1].Address, royalties[1].PublicKey)

	// Proceeds go straight to the seller, and the token to the buyer's
	// associated account.
	assert.True(t, hasAccount(executeSale, seller))
	buyerReceipt, err := ReceivingTokenAccount(env.walletKey(), nft.MintAddress)
	require.NoError(t, err)
	assert.True(t, hasAccount(executeSale, buyerReceipt))
}

func TestListingsClient_Buy_FungibleToken(t *testing.T) {
	env := setup(t)
	mint := newKey(t)
	house := newHouse(t, newKey(t), mint, 200)

	seller := newKey(t)
	creator := Creator{Address: newKey(t), Share: 10_000}
	nft := newNft(t, seller, creator)

	client, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	pending, err := client.Buy(context.Background(), BuyListingParams{
		Listing: &Listing{Seller: seller, Price: 75, TokenSize: 1},
		Nft:     nft,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"approve", "public_buy", "print_bid_receipt", "execute_sale", "print_purchase_receipt", "revoke"}, pending.OperationNames())
	require.Len(t, pending.Signers, 1)

	authority := pending.Signers[0].Public().(ed25519.PublicKey)
	assert.True(t, isSigner(pending.Instructions[1], authority))

	sellerAta, err := ReceivingTokenAccount(seller, mint)
	require.NoError(t, err)
	assert.True(t, hasAccount(pending.Instructions[3], sellerAta))

	creatorAta, err := ReceivingTokenAccount(creator.Address, mint)
	require.NoError(t, err)
	royalties := tailAccounts(pending.Instructions[3], 2)
	assert.Equal(t, creator.Address, royalties[0].PublicKey)
	assert.Equal(t, creatorAta, royalties[1].PublicKey)

	_, err = env.env.Sender.Send(context.Background(), pending)
	require.NoError(t, err)
	assert.Empty(t, env.ledger.submitted[0].MissingSigners())
}

func TestListingsClient_Buy_TradeStateMismatch(t *testing.T) {
	env := setup(t)
	client, err := NewListingsClient(env.env, newHouse(t, newKey(t), token.NativeMint, 200))
	require.NoError(t, err)

	seller := newKey(t)
	_, err = client.Buy(context.Background(), BuyListingParams{
		Listing: &Listing{Seller: seller, TradeState: newKey(t), Price: 75, TokenSize: 1},
		Nft:     newNft(t, seller),
	})
	assert.ErrorIs(t, err, ErrTradeStateMismatch)
}

func TestSalesClient_Sell(t *testing.T) {
	env := setup(t)
	house := newHouse(t, newKey(t), token.NativeMint, 200)
	nft := newNft(t, env.walletKey())

	sales, err := NewSalesClient(env.env, house)
	require.NoError(t, err)
	listings, err := NewListingsClient(env.env, house)
	require.NoError(t, err)

	sold, err := sales.Sell(context.Background(), SellParams{Nft: nft, Price: 10, TokenSize: 1})
	require.NoError(t, err)
	posted, err := listings.Post(context.Background(), PostListingParams{Nft: nft, Price: 10, TokenSize: 1})
	require.NoError(t, err)
	assert.Equal(t, posted, sold)
}
