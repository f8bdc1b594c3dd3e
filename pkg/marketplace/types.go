package marketplace

import (
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

// Marketplace is a storefront configuration published through its settings
// document.
type Marketplace struct {
	Subdomain     string
	Name          string
	Description   string
	LogoURL       string
	BannerURL     string
	OwnerAddress  ed25519.PublicKey
	AuctionHouses []*AuctionHouse
	Creators      []MarketplaceCreator
}

type MarketplaceCreator struct {
	CreatorAddress     ed25519.PublicKey
	StoreConfigAddress ed25519.PublicKey
}

// Creator is a royalty recipient of an Nft. Share is in basis points.
type Creator struct {
	Address  ed25519.PublicKey
	Share    uint16
	Verified bool
}

type NftOwner struct {
	Address                       ed25519.PublicKey
	AssociatedTokenAccountAddress ed25519.PublicKey
}

// Nft is supplied by an indexer. Address is the metadata account.
type Nft struct {
	Name        string
	Address     ed25519.PublicKey
	MintAddress ed25519.PublicKey
	Owner       NftOwner
	Creators    []Creator
}

// Validate checks the creator shares fit within MaxBasisPoints.
func (n *Nft) Validate() error {
	var total uint64
	for _, c := range n.Creators {
		total += uint64(c.Share)
	}
	if total > auctionhouse.MaxBasisPoints {
		return errors.Wrapf(ErrArgumentOutOfRange, "creator shares sum to %d", total)
	}
	return nil
}

// Listing is a seller's standing sell order. Address is the listing receipt.
type Listing struct {
	Address    ed25519.PublicKey
	TradeState ed25519.PublicKey
	Seller     ed25519.PublicKey
	Price      uint64
	TokenSize  uint64
	CreatedAt  time.Time
	CanceledAt *time.Time
}

// Offer is a buyer's standing public bid. Address is the bid receipt.
type Offer struct {
	Address    ed25519.PublicKey
	TradeState ed25519.PublicKey
	Buyer      ed25519.PublicKey
	Price      uint64
	TokenSize  uint64
	CreatedAt  time.Time
	CanceledAt *time.Time
}
