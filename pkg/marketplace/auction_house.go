package marketplace

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

// AuctionHouse is a venue keyed by its creator and treasury mint.
type AuctionHouse struct {
	Address                       ed25519.PublicKey
	TreasuryMint                  ed25519.PublicKey
	AuctionHouseTreasury          ed25519.PublicKey
	TreasuryWithdrawalDestination ed25519.PublicKey
	FeeWithdrawalDestination      ed25519.PublicKey
	Authority                     ed25519.PublicKey
	Creator                       ed25519.PublicKey
	AuctionHouseFeeAccount        ed25519.PublicKey

	// Bumps are zero when unknown.
	Bump         uint8
	TreasuryBump uint8
	FeePayerBump uint8

	SellerFeeBasisPoints uint16
	RequiresSignOff      bool
	CanChangeSalePrice   bool
}

// DeriveAuctionHouse computes the auction house owned by owner for
// treasuryMint, with owner as authority and withdrawal destination. Every call
// derives from scratch and returns a value the caller owns.
func DeriveAuctionHouse(owner, treasuryMint ed25519.PublicKey) (*AuctionHouse, error) {
	mode, err := ResolvePaymentMode(treasuryMint)
	if err != nil {
		return nil, err
	}

	address, bump, err := auctionhouse.GetAuctionHouseAddress(&auctionhouse.GetAuctionHouseAddressArgs{
		Creator:      owner,
		TreasuryMint: treasuryMint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving auction house address")
	}

	feeAccount, feePayerBump, err := auctionhouse.GetAuctionHouseFeeAddress(&auctionhouse.GetAuctionHouseFeeAddressArgs{
		AuctionHouse: address,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving fee account address")
	}

	treasury, treasuryBump, err := auctionhouse.GetAuctionHouseTreasuryAddress(&auctionhouse.GetAuctionHouseTreasuryAddressArgs{
		AuctionHouse: address,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error deriving treasury address")
	}

	treasuryWithdrawalDestination, err := mode.ReceivingAccount(owner)
	if err != nil {
		return nil, err
	}

	return &AuctionHouse{
		Address:                       address,
		TreasuryMint:                  treasuryMint,
		AuctionHouseTreasury:          treasury,
		TreasuryWithdrawalDestination: treasuryWithdrawalDestination,
		FeeWithdrawalDestination:      owner,
		Authority:                     owner,
		Creator:                       owner,
		AuctionHouseFeeAccount:        feeAccount,
		Bump:                          bump,
		TreasuryBump:                  treasuryBump,
		FeePayerBump:                  feePayerBump,
	}, nil
}

// Verify re-derives the auction house, fee account and treasury addresses and
// fails with ErrAuctionHouseMismatch on any difference. Known bumps are
// checked as well.
func (h *AuctionHouse) Verify() error {
	if len(h.Creator) != ed25519.PublicKeySize {
		return errors.Wrap(ErrAuctionHouseMismatch, "missing creator")
	}

	derived, err := DeriveAuctionHouse(h.Creator, h.TreasuryMint)
	if err != nil {
		return err
	}

	for _, check := range []struct {
		name     string
		actual   ed25519.PublicKey
		expected ed25519.PublicKey
	}{
		{"address", h.Address, derived.Address},
		{"fee account", h.AuctionHouseFeeAccount, derived.AuctionHouseFeeAccount},
		{"treasury", h.AuctionHouseTreasury, derived.AuctionHouseTreasury},
	} {
		if !bytes.Equal(check.actual, check.expected) {
			return errors.Wrapf(ErrAuctionHouseMismatch, "%s is %s, expected %s", check.name, base58.Encode(check.actual), base58.Encode(check.expected))
		}
	}

	for _, check := range []struct {
		name     string
		actual   uint8
		expected uint8
	}{
		{"bump", h.Bump, derived.Bump},
		{"fee payer bump", h.FeePayerBump, derived.FeePayerBump},
		{"treasury bump", h.TreasuryBump, derived.TreasuryBump},
	} {
		if check.actual != 0 && check.actual != check.expected {
			return errors.Wrapf(ErrAuctionHouseMismatch, "%s is %d, expected %d", check.name, check.actual, check.expected)
		}
	}

	return nil
}

func (h *AuctionHouse) String() string {
	return fmt.Sprintf("AuctionHouse{address=%s,treasury_mint=%s}", base58.Encode(h.Address), base58.Encode(h.TreasuryMint))
}

// LoadAuctionHouse reads and verifies the auction house account at address.
func LoadAuctionHouse(ctx context.Context, client LedgerClient, address ed25519.PublicKey) (*AuctionHouse, error) {
	tracer := metrics.TraceMethodCall(ctx, "marketplace", "LoadAuctionHouse")
	defer tracer.End()

	info, err := client.GetAccountInfo(address, solana.CommitmentConfirmed)
	if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting auction house account")
	}

	if !bytes.Equal(info.Owner, auctionhouse.PROGRAM_ID) {
		err = errors.Wrapf(auctionhouse.ErrInvalidProgram, "account is owned by %s", base58.Encode(info.Owner))
		tracer.OnError(err)
		return nil, err
	}

	var account auctionhouse.AuctionHouseAccount
	if err := account.Unmarshal(info.Data); err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error unmarshalling auction house account")
	}

	house := &AuctionHouse{
		Address:                       address,
		TreasuryMint:                  account.TreasuryMint,
		AuctionHouseTreasury:          account.AuctionHouseTreasury,
		TreasuryWithdrawalDestination: account.TreasuryWithdrawalDestination,
		FeeWithdrawalDestination:      account.FeeWithdrawalDestination,
		Authority:                     account.Authority,
		Creator:                       account.Creator,
		AuctionHouseFeeAccount:        account.AuctionHouseFeeAccount,
		Bump:                          account.Bump,
		TreasuryBump:                  account.TreasuryBump,
		FeePayerBump:                  account.FeePayerBump,
		SellerFeeBasisPoints:          account.SellerFeeBasisPoints,
		RequiresSignOff:               account.RequiresSignOff,
		CanChangeSalePrice:            account.CanChangeSalePrice,
	}
	if err := house.Verify(); err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return house, nil
}
