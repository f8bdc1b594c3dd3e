package marketplace

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

const escrowMetricsStructName = "marketplace.escrow_client"

type DepositParams struct {
	Amount uint64
}

type WithdrawParams struct {
	Amount uint64
}

// EscrowClient moves funds between the wallet and its escrow payment account
// on an auction house.
type EscrowClient struct {
	*houseClient
}

func NewEscrowClient(env *Env, house *AuctionHouse) (*EscrowClient, error) {
	c, err := newHouseClient(env, house, "escrow")
	if err != nil {
		return nil, err
	}
	return &EscrowClient{houseClient: c}, nil
}

func (c *EscrowClient) escrowAccount() (ed25519.PublicKey, uint8, error) {
	escrow, bump, err := auctionhouse.GetEscrowPaymentAddress(&auctionhouse.GetEscrowPaymentAddressArgs{
		AuctionHouse: c.house.Address,
		Wallet:       c.env.wallet(),
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving escrow payment account")
	}
	return escrow, bump, nil
}

// Deposit funds the escrow: [deposit], bracketed by an approve and revoke
// when paying in SPL tokens.
func (c *EscrowClient) Deposit(ctx context.Context, params DepositParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, escrowMetricsStructName, "Deposit")
	defer tracer.End()

	pending, err := c.deposit(params.Amount)
	tracer.OnError(err)
	return pending, err
}

func (c *EscrowClient) deposit(amount uint64) (*PendingTransaction, error) {
	mode, err := c.paymentMode()
	if err != nil {
		return nil, err
	}

	escrow, bump, err := c.escrowAccount()
	if err != nil {
		return nil, err
	}

	funding, err := mode.Fund(c.env.wallet(), amount)
	if err != nil {
		return nil, err
	}

	deposit, err := auctionhouse.NewDepositInstruction(
		&auctionhouse.DepositInstructionAccounts{
			Wallet:                 funding.Wallet,
			PaymentAccount:         funding.PaymentAccount,
			TransferAuthority:      funding.TransferAuthority,
			EscrowPaymentAccount:   escrow,
			TreasuryMint:           c.house.TreasuryMint,
			Authority:              c.house.Authority,
			AuctionHouse:           c.house.Address,
			AuctionHouseFeeAccount: c.house.AuctionHouseFeeAccount,
		},
		&auctionhouse.EscrowInstructionArgs{
			EscrowPaymentBump: bump,
			Amount:            amount,
		},
	)
	if err != nil {
		return nil, err
	}

	ops, err := funding.Bracket(deposit)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":       "Deposit",
		"payment_mode": mode.Kind.String(),
		"amount":       amount,
	}).Debug("composed escrow deposit")

	return Compose(ops, funding.Signers()...)
}

// Withdraw returns funds from escrow to the wallet, or to its associated
// token account when paying in SPL tokens: [withdraw].
func (c *EscrowClient) Withdraw(ctx context.Context, params WithdrawParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, escrowMetricsStructName, "Withdraw")
	defer tracer.End()

	pending, err := c.withdraw(params.Amount)
	tracer.OnError(err)
	return pending, err
}

func (c *EscrowClient) withdraw(amount uint64) (*PendingTransaction, error) {
	mode, err := c.paymentMode()
	if err != nil {
		return nil, err
	}

	escrow, bump, err := c.escrowAccount()
	if err != nil {
		return nil, err
	}

	receiptAccount, err := mode.ReceivingAccount(c.env.wallet())
	if err != nil {
		return nil, err
	}

	withdraw, err := auctionhouse.NewWithdrawInstruction(
		&auctionhouse.WithdrawInstructionAccounts{
			Wallet:                 c.env.wallet(),
			ReceiptAccount:         receiptAccount,
			EscrowPaymentAccount:   escrow,
			TreasuryMint:           c.house.TreasuryMint,
			Authority:              c.house.Authority,
			AuctionHouse:           c.house.Address,
			AuctionHouseFeeAccount: c.house.AuctionHouseFeeAccount,
		},
		&auctionhouse.EscrowInstructionArgs{
			EscrowPaymentBump: bump,
			Amount:            amount,
		},
	)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":       "Withdraw",
		"payment_mode": mode.Kind.String(),
		"amount":       amount,
	}).Debug("composed escrow withdrawal")

	return Compose([]solana.Instruction{withdraw})
}
