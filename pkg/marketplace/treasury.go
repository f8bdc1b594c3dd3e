package marketplace

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

const treasuryMetricsStructName = "marketplace.treasury_client"

type WithdrawTreasuryParams struct {
	Amount uint64
}

// TreasuryClient reads and withdraws the sale fees collected by an auction
// house. Withdrawals must be signed by the auction house authority.
type TreasuryClient struct {
	*houseClient
}

func NewTreasuryClient(env *Env, house *AuctionHouse) (*TreasuryClient, error) {
	c, err := newHouseClient(env, house, "treasury")
	if err != nil {
		return nil, err
	}
	return &TreasuryClient{houseClient: c}, nil
}

// Balance returns the withdrawable treasury balance in base units. Lamport
// treasuries keep their rent-exempt minimum.
func (c *TreasuryClient) Balance(ctx context.Context) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, treasuryMetricsStructName, "Balance")
	defer tracer.End()

	balance, err := c.balance()
	tracer.OnError(err)
	return balance, err
}

func (c *TreasuryClient) balance() (uint64, error) {
	mode, err := c.paymentMode()
	if err != nil {
		return 0, err
	}

	if !mode.IsNative() {
		amount, _, err := c.env.Client.GetTokenAccountBalance(c.house.AuctionHouseTreasury)
		if err != nil {
			return 0, errors.Wrap(err, "error getting treasury token balance")
		}
		return amount, nil
	}

	balance, err := c.env.Client.GetBalance(c.house.AuctionHouseTreasury)
	if err != nil {
		return 0, errors.Wrap(err, "error getting treasury balance")
	}

	rent, err := c.env.Client.GetMinimumBalanceForRentExemption(0)
	if err != nil {
		return 0, errors.Wrap(err, "error getting rent exemption minimum")
	}

	if balance <= rent {
		return 0, nil
	}
	return balance - rent, nil
}

// Withdraw moves Amount from the treasury to the treasury withdrawal
// destination: [withdraw_from_treasury].
func (c *TreasuryClient) Withdraw(ctx context.Context, params WithdrawTreasuryParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, treasuryMetricsStructName, "Withdraw")
	defer tracer.End()

	pending, err := c.withdraw(params.Amount)
	tracer.OnError(err)
	return pending, err
}

func (c *TreasuryClient) withdraw(amount uint64) (*PendingTransaction, error) {
	withdraw, err := auctionhouse.NewWithdrawFromTreasuryInstruction(
		&auctionhouse.WithdrawFromTreasuryInstructionAccounts{
			TreasuryMint:                  c.house.TreasuryMint,
			Authority:                     c.house.Authority,
			TreasuryWithdrawalDestination: c.house.TreasuryWithdrawalDestination,
			AuctionHouseTreasury:          c.house.AuctionHouseTreasury,
			AuctionHouse:                  c.house.Address,
		},
		&auctionhouse.WithdrawFundsInstructionArgs{
			Amount: amount,
		},
	)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method": "Withdraw",
		"amount": amount,
	}).Debug("composed treasury withdrawal")

	return Compose([]solana.Instruction{withdraw})
}
