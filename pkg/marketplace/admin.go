package marketplace

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/pointer"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
	"github.com/holaplex/marketplace-go/pkg/solana/metaplex"
	"github.com/holaplex/marketplace-go/pkg/storage"
)

const (
	adminMetricsStructName = "marketplace.admin_client"

	settingsFileName = "storefront_settings"
)

// FileReference points at previously uploaded content such as a logo.
type FileReference struct {
	URI  string
	Type string
	Name string
}

// MarketplaceParams are the storefront settings common to every edit.
type MarketplaceParams struct {
	Name        string
	Description string
	Subdomain   string
	Logo        FileReference
	Banner      FileReference

	// TransactionFee is the seller fee, in basis points, applied to every
	// auction house of the marketplace.
	TransactionFee uint16

	Creators []ed25519.PublicKey
}

type EditMarketplaceParams struct {
	MarketplaceParams

	AuctionHouses []*AuctionHouse
}

// EditTokensParams changes the currencies a marketplace trades in. Auction
// houses whose mint is not in Tokens are dropped from the settings, and one is
// created for every token without one.
type EditTokensParams struct {
	MarketplaceParams

	OriginalAuctionHouses []*AuctionHouse
	Tokens                []ed25519.PublicKey
}

type CreateAuctionHouseParams struct {
	TreasuryMint         ed25519.PublicKey
	SellerFeeBasisPoints uint16
	RequiresSignOff      bool
	CanChangeSalePrice   bool
}

// UpdateAuctionHouseParams leaves a setting unchanged when its field is nil.
type UpdateAuctionHouseParams struct {
	SellerFeeBasisPoints *uint16
	RequiresSignOff      *bool
	CanChangeSalePrice   *bool

	// NewAuthority defaults to the current authority.
	NewAuthority ed25519.PublicKey
}

type WithdrawFeesParams struct {
	Amount uint64
}

// MarketplaceSettings is the storefront settings document stored off-chain
// and referenced by the store config.
type MarketplaceSettings struct {
	Meta          MarketplaceSettingsMeta      `json:"meta"`
	Theme         MarketplaceSettingsTheme     `json:"theme"`
	Creators      []MarketplaceSettingsAddress `json:"creators"`
	Subdomain     string                       `json:"subdomain"`
	Address       MarketplaceSettingsAccounts  `json:"address"`
	AuctionHouses []MarketplaceSettingsAddress `json:"auctionHouses,omitempty"`
}

type MarketplaceSettingsMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MarketplaceSettingsTheme struct {
	Logo   MarketplaceSettingsFile `json:"logo"`
	Banner MarketplaceSettingsFile `json:"banner"`
}

type MarketplaceSettingsFile struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

type MarketplaceSettingsAddress struct {
	Address string `json:"address"`
}

type MarketplaceSettingsAccounts struct {
	Owner       string `json:"owner,omitempty"`
	Store       string `json:"store,omitempty"`
	StoreConfig string `json:"storeConfig,omitempty"`
}

// AdminClient composes the operations of a marketplace owner. The wallet of
// its Env is the store admin and the authority of its auction houses.
type AdminClient struct {
	log      *logrus.Entry
	env      *Env
	uploader storage.Uploader
}

func NewAdminClient(env *Env, uploader storage.Uploader) (*AdminClient, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	if uploader == nil {
		return nil, errors.New("uploader is required")
	}

	return &AdminClient{
		log:      logrus.StandardLogger().WithField("type", "marketplace/admin"),
		env:      env,
		uploader: uploader,
	}, nil
}

// ClaimFunds withdraws the whole withdrawable treasury balance of house:
// [withdraw_from_treasury].
func (c *AdminClient) ClaimFunds(ctx context.Context, house *AuctionHouse) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, adminMetricsStructName, "ClaimFunds")
	defer tracer.End()

	pending, err := c.claimFunds(ctx, house)
	tracer.OnError(err)
	return pending, err
}

func (c *AdminClient) claimFunds(ctx context.Context, house *AuctionHouse) (*PendingTransaction, error) {
	treasury, err := NewTreasuryClient(c.env, house)
	if err != nil {
		return nil, err
	}

	balance, err := treasury.Balance(ctx)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":        "ClaimFunds",
		"auction_house": base58.Encode(house.Address),
		"balance":       balance,
	}).Debug("claiming treasury balance")

	return treasury.Withdraw(ctx, WithdrawTreasuryParams{Amount: balance})
}

// WithdrawFees drains Amount from the fee payer account of house to its fee
// withdrawal destination: [withdraw_from_fee].
func (c *AdminClient) WithdrawFees(ctx context.Context, house *AuctionHouse, params WithdrawFeesParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, adminMetricsStructName, "WithdrawFees")
	defer tracer.End()

	pending, err := c.withdrawFees(house, params.Amount)
	tracer.OnError(err)
	return pending, err
}

func (c *AdminClient) withdrawFees(house *AuctionHouse, amount uint64) (*PendingTransaction, error) {
	if err := verifyHouse(house); err != nil {
		return nil, err
	}

	withdraw, err := auctionhouse.NewWithdrawFromFeeInstruction(
		&auctionhouse.WithdrawFromFeeInstructionAccounts{
			Authority:                house.Authority,
			FeeWithdrawalDestination: house.FeeWithdrawalDestination,
			AuctionHouseFeeAccount:   house.AuctionHouseFeeAccount,
			AuctionHouse:             house.Address,
		},
		&auctionhouse.WithdrawFundsInstructionArgs{
			Amount: amount,
		},
	)
	if err != nil {
		return nil, err
	}

	return Compose([]solana.Instruction{withdraw})
}

// CreateAuctionHouse creates the wallet's auction house for TreasuryMint:
// [create_auction_house]. The returned AuctionHouse is the derived venue.
func (c *AdminClient) CreateAuctionHouse(ctx context.Context, params CreateAuctionHouseParams) (*PendingTransaction, *AuctionHouse, error) {
	tracer := metrics.TraceMethodCall(ctx, adminMetricsStructName, "CreateAuctionHouse")
	defer tracer.End()

	house, op, err := c.createAuctionHouseOp(params)
	if err != nil {
		tracer.OnError(err)
		return nil, nil, err
	}

	pending, err := Compose([]solana.Instruction{op})
	if err != nil {
		tracer.OnError(err)
		return nil, nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":        "CreateAuctionHouse",
		"auction_house": base58.Encode(house.Address),
		"treasury_mint": base58.Encode(house.TreasuryMint),
	}).Debug("composed auction house creation")

	return pending, house, nil
}

func (c *AdminClient) createAuctionHouseOp(params CreateAuctionHouseParams) (*AuctionHouse, solana.Instruction, error) {
	wallet := c.env.wallet()

	house, err := DeriveAuctionHouse(wallet, params.TreasuryMint)
	if err != nil {
		return nil, solana.Instruction{}, err
	}
	house.SellerFeeBasisPoints = params.SellerFeeBasisPoints
	house.RequiresSignOff = params.RequiresSignOff
	house.CanChangeSalePrice = params.CanChangeSalePrice

	op, err := auctionhouse.NewCreateAuctionHouseInstruction(
		&auctionhouse.CreateAuctionHouseInstructionAccounts{
			TreasuryMint:                       house.TreasuryMint,
			Payer:                              wallet,
			Authority:                          house.Authority,
			FeeWithdrawalDestination:           house.FeeWithdrawalDestination,
			TreasuryWithdrawalDestination:      house.TreasuryWithdrawalDestination,
			TreasuryWithdrawalDestinationOwner: wallet,
			AuctionHouse:                       house.Address,
			AuctionHouseFeeAccount:             house.AuctionHouseFeeAccount,
			AuctionHouseTreasury:               house.AuctionHouseTreasury,
		},
		&auctionhouse.CreateAuctionHouseInstructionArgs{
			Bump:                 house.Bump,
			FeePayerBump:         house.FeePayerBump,
			TreasuryBump:         house.TreasuryBump,
			SellerFeeBasisPoints: params.SellerFeeBasisPoints,
			RequiresSignOff:      params.RequiresSignOff,
			CanChangeSalePrice:   params.CanChangeSalePrice,
		},
	)
	if err != nil {
		return nil, solana.Instruction{}, err
	}

	return house, op, nil
}

// UpdateAuctionHouse changes the settings of house: [update_auction_house].
func (c *AdminClient) UpdateAuctionHouse(ctx context.Context, house *AuctionHouse, params UpdateAuctionHouseParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, adminMetricsStructName, "UpdateAuctionHouse")
	defer tracer.End()

	pending, err := c.updateAuctionHouse(house, params)
	tracer.OnError(err)
	return pending, err
}

func (c *AdminClient) updateAuctionHouse(house *AuctionHouse, params UpdateAuctionHouseParams) (*PendingTransaction, error) {
	if err := verifyHouse(house); err != nil {
		return nil, err
	}

	op, err := c.updateAuctionHouseOp(house, params)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":                  "UpdateAuctionHouse",
		"auction_house":           base58.Encode(house.Address),
		"seller_fee_basis_points": *pointer.Uint16OrDefault(params.SellerFeeBasisPoints, house.SellerFeeBasisPoints),
		"requires_sign_off":       *pointer.BoolOrDefault(params.RequiresSignOff, house.RequiresSignOff),
		"can_change_sale_price":   *pointer.BoolOrDefault(params.CanChangeSalePrice, house.CanChangeSalePrice),
	}).Debug("composed auction house update")

	return Compose([]solana.Instruction{op})
}

func (c *AdminClient) updateAuctionHouseOp(house *AuctionHouse, params UpdateAuctionHouseParams) (solana.Instruction, error) {
	newAuthority := params.NewAuthority
	if len(newAuthority) == 0 {
		newAuthority = house.Authority
	}

	return auctionhouse.NewUpdateAuctionHouseInstruction(
		&auctionhouse.UpdateAuctionHouseInstructionAccounts{
			TreasuryMint:                       house.TreasuryMint,
			Payer:                              c.env.wallet(),
			Authority:                          house.Authority,
			NewAuthority:                       newAuthority,
			FeeWithdrawalDestination:           house.FeeWithdrawalDestination,
			TreasuryWithdrawalDestination:      house.TreasuryWithdrawalDestination,
			TreasuryWithdrawalDestinationOwner: c.env.wallet(),
			AuctionHouse:                       house.Address,
		},
		&auctionhouse.UpdateAuctionHouseInstructionArgs{
			SellerFeeBasisPoints: params.SellerFeeBasisPoints,
			RequiresSignOff:      params.RequiresSignOff,
			CanChangeSalePrice:   params.CanChangeSalePrice,
		},
	)
}

// EditMarketplace publishes new storefront settings. The settings document is
// uploaded first; the batch is [update_auction_house..., set_store_v2] with an
// update for every auction house whose fee differs from TransactionFee.
func (c *AdminClient) EditMarketplace(ctx context.Context, params EditMarketplaceParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, adminMetricsStructName, "EditMarketplace")
	defer tracer.End()

	pending, err := c.editMarketplace(ctx, params)
	tracer.OnError(err)
	return pending, err
}

func (c *AdminClient) editMarketplace(ctx context.Context, params EditMarketplaceParams) (*PendingTransaction, error) {
	if err := validateMarketplaceParams(&params.MarketplaceParams); err != nil {
		return nil, err
	}

	var ops []solana.Instruction
	for _, house := range params.AuctionHouses {
		if err := verifyHouse(house); err != nil {
			return nil, err
		}

		op, ok, err := c.feeUpdateOp(house, params.TransactionFee)
		if err != nil {
			return nil, err
		}
		if ok {
			ops = append(ops, op)
		}
	}

	return c.publish(ctx, "EditMarketplace", &params.MarketplaceParams, params.AuctionHouses, ops)
}

// EditTokens publishes storefront settings trading in exactly Tokens. The
// batch is [create_auction_house..., update_auction_house..., set_store_v2].
func (c *AdminClient) EditTokens(ctx context.Context, params EditTokensParams) (*PendingTransaction, error) {
	tracer := metrics.TraceMethodCall(ctx, adminMetricsStructName, "EditTokens")
	defer tracer.End()

	pending, err := c.editTokens(ctx, params)
	tracer.OnError(err)
	return pending, err
}

func (c *AdminClient) editTokens(ctx context.Context, params EditTokensParams) (*PendingTransaction, error) {
	if err := validateMarketplaceParams(&params.MarketplaceParams); err != nil {
		return nil, err
	}

	var houses []*AuctionHouse
	var creates, updates []solana.Instruction

	for _, house := range params.OriginalAuctionHouses {
		if err := verifyHouse(house); err != nil {
			return nil, err
		}
		if !containsKey(params.Tokens, house.TreasuryMint) {
			continue
		}

		op, ok, err := c.feeUpdateOp(house, params.TransactionFee)
		if err != nil {
			return nil, err
		}
		if ok {
			updates = append(updates, op)
		}
		houses = append(houses, house)
	}

	for _, mint := range params.Tokens {
		var exists bool
		for _, house := range params.OriginalAuctionHouses {
			if bytes.Equal(house.TreasuryMint, mint) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}

		house, op, err := c.createAuctionHouseOp(CreateAuctionHouseParams{
			TreasuryMint:         mint,
			SellerFeeBasisPoints: params.TransactionFee,
		})
		if err != nil {
			return nil, err
		}
		creates = append(creates, op)
		houses = append(houses, house)
	}

	return c.publish(ctx, "EditTokens", &params.MarketplaceParams, houses, append(creates, updates...))
}

// feeUpdateOp returns an update_auction_house setting fee when house charges
// anything else.
func (c *AdminClient) feeUpdateOp(house *AuctionHouse, fee uint16) (solana.Instruction, bool, error) {
	if house.SellerFeeBasisPoints == fee {
		return solana.Instruction{}, false, nil
	}

	op, err := c.updateAuctionHouseOp(house, UpdateAuctionHouseParams{SellerFeeBasisPoints: pointer.Uint16(fee)})
	if err != nil {
		return solana.Instruction{}, false, err
	}
	return op, true, nil
}

// publish uploads the settings document and composes ops followed by the
// set_store_v2 pointing the wallet's store at it. Nothing is composed if the
// upload fails.
func (c *AdminClient) publish(ctx context.Context, method string, params *MarketplaceParams, houses []*AuctionHouse, ops []solana.Instruction) (*PendingTransaction, error) {
	wallet := c.env.wallet()

	store, _, err := metaplex.GetStoreAddress(wallet)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving store address")
	}
	storeConfig, _, err := metaplex.GetStoreConfigAddress(store)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving store config address")
	}

	settings := NewMarketplaceSettings(params, houses)
	settings.Address = MarketplaceSettingsAccounts{
		Owner:       base58.Encode(wallet),
		Store:       base58.Encode(store),
		StoreConfig: base58.Encode(storeConfig),
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return nil, errors.Wrap(err, "error marshalling marketplace settings")
	}

	log := c.log.WithFields(logrus.Fields{
		"method": method,
		"store":  settings.Address.Store,
	})

	file, err := c.uploader.UploadFile(ctx, data, settingsFileName)
	if err != nil {
		log.WithError(err).Warn("failure uploading marketplace settings")
		return nil, &UploadError{Name: settingsFileName, Err: err}
	}

	setStore := metaplex.NewSetStoreV2Instruction(
		&metaplex.SetStoreV2InstructionAccounts{
			Store:  store,
			Config: storeConfig,
			Admin:  wallet,
			Payer:  wallet,
		},
		&metaplex.SetStoreV2InstructionArgs{
			Public:      false,
			SettingsURI: file.URI,
		},
	)

	log.WithFields(logrus.Fields{
		"settings_uri":   file.URI,
		"auction_houses": len(houses),
		"operations":     len(ops) + 1,
	}).Debug("composed marketplace settings update")

	return Compose(append(ops, setStore))
}

// NewMarketplaceSettings builds the settings document of a marketplace
// trading on houses. Store addresses are filled in on publish.
func NewMarketplaceSettings(params *MarketplaceParams, houses []*AuctionHouse) *MarketplaceSettings {
	settings := &MarketplaceSettings{
		Meta: MarketplaceSettingsMeta{
			Name:        params.Name,
			Description: params.Description,
		},
		Theme: MarketplaceSettingsTheme{
			Logo: MarketplaceSettingsFile{
				Name: params.Logo.Name,
				Type: params.Logo.Type,
				URL:  params.Logo.URI,
			},
			Banner: MarketplaceSettingsFile{
				Name: params.Banner.Name,
				Type: params.Banner.Type,
				URL:  params.Banner.URI,
			},
		},
		Creators:  make([]MarketplaceSettingsAddress, 0, len(params.Creators)),
		Subdomain: params.Subdomain,
	}

	for _, creator := range params.Creators {
		settings.Creators = append(settings.Creators, MarketplaceSettingsAddress{Address: base58.Encode(creator)})
	}
	for _, house := range houses {
		settings.AuctionHouses = append(settings.AuctionHouses, MarketplaceSettingsAddress{Address: base58.Encode(house.Address)})
	}

	return settings
}

func validateMarketplaceParams(params *MarketplaceParams) error {
	if params.TransactionFee > auctionhouse.MaxBasisPoints {
		return errors.Wrapf(ErrArgumentOutOfRange, "transaction fee %d exceeds %d", params.TransactionFee, auctionhouse.MaxBasisPoints)
	}
	if len(params.Subdomain) == 0 {
		return errors.New("subdomain is required")
	}
	return nil
}

func verifyHouse(house *AuctionHouse) error {
	if house == nil {
		return errors.New("auction house is required")
	}
	return house.Verify()
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
