package marketplace

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/holaplex/marketplace-go/pkg/cache"
	"github.com/holaplex/marketplace-go/pkg/config"
	"github.com/holaplex/marketplace-go/pkg/config/env"
	"github.com/holaplex/marketplace-go/pkg/config/memory"
	"github.com/holaplex/marketplace-go/pkg/config/wrapper"
	localrate "github.com/holaplex/marketplace-go/pkg/rate"
	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/storage/ipfs"
)

const (
	envConfigPrefix = "MARKETPLACE_"

	// Either an endpoint URL or a cluster name such as "devnet".
	RpcEndpointConfigEnvName = envConfigPrefix + "RPC_ENDPOINT"
	defaultRpcEndpoint       = string(solana.ClusterMainnetBeta)

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "confirmed"

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = time.Minute

	ConfirmationPollIntervalConfigEnvName = envConfigPrefix + "CONFIRMATION_POLL_INTERVAL"
	defaultConfirmationPollInterval       = solana.PollRate

	IpfsUploadUrlConfigEnvName = envConfigPrefix + "IPFS_UPLOAD_URL"
	defaultIpfsUploadUrl       = ipfs.DefaultUploadUrl

	// Requests per second per RPC method. Zero disables local throttling.
	RpcRateLimitConfigEnvName = envConfigPrefix + "RPC_RATE_LIMIT"
	defaultRpcRateLimit       = 0
)

const uploadCacheSize = 256

type conf struct {
	rpcEndpoint              config.String
	commitment               config.String
	confirmationTimeout      config.Duration
	confirmationPollInterval config.Duration
	ipfsUploadUrl            config.String
	rpcRateLimit             config.Float64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			rpcEndpoint:              env.NewStringConfig(RpcEndpointConfigEnvName, defaultRpcEndpoint),
			commitment:               env.NewStringConfig(CommitmentConfigEnvName, defaultCommitment),
			confirmationTimeout:      env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			confirmationPollInterval: env.NewDurationConfig(ConfirmationPollIntervalConfigEnvName, defaultConfirmationPollInterval),
			ipfsUploadUrl:            env.NewStringConfig(IpfsUploadUrlConfigEnvName, defaultIpfsUploadUrl),
			rpcRateLimit:             env.NewFloat64Config(RpcRateLimitConfigEnvName, defaultRpcRateLimit),
		}
	}
}

type testOverrides struct {
	rpcEndpoint              string
	commitment               string
	confirmationTimeout      time.Duration
	confirmationPollInterval time.Duration
	ipfsUploadUrl            string
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			rpcEndpoint:              wrapper.NewStringConfig(memory.NewConfig(valueOrNil(overrides.rpcEndpoint)), defaultRpcEndpoint),
			commitment:               wrapper.NewStringConfig(memory.NewConfig(valueOrNil(overrides.commitment)), defaultCommitment),
			confirmationTimeout:      wrapper.NewDurationConfig(memory.NewConfig(valueOrNil(overrides.confirmationTimeout)), defaultConfirmationTimeout),
			confirmationPollInterval: wrapper.NewDurationConfig(memory.NewConfig(valueOrNil(overrides.confirmationPollInterval)), defaultConfirmationPollInterval),
			ipfsUploadUrl:            wrapper.NewStringConfig(memory.NewConfig(valueOrNil(overrides.ipfsUploadUrl)), defaultIpfsUploadUrl),
			rpcRateLimit:             wrapper.NewFloat64Config(memory.NewConfig(nil), defaultRpcRateLimit),
		}
	}
}

// valueOrNil leaves zero valued overrides unset so the default applies.
func valueOrNil[T comparable](v T) interface{} {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

// getCommitment returns the configured commitment, falling back to the default
// when the configured name is unknown.
func (c *conf) getCommitment(ctx context.Context) solana.Commitment {
	commitment, err := solana.ParseCommitment(c.commitment.Get(ctx))
	if err != nil {
		return solana.CommitmentConfirmed
	}
	return commitment
}

// NewLedgerClient dials the configured RPC endpoint, throttled locally when a
// rate limit is configured.
func NewLedgerClient(ctx context.Context, configProvider ConfigProvider) solana.Client {
	conf := configProvider()

	var opts []solana.Option
	if limit := conf.rpcRateLimit.Get(ctx); limit > 0 {
		opts = append(opts, solana.WithRateLimiter(localrate.NewKeyedLimiter(rate.Limit(limit))))
	}

	return solana.New(solana.ResolveEndpoint(conf.rpcEndpoint.Get(ctx)), opts...)
}

// NewUploader returns the IPFS uploader at the configured URL. Re-publishing
// unchanged settings reuses the earlier upload.
func NewUploader(ctx context.Context, configProvider ConfigProvider) *ipfs.Client {
	return ipfs.NewClient(
		configProvider().ipfsUploadUrl.Get(ctx),
		ipfs.WithUploadCache(cache.NewCache(uploadCacheSize)),
	)
}
