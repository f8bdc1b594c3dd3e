package solana

import "strings"

// Cluster names a public Solana cluster.
type Cluster string

const (
	ClusterDevnet      Cluster = "devnet"
	ClusterTestnet     Cluster = "testnet"
	ClusterMainnetBeta Cluster = "mainnet-beta"
)

var clusterEndpoints = map[Cluster]string{
	ClusterDevnet:      "https://api.devnet.solana.com",
	ClusterTestnet:     "https://api.testnet.solana.com",
	ClusterMainnetBeta: "https://api.mainnet-beta.solana.com",
}

// Endpoint returns the public RPC endpoint of the cluster, or an empty string
// for unknown clusters.
func (c Cluster) Endpoint() string {
	return clusterEndpoints[c]
}

// ResolveEndpoint maps a cluster name to its public RPC endpoint. Anything
// else is assumed to already be an endpoint URL and is returned unchanged.
func ResolveEndpoint(nameOrURL string) string {
	trimmed := strings.TrimSpace(nameOrURL)
	if endpoint := Cluster(strings.ToLower(trimmed)).Endpoint(); endpoint != "" {
		return endpoint
	}
	return trimmed
}
