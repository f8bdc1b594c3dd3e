package solana

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/holaplex/marketplace-go/pkg/rate"
	"github.com/holaplex/marketplace-go/pkg/retry"
	"github.com/holaplex/marketplace-go/pkg/retry/backoff"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602

	tooManyRequestsCode = 429
)

const (
	methodGetAccountInfo         = "getAccountInfo"
	methodGetBalance             = "getBalance"
	methodGetLatestBlockhash     = "getLatestBlockhash"
	methodGetMinimumBalance      = "getMinimumBalanceForRentExemption"
	methodGetSignatureStatuses   = "getSignatureStatuses"
	methodGetTokenAccountBalance = "getTokenAccountBalance"
	methodSendTransaction        = "sendTransaction"
)

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrNoBalance         = errors.New("no balance")
)

// TokenAmount is the balance of a token account in base units.
type TokenAmount struct {
	Amount   string `json:"amount"`
	Decimals uint64 `json:"decimals"`
}

// Client is the subset of the Solana JSON RPC API the marketplace needs.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetLatestBlockhash() (Blockhash, error)
	GetSignatureStatus(Signature, Commitment) (*SignatureStatus, error)
	GetSignatureStatuses([]Signature) ([]*SignatureStatus, error)
	GetTokenAccountBalance(ed25519.PublicKey) (uint64, uint64, error)
	SubmitTransaction(Transaction, Commitment) (Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

type client struct {
	log     *logrus.Entry
	rpc     jsonrpc.RPCClient
	retrier retry.Retrier
	limiter rate.Limiter
}

// Option configures the client.
type Option func(c *client)

// WithRateLimiter throttles outgoing requests per RPC method.
func WithRateLimiter(limiter rate.Limiter) Option {
	return func(c *client) {
		c.limiter = limiter
	}
}

// WithRetrier overrides the retry policy applied to every request.
func WithRetrier(retrier retry.Retrier) Option {
	return func(c *client) {
		c.retrier = retrier
	}
}

// WithRPCOptions configures the underlying JSON RPC transport.
func WithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Option {
	return func(c *client) {
		c.rpc = jsonrpc.NewClientWithOpts(endpoint, opts)
	}
}

// New returns a client using the specified endpoint. Rate limited and
// unhealthy node responses are retried with jittered backoff.
func New(endpoint string, opts ...Option) Client {
	c := &client{
		log: logrus.StandardLogger().WithField("type", "solana/client"),
		rpc: jsonrpc.NewClient(endpoint),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
		limiter: rate.Unlimited{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	log := c.log.WithField("method", method)

	_, err := c.retrier.Retry(context.Background(), func() error {
		allowed, err := c.limiter.Allow(method)
		if err != nil {
			return errors.Wrap(err, "failed to check rate limit")
		}
		if !allowed {
			log.Debug("locally rate limited")
			return errRateLimited
		}

		return classifyRPCError(log, c.rpc.CallFor(out, method, params...))
	})
	return err
}

// classifyRPCError maps transient node failures onto the retriable sentinels.
// Everything else is returned untouched so callers can inspect it.
func classifyRPCError(log *logrus.Entry, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}

	switch {
	case rpcErr.Code == tooManyRequestsCode:
		log.Warn("rate limited by node")
		return errRateLimited
	case rpcErr.Code >= 500, rpcErr.Code == rpcNodeUnhealthyCode:
		log.WithField("code", rpcErr.Code).Warn("node unavailable")
		return errServiceError
	}
	return err
}

func isInvalidParam(err error) bool {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	return ok && rpcErr.Code == invalidParamCode
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (uint64, error) {
	var lamports uint64
	if err := c.call(&lamports, methodGetMinimumBalance, dataSize); err != nil {
		return 0, errors.Wrapf(err, "%s() failed to send request", methodGetMinimumBalance)
	}
	return lamports, nil
}

// GetLatestBlockhash always queries the node. Blockhashes expire quickly, so
// they are fetched right before signing and never cached.
func (c *client) GetLatestBlockhash() (Blockhash, error) {
	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	var hash Blockhash
	if err := c.call(&resp, methodGetLatestBlockhash, []interface{}{CommitmentConfirmed}); err != nil {
		return hash, errors.Wrapf(err, "%s() failed to send request", methodGetLatestBlockhash)
	}

	decoded, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded hash in response")
	}
	if len(decoded) != len(hash) {
		return hash, errors.Errorf("invalid blockhash length %d", len(decoded))
	}

	copy(hash[:], decoded)
	return hash, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Context rpcContext  `json:"context"`
		Value   json.Number `json:"value"`
	}
	if err := c.call(&resp, methodGetBalance, base58.Encode(account), CommitmentProcessed); err != nil {
		if isInvalidParam(err) {
			return 0, ErrNoBalance
		}
		return 0, errors.Wrapf(err, "%s() failed to send request", methodGetBalance)
	}

	lamports, err := strconv.ParseUint(resp.Value.String(), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid balance in response")
	}
	return lamports, nil
}

// GetTokenAccountBalance returns the finalized balance of a token account in
// base units, along with the slot it was read at.
func (c *client) GetTokenAccountBalance(account ed25519.PublicKey) (uint64, uint64, error) {
	var resp struct {
		Context rpcContext  `json:"context"`
		Value   TokenAmount `json:"value"`
	}
	if err := c.call(&resp, methodGetTokenAccountBalance, base58.Encode(account), CommitmentFinalized); err != nil {
		if isInvalidParam(err) {
			return 0, 0, ErrNoBalance
		}
		return 0, 0, errors.Wrapf(err, "%s() failed to send request", methodGetTokenAccountBalance)
	}

	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return 0, 0, errors.Wrap(err, "invalid token amount in response")
	}
	return amount, resp.Context.Slot, nil
}

// SubmitTransaction sends a signed transaction. When the node rejects it with
// a runtime error, the returned error is the *TransactionError as reported.
func (c *client) SubmitTransaction(txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signatures[0]

	sendConfig := struct {
		Encoding            string `json:"encoding"`
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		Encoding:            "base64",
		PreflightCommitment: commitment.Commitment,
	}

	var ignored string
	err := c.call(&ignored, methodSendTransaction, base64.StdEncoding.EncodeToString(txn.Marshal()), sendConfig)
	if err == nil {
		return sig, nil
	}

	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrapf(err, "%s() failed to send request", methodSendTransaction)
	}

	txErr, parseErr := ParseRPCError(rpcErr)
	if parseErr != nil || txErr == nil {
		return sig, err
	}

	c.log.WithFields(logrus.Fields{
		"method":    methodSendTransaction,
		"signature": sig.ToBase58(),
		"error":     txErr.Error(),
	}).Debug("transaction rejected")
	return sig, txErr
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	var resp struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	accountConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var info AccountInfo
	if err := c.call(&resp, methodGetAccountInfo, base58.Encode(account), accountConfig); err != nil {
		return info, errors.Wrapf(err, "%s() failed to send request", methodGetAccountInfo)
	}

	v := resp.Value
	if v == nil {
		return info, ErrNoAccountInfo
	}
	if len(v.Data) == 0 {
		return info, errors.New("missing account data")
	}

	owner, err := base58.Decode(v.Owner)
	if err != nil {
		return info, errors.Wrap(err, "invalid base58 encoded owner")
	}
	data, err := base64.StdEncoding.DecodeString(v.Data[0])
	if err != nil {
		return info, errors.Wrap(err, "invalid base64 encoded data")
	}

	return AccountInfo{
		Data:       data,
		Owner:      owner,
		Lamports:   v.Lamports,
		Executable: v.Executable,
	}, nil
}

var errCommitmentNotReached = errors.New("commitment not reached")

// GetSignatureStatus polls until the signature reaches the commitment level,
// the transaction fails, or roughly 32 slots pass.
func (c *client) GetSignatureStatus(sig Signature, commitment Commitment) (*SignatureStatus, error) {
	var status *SignatureStatus
	_, err := retry.Retry(
		context.Background(),
		func() error {
			statuses, err := c.GetSignatureStatuses([]Signature{sig})
			if err != nil {
				return err
			}

			status = statuses[0]
			switch {
			case status == nil:
				return ErrSignatureNotFound
			case status.ErrorResult != nil, status.Reached(commitment):
				return nil
			}
			return errCommitmentNotReached
		},
		retry.RetriableErrors(ErrSignatureNotFound, errCommitmentNotReached),
		retry.Limit(sigStatusPollLimit),
		retry.Backoff(backoff.Constant(PollRate), PollRate),
	)
	return status, err
}

func (c *client) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	encoded := make([]string, len(sigs))
	for i, sig := range sigs {
		encoded[i] = sig.ToBase58()
	}

	searchConfig := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	var resp struct {
		Value []*struct {
			Slot               uint64          `json:"slot"`
			Confirmations      *int            `json:"confirmations"`
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}
	if err := c.call(&resp, methodGetSignatureStatuses, encoded, searchConfig); err != nil {
		return nil, errors.Wrapf(err, "%s() failed to send request", methodGetSignatureStatuses)
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		status := &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 && !bytes.Equal(v.Err, []byte("null")) {
			decoder := json.NewDecoder(bytes.NewReader(v.Err))
			decoder.UseNumber()

			var raw interface{}
			if err := decoder.Decode(&raw); err != nil {
				return nil, errors.Wrap(err, "failed to decode transaction error")
			}
			txErr, err := ParseTransactionError(raw)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction error")
			}
			status.ErrorResult = txErr
		}

		statuses[i] = status
	}

	return statuses, nil
}
