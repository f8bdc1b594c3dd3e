package marketplace

import (
	"context"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/retry"
	"github.com/holaplex/marketplace-go/pkg/retry/backoff"
	"github.com/holaplex/marketplace-go/pkg/solana"
)

const (
	senderMetricsStructName = "marketplace.sender"

	submittedEventName = "MarketplaceTransactionSubmitted"

	sendDurationMetricName   = "Marketplace/Sender/SendDuration"
	operationCountMetricName = "Marketplace/Sender/Operations"
)

var (
	errConfirmationsNotReached = errors.New("confirmations not reached")
	errStatusUnavailable       = errors.New("signature status unavailable")
)

// Sender is the signing boundary. It attaches the fee payer and a freshly
// fetched blockhash to a PendingTransaction, collects signatures, submits it
// and waits for the configured commitment.
type Sender struct {
	log    *logrus.Entry
	client LedgerClient
	signer Signer
	conf   *conf
}

func NewSender(client LedgerClient, signer Signer, configProvider ConfigProvider) *Sender {
	return &Sender{
		log:    logrus.StandardLogger().WithField("type", "marketplace/sender"),
		client: client,
		signer: signer,
		conf:   configProvider(),
	}
}

// Send consumes pending. A batch rejected by the ledger, at submission or
// once executed, yields a *SubmissionError carrying the runtime's error
// unmodified. Nothing is retried once signed.
func (s *Sender) Send(ctx context.Context, pending *PendingTransaction) (solana.Signature, error) {
	ctx, nrTxn := metrics.StartTransaction(ctx, "marketplace__sender__send")
	defer nrTxn.End()

	tracer := metrics.TraceMethodCall(ctx, senderMetricsStructName, "Send")
	defer tracer.End()

	start := time.Now()
	sig, err := s.send(ctx, pending)
	tracer.OnError(err)

	metrics.RecordDuration(ctx, sendDurationMetricName, time.Since(start))
	if pending != nil {
		metrics.RecordCount(ctx, operationCountMetricName, uint64(len(pending.Instructions)))
		tracer.AddAttributes(map[string]interface{}{
			"operations": len(pending.Instructions),
			"signers":    len(pending.Signers) + 1,
		})
	}

	outcome := "confirmed"
	if err != nil {
		outcome = "failed"
	}
	metrics.RecordEvent(ctx, submittedEventName, map[string]interface{}{
		"signature": sig.ToBase58(),
		"outcome":   outcome,
	})

	return sig, err
}

func (s *Sender) send(ctx context.Context, pending *PendingTransaction) (solana.Signature, error) {
	if pending == nil || len(pending.Instructions) == 0 {
		return solana.Signature{}, ErrEmptyBatch
	}

	commitment := s.conf.getCommitment(ctx)

	log := s.log.WithFields(logrus.Fields{
		"method":     "Send",
		"operations": pending.OperationNames(),
		"commitment": commitment.Commitment,
	})

	blockhash, err := s.client.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "error getting latest blockhash")
	}

	txn := solana.NewTransaction(s.signer.PublicKey(), pending.Instructions...)
	txn.SetBlockhash(blockhash)

	if len(pending.Signers) > 0 {
		if err := txn.Sign(pending.Signers...); err != nil {
			return solana.Signature{}, errors.Wrap(err, "error co-signing transaction")
		}
	}

	if err := s.signer.SignTransaction(ctx, &txn); err != nil {
		return solana.Signature{}, errors.Wrap(err, "error signing transaction")
	}

	if missing := txn.MissingSigners(); len(missing) > 0 {
		return solana.Signature{}, errors.Errorf("transaction is missing a signature from %s", base58.Encode(missing[0]))
	}

	sig := txn.Signatures[0]
	log = log.WithField("signature", sig.ToBase58())

	if _, err := s.client.SubmitTransaction(txn, commitment); err != nil {
		var txErr *solana.TransactionError
		if errors.As(err, &txErr) {
			log.WithError(err).Warn("transaction rejected")
			return sig, &SubmissionError{Signature: sig, TxError: txErr}
		}

		// Transient node errors are retried by the client, so an RPC error
		// surfacing here is the node refusing the batch.
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			log.WithError(err).Warn("transaction refused")
			return sig, &SubmissionError{Signature: sig, cause: rpcErr}
		}

		log.WithError(err).Warn("failure submitting transaction")
		return sig, errors.Wrap(err, "error submitting transaction")
	}

	status, err := s.confirm(ctx, sig, commitment)
	if err != nil {
		log.WithError(err).Warn("failure confirming transaction")
		return sig, err
	}

	if status.ErrorResult != nil {
		log.WithError(status.ErrorResult).Warn("transaction failed")
		return sig, &SubmissionError{Signature: sig, TxError: status.ErrorResult}
	}

	log.Debug("transaction confirmed")
	return sig, nil
}

// confirm polls the signature status until it fails or reaches commitment,
// giving up after the configured confirmation timeout. Status lookups that
// fail are retried within the same window.
func (s *Sender) confirm(ctx context.Context, sig solana.Signature, commitment solana.Commitment) (*solana.SignatureStatus, error) {
	timeout := s.conf.confirmationTimeout.Get(ctx)
	interval := s.conf.confirmationPollInterval.Get(ctx)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var status *solana.SignatureStatus
	var statusErr error
	_, err := retry.Retry(
		ctx,
		func() error {
			var err error
			status, err = s.client.GetSignatureStatus(sig, commitment)
			switch {
			case status != nil && status.ErrorResult != nil:
				return nil
			case status != nil && status.Reached(commitment):
				return nil
			case status != nil:
				return errConfirmationsNotReached
			case errors.Is(err, solana.ErrSignatureNotFound):
				return err
			case err != nil:
				s.log.WithError(err).WithField("signature", sig.ToBase58()).Debug("failure getting signature status")
				statusErr = err
				return errStatusUnavailable
			default:
				return solana.ErrSignatureNotFound
			}
		},
		retry.RetriableErrors(solana.ErrSignatureNotFound, errConfirmationsNotReached, errStatusUnavailable),
		retry.Backoff(backoff.Constant(interval), interval),
	)
	if err == nil {
		return status, nil
	}

	if errors.Is(err, errStatusUnavailable) {
		return nil, errors.Wrapf(ErrNotConfirmed, "%s not confirmed within %s, last status error: %v", sig.ToBase58(), timeout.Round(time.Millisecond), statusErr)
	}
	return nil, errors.Wrapf(ErrNotConfirmed, "%s not confirmed within %s", sig.ToBase58(), timeout.Round(time.Millisecond))
}
