package marketplace

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/token"
)

func TestSender_Send(t *testing.T) {
	env := setup(t)
	env.ledger.statuses = []*solana.SignatureStatus{nil, nil, confirmedStatus()}

	mode, err := ResolvePaymentMode(newKey(t))
	require.NoError(t, err)
	funding, err := mode.Fund(env.walletKey(), 10)
	require.NoError(t, err)

	ops, err := funding.Bracket(solana.NewInstruction(
		newKey(t),
		[]byte{1},
		solana.NewReadonlyAccountMeta(funding.TransferAuthority, false),
	))
	require.NoError(t, err)

	pending, err := Compose(ops, funding.Signers()...)
	require.NoError(t, err)

	sig, err := env.env.Sender.Send(context.Background(), pending)
	require.NoError(t, err)

	require.Len(t, env.ledger.submitted, 1)
	txn := env.ledger.submitted[0]
	assert.Equal(t, sig, txn.Signatures[0])
	assert.Equal(t, env.ledger.blockhash, txn.Message.RecentBlockhash)
	assert.Equal(t, env.walletKey(), txn.Message.Accounts[0])
	assert.Empty(t, txn.MissingSigners())
	assert.True(t, ed25519.Verify(env.walletKey(), txn.Message.Marshal(), txn.Signatures[0][:]))
	assert.Len(t, txn.Message.Instructions, 3)
	assert.Equal(t, 3, env.ledger.statusCalls)
}

func TestSender_EmptyBatch(t *testing.T) {
	env := setup(t)

	_, err := env.env.Sender.Send(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = env.env.Sender.Send(context.Background(), &PendingTransaction{})
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Empty(t, env.ledger.submitted)
}

func TestSender_MissingSigner(t *testing.T) {
	env := setup(t)

	pending, err := Compose([]solana.Instruction{
		solana.NewInstruction(newKey(t), []byte{1}, solana.NewAccountMeta(newKey(t), true)),
	})
	require.NoError(t, err)

	_, err = env.env.Sender.Send(context.Background(), pending)
	assert.Error(t, err)
	assert.Empty(t, env.ledger.submitted)
}

func TestSender_Rejected(t *testing.T) {
	env := setup(t)

	txErr := solana.TransactionErrorFromInstructionError(&solana.InstructionError{
		Index: 1,
		Err:   solana.CustomError(6001),
	})
	env.ledger.submitErr = txErr

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	sig, err := env.env.Sender.Send(context.Background(), pending)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	var submissionErr *SubmissionError
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, sig, submissionErr.Signature)
	assert.Same(t, txErr, submissionErr.TxError)

	raw, err := submissionErr.TxError.JSONString()
	require.NoError(t, err)
	assert.JSONEq(t, `{"InstructionError":[1,{"Custom":6001}]}`, raw)

	assert.Zero(t, env.ledger.statusCalls)
}

func TestSender_Refused(t *testing.T) {
	env := setup(t)

	refusal := &jsonrpc.RPCError{Code: -32003, Message: "Transaction signature verification failure"}
	env.ledger.submitErr = refusal

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	sig, err := env.env.Sender.Send(context.Background(), pending)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Contains(t, err.Error(), refusal.Message)

	var submissionErr *SubmissionError
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, sig, submissionErr.Signature)
	assert.Nil(t, submissionErr.TxError)

	var rpcErr *jsonrpc.RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Same(t, refusal, rpcErr)

	assert.Zero(t, env.ledger.statusCalls)
}

func TestSender_FailedOnLedger(t *testing.T) {
	env := setup(t)

	status := confirmedStatus()
	status.ErrorResult = solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	env.ledger.statuses = []*solana.SignatureStatus{status}

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	_, err = env.env.Sender.Send(context.Background(), pending)
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	var submissionErr *SubmissionError
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, solana.TransactionErrorInsufficientFundsForFee, submissionErr.TxError.ErrorKey())
}

func TestSender_TransportError(t *testing.T) {
	env := setup(t)
	env.ledger.submitErr = errors.New("connection reset")

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	_, err = env.env.Sender.Send(context.Background(), pending)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubmissionFailed)
}

func TestSender_NotConfirmed(t *testing.T) {
	env := setup(t)
	env.ledger.statuses = nil

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	start := time.Now()
	_, err = env.env.Sender.Send(context.Background(), pending)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Greater(t, env.ledger.statusCalls, 1)

	// Processed but never confirmed.
	zero := 0
	env.ledger.statuses = []*solana.SignatureStatus{{Slot: 1, Confirmations: &zero, ConfirmationStatus: "processed"}}
	_, err = env.env.Sender.Send(context.Background(), pending)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestSender_StatusErrorsRetried(t *testing.T) {
	env := setup(t)
	env.ledger.statusErr = errors.New("connection reset")
	env.ledger.statusFailures = 2

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	_, err = env.env.Sender.Send(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, 3, env.ledger.statusCalls)
}

func TestSender_StatusUnavailable(t *testing.T) {
	env := setup(t)
	env.ledger.statusErr = errors.New("connection reset")
	env.ledger.statusFailures = 1 << 20

	pending, err := Compose([]solana.Instruction{token.Revoke(newKey(t), env.walletKey())})
	require.NoError(t, err)

	_, err = env.env.Sender.Send(context.Background(), pending)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Greater(t, env.ledger.statusCalls, 1)
}
