package marketplace

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
)

var (
	// ErrDerivationExhausted indicates no bump seed yielded an off-curve address.
	ErrDerivationExhausted = solana.ErrDerivationExhausted

	// ErrArgumentOutOfRange indicates a scalar argument can't be encoded.
	ErrArgumentOutOfRange = auctionhouse.ErrArgumentOutOfRange

	// ErrMissingAccount indicates an operation was built without a required account.
	ErrMissingAccount = auctionhouse.ErrMissingAccount

	ErrEmptyBatch             = errors.New("batch has no operations")
	ErrUnsupportedPaymentMode = errors.New("unsupported payment mode")
	ErrUploadFailed           = errors.New("content upload failed")
	ErrSubmissionFailed       = errors.New("transaction submission failed")
	ErrNotConfirmed           = errors.New("transaction not confirmed")
	ErrAuctionHouseMismatch   = errors.New("auction house does not match its derived addresses")
	ErrTradeStateMismatch     = errors.New("trade state does not match its derived address")
)

// SubmissionError is returned when the ledger rejects a batch. TxError is the
// runtime's verdict as reported. It is nil when the node refused the batch
// without a transaction error, in which case Unwrap returns the node's error.
type SubmissionError struct {
	Signature solana.Signature
	TxError   *solana.TransactionError
	cause     error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.TxError != nil:
		return fmt.Sprintf("%s: %s: %s", ErrSubmissionFailed, e.Signature.ToBase58(), e.TxError.Error())
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %s", ErrSubmissionFailed, e.Signature.ToBase58(), e.cause.Error())
	}
	return fmt.Sprintf("%s: %s", ErrSubmissionFailed, e.Signature.ToBase58())
}

// Is makes every SubmissionError match ErrSubmissionFailed.
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

func (e *SubmissionError) Unwrap() error {
	if e.TxError != nil {
		return e.TxError
	}
	return e.cause
}

// UploadError is returned when a settings document can't be uploaded. It
// matches ErrUploadFailed and unwraps to the uploader's error.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrUploadFailed, e.Name, e.Err.Error())
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUploadFailed
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
