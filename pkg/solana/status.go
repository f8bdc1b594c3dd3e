package solana

import (
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"
)

const (
	ticksPerSec  = 160
	ticksPerSlot = 64
	slotsPerSec  = ticksPerSec / ticksPerSlot

	// PollRate is twice the slot rate.
	PollRate = (time.Second / slotsPerSec) / 2

	// ~32 slots at PollRate.
	sigStatusPollLimit = 2 * 32
)

// Commitment is the degree of finality requested from, or reported by, a
// node. It marshals as the RPC config object {"commitment": name}.
type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

var commitmentsByName = map[string]Commitment{
	confirmationStatusProcessed: CommitmentProcessed,
	confirmationStatusConfirmed: CommitmentConfirmed,
	confirmationStatusFinalized: CommitmentFinalized,
}

// ParseCommitment maps a commitment name onto one of the known levels.
func ParseCommitment(name string) (Commitment, error) {
	if c, ok := commitmentsByName[name]; ok {
		return c, nil
	}
	return Commitment{}, errors.Errorf("unknown commitment %q", name)
}

// AccountInfo is the raw state of an on chain account.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// SignatureStatus is the ledger's view of a submitted transaction.
type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations is nil once the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

func (s SignatureStatus) Confirmed() bool {
	switch {
	case s.Finalized():
		return true
	case s.ConfirmationStatus == confirmationStatusConfirmed:
		return true
	default:
		return *s.Confirmations > 0
	}
}

// Reached reports whether the status satisfies the commitment level. Any
// status the node reports has at least been processed.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentFinalized:
		return s.Finalized()
	case CommitmentConfirmed:
		return s.Confirmed()
	}
	return true
}
