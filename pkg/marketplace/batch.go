package marketplace

import (
	"bytes"
	"crypto/ed25519"

	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
	"github.com/holaplex/marketplace-go/pkg/solana/metaplex"
	"github.com/holaplex/marketplace-go/pkg/solana/token"
)

// PendingTransaction is an ordered batch of operations plus the keys that
// must co-sign it alongside the wallet. It carries no fee payer or
// blockhash; those are attached by Sender immediately before submission.
type PendingTransaction struct {
	Instructions []solana.Instruction
	Signers      []ed25519.PrivateKey
}

// Compose builds a PendingTransaction preserving the order of ops. Extra
// signers are deduplicated by public key.
func Compose(ops []solana.Instruction, extraSigners ...ed25519.PrivateKey) (*PendingTransaction, error) {
	if len(ops) == 0 {
		return nil, ErrEmptyBatch
	}

	instructions := make([]solana.Instruction, len(ops))
	copy(instructions, ops)

	pending := &PendingTransaction{
		Instructions: instructions,
	}
	pending.addSigners(extraSigners...)

	return pending, nil
}

// Merge concatenates several pending transactions into one atomic batch.
func Merge(pending ...*PendingTransaction) (*PendingTransaction, error) {
	var ops []solana.Instruction
	var signers []ed25519.PrivateKey
	for _, p := range pending {
		if p == nil {
			continue
		}
		ops = append(ops, p.Instructions...)
		signers = append(signers, p.Signers...)
	}

	return Compose(ops, signers...)
}

func (p *PendingTransaction) addSigners(signers ...ed25519.PrivateKey) {
	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)

		var exists bool
		for _, existing := range p.Signers {
			if bytes.Equal(existing.Public().(ed25519.PublicKey), pub) {
				exists = true
				break
			}
		}
		if !exists {
			p.Signers = append(p.Signers, s)
		}
	}
}

// OperationNames names each operation in the batch, for logging.
func (p *PendingTransaction) OperationNames() []string {
	names := make([]string, len(p.Instructions))
	for i, op := range p.Instructions {
		names[i] = operationName(op)
	}
	return names
}

func operationName(op solana.Instruction) string {
	if name, ok := auctionhouse.InstructionName(op); ok {
		return name
	}

	if len(op.Data) == 0 {
		return "unknown"
	}

	switch {
	case bytes.Equal(op.Program, token.ProgramKey):
		switch token.Command(op.Data[0]) {
		case token.CommandApprove:
			return "approve"
		case token.CommandRevoke:
			return "revoke"
		}
	case bytes.Equal(op.Program, metaplex.PROGRAM_ID):
		if metaplex.InstructionType(op.Data[0]) == metaplex.InstructionTypeSetStoreV2 {
			return "set_store_v2"
		}
	}

	return "unknown"
}
