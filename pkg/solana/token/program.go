package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// NativeMint is the mint of wrapped SOL. Auction houses that use it as their
// treasury mint settle in lamports.
//
// Current key: So11111111111111111111111111111111111111112
var NativeMint = ed25519.PublicKey{6, 155, 136, 87, 254, 171, 129, 132, 251, 104, 127, 99, 70, 24, 192, 53, 218, 196, 57, 220, 26, 235, 59, 85, 152, 160, 240, 0, 0, 0, 0, 1}

type Command byte

const (
	// nolint:varcheck,deadcode,unused
	CommandInitializeMint Command = iota
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig
	// nolint:varcheck,deadcode,unused
	CommandTransfer
	CommandApprove
	CommandRevoke

	CommandUnknown = Command(math.MaxUint8)
)

// IsNativeMint reports whether mint is the wrapped SOL mint.
func IsNativeMint(mint ed25519.PublicKey) bool {
	return bytes.Equal(mint, NativeMint)
}

func GetCommand(m solana.Message, index int) (Command, error) {
	if index >= len(m.Instructions) {
		return CommandUnknown, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(i.Data[0]), nil
}

// Approve grants delegate the right to move up to amount tokens out of source.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L99-L113
func Approve(source, delegate, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   * Single owner
	//   0. `[writable]` The source account.
	//   1. `[]` The delegate.
	//   2. `[signer]` The source account owner.
	data := make([]byte, 1+8)
	data[0] = byte(CommandApprove)
	binary.LittleEndian.PutUint64(data[1:], amount)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(delegate, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledApprove struct {
	Source   ed25519.PublicKey
	Delegate ed25519.PublicKey
	Owner    ed25519.PublicKey
	Amount   uint64
}

func DecompileApprove(m solana.Message, index int) (*DecompiledApprove, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(CommandApprove)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != 9 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return &DecompiledApprove{
		Source:   m.Accounts[i.Accounts[0]],
		Delegate: m.Accounts[i.Accounts[1]],
		Owner:    m.Accounts[i.Accounts[2]],
		Amount:   binary.LittleEndian.Uint64(i.Data[1:]),
	}, nil
}

// Revoke clears any delegation on source.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L114-L125
func Revoke(source, owner ed25519.PublicKey) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   * Single owner
	//   0. `[writable]` The source account.
	//   1. `[signer]` The source account owner.
	return solana.NewInstruction(
		ProgramKey,
		[]byte{byte(CommandRevoke)},
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

type DecompiledRevoke struct {
	Source ed25519.PublicKey
	Owner  ed25519.PublicKey
}

func DecompileRevoke(m solana.Message, index int) (*DecompiledRevoke, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.Equal(i.Data, []byte{byte(CommandRevoke)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return &DecompiledRevoke{
		Source: m.Accounts[i.Accounts[0]],
		Owner:  m.Accounts[i.Accounts[1]],
	}, nil
}
