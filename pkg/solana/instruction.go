package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta describes how an instruction accesses an account.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
	isPayer    bool
	isProgram  bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// SortableAccountMeta orders accounts the way the runtime expects them in a
// message: payer, signers, writable accounts, then programs.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
type SortableAccountMeta []AccountMeta

func (s SortableAccountMeta) Len() int {
	return len(s)
}

func (s SortableAccountMeta) Less(i int, j int) bool {
	if s[i].isPayer != s[j].isPayer {
		return s[i].isPayer
	}
	if s[i].isProgram != s[j].isProgram {
		return !s[i].isProgram
	}

	if s[i].IsSigner != s[j].IsSigner {
		return s[i].IsSigner
	}
	if s[i].IsWritable != s[j].IsWritable {
		return s[i].IsWritable
	}

	return bytes.Compare(s[i].PublicKey, s[j].PublicKey) < 0
}

func (s SortableAccountMeta) Swap(i int, j int) {
	s[i], s[j] = s[j], s[i]
}

// Instruction is a fully resolved program invocation.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// WithRemainingAccounts returns a copy of the instruction with extra accounts
// appended after the fixed account list.
func (i Instruction) WithRemainingAccounts(remaining ...AccountMeta) Instruction {
	accounts := make([]AccountMeta, 0, len(i.Accounts)+len(remaining))
	accounts = append(accounts, i.Accounts...)
	accounts = append(accounts, remaining...)

	return Instruction{
		Program:  i.Program,
		Data:     i.Data,
		Accounts: accounts,
	}
}

// WithSigner returns a copy of the instruction where every reference to pub
// is marked as a signer. The second return value reports whether pub was
// referenced at all.
func (i Instruction) WithSigner(pub ed25519.PublicKey) (Instruction, bool) {
	accounts := make([]AccountMeta, len(i.Accounts))
	copy(accounts, i.Accounts)

	var found bool
	for j := range accounts {
		if bytes.Equal(accounts[j].PublicKey, pub) {
			accounts[j].IsSigner = true
			found = true
		}
	}

	return Instruction{
		Program:  i.Program,
		Data:     i.Data,
		Accounts: accounts,
	}, found
}

// Signers returns the distinct accounts the instruction requires signatures
// from, in first-reference order.
func (i Instruction) Signers() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, a := range i.Accounts {
		if !a.IsSigner || indexOf(signers, a.PublicKey) >= 0 {
			continue
		}
		signers = append(signers, a.PublicKey)
	}
	return signers
}

// CompiledInstruction is an instruction whose accounts have been replaced by
// indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
