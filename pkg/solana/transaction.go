package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy (unversioned) transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a message paid for by payer.
// Instruction order is preserved. Each account appears once, carrying the
// strongest access any instruction requested, in runtime order.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	m := compileMessage(payer, instructions)
	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

func compileMessage(payer ed25519.PublicKey, instructions []Instruction) Message {
	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}
	for _, i := range instructions {
		metas = append(metas, AccountMeta{PublicKey: i.Program, isProgram: true})
		metas = append(metas, i.Accounts...)
	}

	metas = mergeAccountMetas(metas)
	sort.Sort(SortableAccountMeta(metas))

	var m Message
	positions := make(map[string]byte, len(metas))
	for _, meta := range metas {
		key := meta.PublicKey
		if len(key) == 0 {
			key = make([]byte, ed25519.PublicKeySize)
		}
		positions[string(meta.PublicKey)] = byte(len(m.Accounts))
		m.Accounts = append(m.Accounts, key)

		switch {
		case meta.IsSigner && !meta.IsWritable:
			m.Header.NumSignatures++
			m.Header.NumReadonlySigned++
		case meta.IsSigner:
			m.Header.NumSignatures++
		case !meta.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	m.Instructions = make([]CompiledInstruction, len(instructions))
	for n, i := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: positions[string(i.Program)],
			Data:         i.Data,
			Accounts:     make([]byte, len(i.Accounts)),
		}
		for k, a := range i.Accounts {
			compiled.Accounts[k] = positions[string(a.PublicKey)]
		}
		m.Instructions[n] = compiled
	}

	return m
}

// Signature returns the fee payer's signature, which identifies the
// transaction on the ledger.
func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

// RequiredSigners returns the accounts whose signatures the message requires,
// fee payer first.
func (t *Transaction) RequiredSigners() []ed25519.PublicKey {
	return t.Message.Accounts[:t.Message.Header.NumSignatures]
}

// MissingSigners returns the required signers that have not signed yet.
func (t *Transaction) MissingSigners() []ed25519.PublicKey {
	var missing []ed25519.PublicKey
	for i, signer := range t.RequiredSigners() {
		if t.Signatures[i] == (Signature{}) {
			missing = append(missing, signer)
		}
	}
	return missing
}

// String renders the transaction for debugging.
func (t *Transaction) String() string {
	var sb strings.Builder

	h := t.Message.Header
	fmt.Fprintf(&sb, "signatures(%d):\n", len(t.Signatures))
	for i, sig := range t.Signatures {
		fmt.Fprintf(&sb, "  [%d] %s\n", i, base58.Encode(sig[:]))
	}
	fmt.Fprintf(&sb, "header: signatures=%d readonly_signed=%d readonly=%d\n", h.NumSignatures, h.NumReadonlySigned, h.NumReadOnly)
	fmt.Fprintf(&sb, "blockhash: %s\n", base58.Encode(t.Message.RecentBlockhash[:]))
	fmt.Fprintf(&sb, "accounts(%d):\n", len(t.Message.Accounts))
	for i, account := range t.Message.Accounts {
		fmt.Fprintf(&sb, "  [%d] %s\n", i, base58.Encode(account))
	}
	fmt.Fprintf(&sb, "instructions(%d):\n", len(t.Message.Instructions))
	for i, instruction := range t.Message.Instructions {
		fmt.Fprintf(&sb, "  [%d] program=%d accounts=%v data=%x\n", i, instruction.ProgramIndex, instruction.Accounts, instruction.Data)
	}
	return sb.String()
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each of the provided keys. Keys may be a subset
// of the required signers, which allows co-signers and the wallet to sign at
// different points.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// AddSignature places an externally produced signature for pub.
func (t *Transaction) AddSignature(pub ed25519.PublicKey, sig Signature) error {
	index := indexOf(t.Message.Accounts, pub)
	if index < 0 || index >= len(t.Signatures) {
		return errors.Errorf("account %s is not a required signer", base58.Encode(pub))
	}

	if !ed25519.Verify(pub, t.Message.Marshal(), sig[:]) {
		return errors.Errorf("invalid signature for %s", base58.Encode(pub))
	}

	t.Signatures[index] = sig
	return nil
}

// mergeAccountMetas collapses repeated references to the same account,
// keeping the first position. Repeats can only strengthen access.
func mergeAccountMetas(metas []AccountMeta) []AccountMeta {
	merged := make([]AccountMeta, 0, len(metas))
	seen := make(map[string]int, len(metas))

	for _, meta := range metas {
		n, ok := seen[string(meta.PublicKey)]
		if !ok {
			seen[string(meta.PublicKey)] = len(merged)
			merged = append(merged, meta)
			continue
		}

		merged[n].IsSigner = merged[n].IsSigner || meta.IsSigner
		merged[n].IsWritable = merged[n].IsWritable || meta.IsWritable
		merged[n].isPayer = merged[n].isPayer || meta.isPayer
	}

	return merged
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
