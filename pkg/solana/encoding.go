package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"
	"math"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// ToBase58 returns the base58 representation used by explorers and RPC nodes.
func (s Signature) ToBase58() string {
	return base58.Encode(s[:])
}

// Marshal encodes the transaction in the legacy wire format: a compact list
// of signatures followed by the message.
func (t Transaction) Marshal() []byte {
	out := appendCompactLen(nil, len(t.Signatures))
	for _, sig := range t.Signatures {
		out = append(out, sig[:]...)
	}
	return append(out, t.Message.Marshal()...)
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := newDecoder(b)

	count, err := d.compactLen("signature count")
	if err != nil {
		return err
	}

	t.Signatures = make([]Signature, count)
	for i := range t.Signatures {
		if err := d.fill(t.Signatures[i][:], "signature"); err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
	}

	return t.Message.Unmarshal(d.remaining())
}

func (m Message) Marshal() []byte {
	out := []byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly}

	out = appendCompactLen(out, len(m.Accounts))
	for _, account := range m.Accounts {
		out = append(out, account...)
	}

	out = append(out, m.RecentBlockhash[:]...)

	out = appendCompactLen(out, len(m.Instructions))
	for _, instruction := range m.Instructions {
		out = append(out, instruction.ProgramIndex)
		out = appendCompactLen(out, len(instruction.Accounts))
		out = append(out, instruction.Accounts...)
		out = appendCompactLen(out, len(instruction.Data))
		out = append(out, instruction.Data...)
	}

	return out
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	d := newDecoder(b)

	var header [3]byte
	if err := d.fill(header[:], "header"); err != nil {
		return err
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	count, err := d.compactLen("account count")
	if err != nil {
		return err
	}
	m.Accounts = make([]ed25519.PublicKey, count)
	for i := range m.Accounts {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if err := d.fill(m.Accounts[i], "account"); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}

	if err := d.fill(m.RecentBlockhash[:], "recent blockhash"); err != nil {
		return err
	}

	count, err = d.compactLen("instruction count")
	if err != nil {
		return err
	}
	m.Instructions = make([]CompiledInstruction, count)
	for i := range m.Instructions {
		instruction, err := d.instruction(len(m.Accounts))
		if err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
		m.Instructions[i] = instruction
	}

	return nil
}

type decoder struct {
	r *bytes.Reader
}

func newDecoder(b []byte) *decoder {
	return &decoder{r: bytes.NewReader(b)}
}

func (d *decoder) remaining() []byte {
	rest := make([]byte, d.r.Len())
	_, _ = d.r.Read(rest)
	return rest
}

func (d *decoder) fill(dst []byte, field string) error {
	if _, err := io.ReadFull(d.r, dst); err != nil {
		return errors.Wrapf(err, "failed to read %s", field)
	}
	return nil
}

func (d *decoder) chunk(field string) ([]byte, error) {
	n, err := d.compactLen(field + " length")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	return out, d.fill(out, field)
}

// instruction reads a compiled instruction whose indexes must address one of
// accountCount accounts.
func (d *decoder) instruction(accountCount int) (CompiledInstruction, error) {
	var c CompiledInstruction

	programIndex, err := d.r.ReadByte()
	if err != nil {
		return c, errors.Wrap(err, "failed to read program index")
	}
	if int(programIndex) >= accountCount {
		return c, errors.Errorf("program index %d out of range", programIndex)
	}
	c.ProgramIndex = programIndex

	if c.Accounts, err = d.chunk("account indexes"); err != nil {
		return c, err
	}
	for _, index := range c.Accounts {
		if int(index) >= accountCount {
			return c, errors.Errorf("account index %d out of range", index)
		}
	}

	if c.Data, err = d.chunk("data"); err != nil {
		return c, err
	}
	return c, nil
}

// compactLen reads a compact-u16 ("shortvec") length of at most three bytes.
func (d *decoder) compactLen(field string) (int, error) {
	var n int
	for shift := 0; shift < 21; shift += 7 {
		elem, err := d.r.ReadByte()
		if err != nil {
			return 0, errors.Wrapf(err, "failed to read %s", field)
		}

		n |= int(elem&0x7f) << shift
		if elem&0x80 == 0 {
			return n, nil
		}
	}
	return 0, errors.Errorf("%s exceeds 3 bytes", field)
}

// appendCompactLen appends n as a compact-u16. Lengths past MaxUint16 cannot
// occur in a transaction that fits in a packet and panic.
func appendCompactLen(dst []byte, n int) []byte {
	if n < 0 || n > math.MaxUint16 {
		panic(errors.Errorf("compact length %d out of range", n))
	}

	for n >= 0x80 {
		dst = append(dst, byte(n&0x7f)|0x80)
		n >>= 7
	}
	return append(dst, byte(n))
}
