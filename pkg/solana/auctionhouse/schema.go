package auctionhouse

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana"
)

// accountSpec describes one position in an instruction's account list. Fixed
// accounts (programs and sysvars) are never supplied by the caller.
type accountSpec struct {
	name     string
	writable bool
	signer   bool
	fixed    ed25519.PublicKey
}

type instructionSchema struct {
	name          string
	discriminator []byte
	accounts      []accountSpec
}

func account(name string) accountSpec {
	return accountSpec{name: name}
}

func writable(name string) accountSpec {
	return accountSpec{name: name, writable: true}
}

func signer(name string) accountSpec {
	return accountSpec{name: name, signer: true}
}

func fixed(name string, key ed25519.PublicKey) accountSpec {
	return accountSpec{name: name, fixed: key}
}

func writableSigner(name string) accountSpec {
	return accountSpec{name: name, writable: true, signer: true}
}

// newData allocates the instruction data with the discriminator already in
// place. The returned offset points just past it.
func (s *instructionSchema) newData(argsSize int) ([]byte, int) {
	var offset int
	data := make([]byte, len(s.discriminator)+argsSize)
	putDiscriminator(data, s.discriminator, &offset)
	return data, offset
}

// build resolves every account in schema order from supplied, keyed by the
// account's name.
func (s *instructionSchema) build(data []byte, supplied map[string]ed25519.PublicKey) (solana.Instruction, error) {
	metas := make([]solana.AccountMeta, len(s.accounts))
	for i, spec := range s.accounts {
		key := spec.fixed
		if key == nil {
			key = supplied[spec.name]
		}
		if len(key) != ed25519.PublicKeySize {
			return solana.Instruction{}, errors.Wrapf(ErrMissingAccount, "%s: %s", s.name, spec.name)
		}

		metas[i] = solana.AccountMeta{
			PublicKey:  key,
			IsWritable: spec.writable,
			IsSigner:   spec.signer,
		}
	}

	return solana.NewInstruction(PROGRAM_ID, data, metas...), nil
}

// matches reports whether the instruction data starts with the schema's
// discriminator.
func (s *instructionSchema) matches(data []byte) bool {
	return bytes.HasPrefix(data, s.discriminator)
}

var schemas = []*instructionSchema{
	sellSchema,
	cancelSchema,
	publicBuySchema,
	buySchema,
	depositSchema,
	withdrawSchema,
	executeSaleSchema,
	withdrawFromTreasurySchema,
	withdrawFromFeeSchema,
	createAuctionHouseSchema,
	updateAuctionHouseSchema,
	printListingReceiptSchema,
	printBidReceiptSchema,
	printPurchaseReceiptSchema,
	cancelListingReceiptSchema,
	cancelBidReceiptSchema,
}

// InstructionName identifies an auction house instruction by its
// discriminator. It returns false for instructions of other programs.
func InstructionName(i solana.Instruction) (string, bool) {
	if !i.Program.Equal(PROGRAM_ID) {
		return "", false
	}
	for _, s := range schemas {
		if s.matches(i.Data) {
			return s.name, true
		}
	}
	return "", false
}
