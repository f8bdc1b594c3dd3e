package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidPublicKey is returned by CreateProgramAddress when the seeds
	// hash onto the ed25519 curve. Callers searching for a bump treat it as
	// "try the next bump".
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrDerivationExhausted indicates that no bump seed produced an address
	// off the ed25519 curve.
	ErrDerivationExhausted = errors.New("no viable bump seed for program address")
)

var (
	programHashCtor = sha256.New
)

// CreateProgramAddress hashes the seeds, program id and the program address
// marker into a candidate address, rejecting candidates that are valid curve
// points (and therefore could have a private key).
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := programHashCtor()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}

		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}
	if _, err := h.Write(program); err != nil {
		return nil, errors.Wrap(err, "failed to hash program id")
	}
	if _, err := h.Write([]byte(programAddressMarker)); err != nil {
		return nil, errors.Wrap(err, "failed to hash marker")
	}

	var candidate [ed25519.PublicKeySize]byte
	copy(candidate[:], h.Sum(nil))

	// x/crypto keeps its edwards25519 point decoding internal, so the point
	// decompression check relies on the jdgcs fork.
	var point edwards25519.ExtendedGroupElement
	if point.FromBytes(&candidate) {
		return nil, ErrInvalidPublicKey
	}

	return candidate[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 downwards, in the same
// order as the on-chain runtime, and returns the first off-curve address along
// with its bump. ErrDerivationExhausted is returned when every bump lands on
// the curve.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds), len(seeds)+1)
	copy(withBump, seeds)
	withBump = append(withBump, []byte{0})

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)][0] = uint8(bump)

		pub, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return pub, uint8(bump), nil
		case ErrInvalidPublicKey:
			continue
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrDerivationExhausted
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}
