package auctionhouse

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/holaplex/marketplace-go/pkg/solana/system"
	"github.com/holaplex/marketplace-go/pkg/solana/token"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrMissingAccount         = errors.New("missing instruction account")
	ErrArgumentOutOfRange     = errors.New("argument out of range")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("hausS13jsjafwWwGqZTUQRmWyvyxn9EQpqMwV1PBBmk")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID               = system.ProgramAccount()
	SPL_TOKEN_PROGRAM_ID            = token.ProgramKey
	SPL_ASSOCIATED_TOKEN_PROGRAM_ID = token.AssociatedProgramKey

	SYSVAR_RENT_PUBKEY         = system.RentSysVar
	SYSVAR_INSTRUCTIONS_PUBKEY = system.InstructionsSysVar
)

// MaxBasisPoints bounds both seller fee basis points and creator share totals.
const MaxBasisPoints = 10_000
