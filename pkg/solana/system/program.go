package system

import (
	"crypto/ed25519"
)

// ProgramKey is the address of the system program.
//
// Current key: 11111111111111111111111111111111
var ProgramKey [32]byte

// ProgramAccount returns ProgramKey as a public key.
func ProgramAccount() ed25519.PublicKey {
	return ProgramKey[:]
}
