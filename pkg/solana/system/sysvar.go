package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
)

var (
	// RentSysVar exposes the cluster's rent parameters.
	//
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
	RentSysVar = mustDecodeKey("SysvarRent111111111111111111111111111111111")

	// InstructionsSysVar lets a program read the other instructions of the
	// executing transaction. Receipt instructions use it to inspect the
	// instruction preceding them.
	InstructionsSysVar = mustDecodeKey("Sysvar1nstructions1111111111111111111111111")
)

func mustDecodeKey(encoded string) ed25519.PublicKey {
	key, err := base58.Decode(encoded)
	if err != nil {
		panic(err)
	}
	if len(key) != ed25519.PublicKeySize {
		panic("system: invalid sysvar key length")
	}
	return key
}
