package auctionhouse

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mr-tron/base58"
)

func putDiscriminator(dst []byte, v []byte, offset *int) {
	copy(dst[*offset:], v)
	*offset += 8
}
func getDiscriminator(src []byte, dst *[]byte, offset *int) {
	*dst = make([]byte, 8)
	copy(*dst, src[*offset:])
	*offset += 8
}

func getKey(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
}

func putBool(dst []byte, v bool, offset *int) {
	if v {
		dst[*offset] = 1
	} else {
		dst[*offset] = 0
	}
	*offset += 1
}
func getBool(src []byte, dst *bool, offset *int) {
	*dst = src[*offset] != 0
	*offset += 1
}

func putUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}
func getUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset += 1
}

func putUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst[*offset:], v)
	*offset += 2
}
func getUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src[*offset:])
	*offset += 2
}

func putUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}

// Borsh encodes Option<T> as a one byte tag followed by the value when present.
func optionalSize(present bool, size int) int {
	if present {
		return 1 + size
	}
	return 1
}
func putOptionalUint16(dst []byte, v *uint16, offset *int) {
	putBool(dst, v != nil, offset)
	if v != nil {
		putUint16(dst, *v, offset)
	}
}
func putOptionalBool(dst []byte, v *bool, offset *int) {
	putBool(dst, v != nil, offset)
	if v != nil {
		putBool(dst, *v, offset)
	}
}

func uint64Seed(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
