package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Taken from: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
const rustGenerated = "AUc7Cbu+gZalFSGeSFdukHhP7oSGaSdmdNEd5ZokaSysdoMWfIOzjrAbdaBZZuDMAfyNAogAJdrhgVya+jthsgoBAAEDnON0wdcmjhYIDuXvd10F2qEjAyEAJGSe/CGhYbk+WWMBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

// The above example does not have the correct public key encoded in the keypair.
// This is the above example with the correctly generated keypair.
const rustGeneratedAdjusted = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_CrossImpl(t *testing.T) {
	keypair := ed25519.PrivateKey{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75, 156, 227, 116, 193, 215, 38, 142, 22, 8,
		14, 229, 239, 119, 93, 5, 218, 161, 35, 3, 33, 0, 36, 100, 158, 252, 33, 161, 97, 185,
		62, 89, 99}
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))

	generated, err := base64.StdEncoding.DecodeString(rustGenerated)
	require.NoError(t, err)
	assert.Equal(t, generated, tx.Marshal())
}

func TestTransaction_GenerateValidCrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))
	assert.Equal(t, rustGeneratedAdjusted, base64.StdEncoding.EncodeToString(tx.Marshal()))
}

func TestTransaction_MarshalRoundTrip(t *testing.T) {
	expected := "AaZAGNONKTsNypCfvwHGipcWmAX/J03VfLQEHgMDSuHz0ktydqlLb7I4tZnX0Yw8KMTbma28M+yiZPaRolOJGgwBAAgQCR2hNbdxjAiYwC9CSEo2Vso3yq8OXlgoCbepyseaRXoIFE8MTz2ZtOsdNl55fj/zi0S+ArjIP4zJ3Y+MC4tKyQu7s1JPy6Hur6YbU0nF+1XBJYwii/dKtLsNFU/pTo19J7jOgutpJBZbNIhC5ppqC/OYlbzW1KqamkV3p+cslAoyBJxvWrSMXX+X0Ih0+sEzarslIYSV0T/NuLFcjpX8S7ajCdht+3+POhvGcGFzDyc4kIgjN/SAdypJM1Grs+eEtzXhQGM4VMy0p0J2CiOH+k2kwfya5F7fSaYXWOi3CJUGp9UXGSxWjuCKhF9z0peIzwNcMUWyGrNE2AYuqUAAAAan1RcZLFxRIYzJTD1K8X9Y2u4Im6H9ROPb2YoAAAAABt324ddloZPZy+FGzut5rBy0he1fWzeROoz1hX7/AKlDDB9w5G7eh4xhLJIgxblM0E4dxW+ZTABRcCVBt2LcH8b6evO+2606PWXzaqvJdDGxu+TC0vbg5HymAgNFL11hDcYoaKd+VYB6HNWIyaKadms+4q7NwH3gjP6RB91LMWUAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAMGRm/lIRcy/+ytunLDm+e8jOW7xfcSayxDmzpAAAAAjJclj04kifG7PRApFI4NgwtaE5na/xCEBI572Nvp+FmMVCZzhQC2pwD9u6aAm8haUDNRSZG/a7c1U/ltYtc+KAUNAwIHAAQEAAAADgAJA+gDAAAAAAAADgAFAkjoAQAPBwADCgsNCQgBAQwLAAUBBAwMBgwMAwlcCAoCAAAAmhMJCgIAAAAAAUgAAABlmEW1THFmZqyjBehuSli5bMSJBNiQMkZcr19LINSM4KF/whE1IayV174tmVwC9MMlQSmG3j6aJVhIDGMUITUNXRMTAAAAAAA="
	decoded, err := base64.StdEncoding.DecodeString(expected)
	require.NoError(t, err)
	var txn Transaction
	require.NoError(t, txn.Unmarshal(decoded))
	assert.Equal(t, decoded, txn.Marshal())
}

func TestTransaction_PromotesDuplicateKeys(t *testing.T) {
	keys := generateKeys(t, 2)
	payer := keys[0]
	program := keys[1]

	keys = generateKeys(t, 4)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(public(keys[i]), public(keys[j])) < 0
	})

	data := []byte{1, 2, 3}

	// The same accounts referenced by two instructions, once weakly and once
	// strongly, end up with the union of their flags.
	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			data,
			NewReadonlyAccountMeta(public(keys[0]), true),
			NewReadonlyAccountMeta(public(keys[1]), false),
			NewAccountMeta(public(keys[2]), false),
			NewAccountMeta(public(keys[3]), true),
		),
		NewInstruction(
			public(program),
			data,
			NewAccountMeta(public(keys[0]), false),
			NewReadonlyAccountMeta(public(keys[1]), true),
			NewReadonlyAccountMeta(public(keys[2]), false),
			NewReadonlyAccountMeta(public(keys[3]), false),
		),
	)

	assert.NoError(t, tx.Sign(keys[3], keys[1], payer, keys[0]))

	require.Len(t, tx.Signatures, 4)
	require.Len(t, tx.Message.Accounts, 6)
	assert.EqualValues(t, 4, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadOnly)

	assert.Equal(t, payer.Public(), tx.Message.Accounts[0])
	assert.Equal(t, keys[0].Public(), tx.Message.Accounts[1])
	assert.Equal(t, keys[3].Public(), tx.Message.Accounts[2])
	assert.Equal(t, keys[1].Public(), tx.Message.Accounts[3])
	assert.Equal(t, keys[2].Public(), tx.Message.Accounts[4])
	assert.Equal(t, program.Public(), tx.Message.Accounts[5])

	require.Len(t, tx.Message.Instructions, 2)
	for _, instruction := range tx.Message.Instructions {
		assert.Equal(t, byte(5), instruction.ProgramIndex)
		assert.Equal(t, data, instruction.Data)
		assert.Equal(t, []byte{1, 3, 4, 2}, instruction.Accounts)
	}

	message := tx.Message.Marshal()
	assert.True(t, ed25519.Verify(public(payer), message, tx.Signatures[0][:]))
	assert.True(t, ed25519.Verify(public(keys[0]), message, tx.Signatures[1][:]))
	assert.True(t, ed25519.Verify(public(keys[3]), message, tx.Signatures[2][:]))
	assert.True(t, ed25519.Verify(public(keys[1]), message, tx.Signatures[3][:]))
}

func TestTransaction_PartialSigning(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, coSigner, program := keys[0], keys[1], keys[2]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{7},
			NewReadonlyAccountMeta(public(coSigner), true),
		),
	)
	tx.SetBlockhash(Blockhash{1, 2, 3})

	assert.Equal(t, []ed25519.PublicKey{public(payer), public(coSigner)}, tx.RequiredSigners())
	assert.Len(t, tx.MissingSigners(), 2)

	require.NoError(t, tx.Sign(coSigner))
	assert.Equal(t, []ed25519.PublicKey{public(payer)}, tx.MissingSigners())

	sig := ed25519.Sign(payer, tx.Message.Marshal())
	var payerSig Signature
	copy(payerSig[:], sig)
	require.NoError(t, tx.AddSignature(public(payer), payerSig))
	assert.Empty(t, tx.MissingSigners())
	assert.Equal(t, payerSig[:], tx.Signature())

	// Signatures over a different message are rejected.
	var bogus Signature
	copy(bogus[:], ed25519.Sign(payer, []byte("not the message")))
	assert.Error(t, tx.AddSignature(public(payer), bogus))

	// Keys outside the signer set cannot sign.
	assert.Error(t, tx.Sign(program))
	assert.Error(t, tx.AddSignature(public(program), payerSig))
}

func TestTransaction_InvalidIndexes(t *testing.T) {
	keys := generateKeys(t, 2)
	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			nil,
			NewAccountMeta(public(keys[0]), true),
		),
	)
	tx.Message.Instructions[0].ProgramIndex = 2
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	tx = NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			nil,
			NewAccountMeta(public(keys[0]), true),
		),
	)
	tx.Message.Instructions[0].Accounts = []byte{2}
	assert.Error(t, tx.Unmarshal(tx.Marshal()))
}

func TestInstruction_WithSigner(t *testing.T) {
	keys := generateKeys(t, 3)

	original := NewInstruction(
		public(keys[0]),
		[]byte{1},
		NewAccountMeta(public(keys[1]), false),
		NewReadonlyAccountMeta(public(keys[2]), false),
	)

	promoted, found := original.WithSigner(public(keys[2]))
	require.True(t, found)
	assert.True(t, promoted.Accounts[1].IsSigner)
	assert.False(t, promoted.Accounts[1].IsWritable)
	assert.False(t, original.Accounts[1].IsSigner)
	assert.Equal(t, []ed25519.PublicKey{public(keys[2])}, promoted.Signers())

	_, found = original.WithSigner(public(keys[0]))
	assert.False(t, found)

	extended := original.WithRemainingAccounts(NewAccountMeta(public(keys[0]), false))
	assert.Len(t, extended.Accounts, 3)
	assert.Len(t, original.Accounts, 2)
}

func TestCompactLength(t *testing.T) {
	for n, encodedLen := range map[int]int{0: 1, 1: 1, 0x7f: 1, 0x80: 2, 0x3fff: 2, 0x4000: 3, math.MaxUint16: 3} {
		encoded := appendCompactLen([]byte{0xff}, n)
		require.Len(t, encoded, encodedLen+1)

		d := newDecoder(encoded[1:])
		actual, err := d.compactLen("length")
		require.NoError(t, err)
		assert.Equal(t, n, actual)
		assert.Empty(t, d.remaining())
	}

	assert.Panics(t, func() { appendCompactLen(nil, math.MaxUint16+1) })

	_, err := newDecoder([]byte{0x80, 0x80, 0x80, 0x01}).compactLen("length")
	assert.Error(t, err)

	_, err = newDecoder([]byte{0x80}).compactLen("length")
	assert.Error(t, err)
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}
