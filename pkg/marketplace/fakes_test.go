package marketplace

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/holaplex/marketplace-go/pkg/solana"
	"github.com/holaplex/marketplace-go/pkg/solana/auctionhouse"
	"github.com/holaplex/marketplace-go/pkg/storage"
)

type fakeLedger struct {
	mu sync.Mutex

	blockhash     solana.Blockhash
	balances      map[string]uint64
	tokenBalances map[string]uint64
	rent          uint64
	accounts      map[string]solana.AccountInfo

	submitted []solana.Transaction
	submitErr error

	// statuses are returned in order, repeating the last one.
	statuses    []*solana.SignatureStatus
	statusCalls int

	// statusErr fails the next statusFailures status lookups.
	statusErr      error
	statusFailures int
}

func newFakeLedger() *fakeLedger {
	l := &fakeLedger{
		balances:      make(map[string]uint64),
		tokenBalances: make(map[string]uint64),
		accounts:      make(map[string]solana.AccountInfo),
		rent:          890_880,
	}
	l.blockhash[0] = 42
	return l
}

func (l *fakeLedger) GetLatestBlockhash() (solana.Blockhash, error) {
	return l.blockhash, nil
}

func (l *fakeLedger) GetBalance(account ed25519.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[base58.Encode(account)], nil
}

func (l *fakeLedger) GetTokenAccountBalance(account ed25519.PublicKey) (uint64, uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.tokenBalances[base58.Encode(account)]
	if !ok {
		return 0, 0, solana.ErrNoBalance
	}
	return balance, 1, nil
}

func (l *fakeLedger) GetMinimumBalanceForRentExemption(_ uint64) (uint64, error) {
	return l.rent, nil
}

func (l *fakeLedger) GetAccountInfo(account ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.accounts[base58.Encode(account)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

func (l *fakeLedger) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.submitted = append(l.submitted, txn)
	if l.submitErr != nil {
		return solana.Signature{}, l.submitErr
	}
	return txn.Signatures[0], nil
}

func (l *fakeLedger) GetSignatureStatus(_ solana.Signature, _ solana.Commitment) (*solana.SignatureStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.statusCalls++
	if l.statusFailures > 0 {
		l.statusFailures--
		return nil, l.statusErr
	}
	if len(l.statuses) == 0 {
		return nil, solana.ErrSignatureNotFound
	}

	status := l.statuses[0]
	if len(l.statuses) > 1 {
		l.statuses = l.statuses[1:]
	}
	if status == nil {
		return nil, solana.ErrSignatureNotFound
	}
	return status, nil
}

func confirmedStatus() *solana.SignatureStatus {
	one := 1
	return &solana.SignatureStatus{
		Slot:               100,
		Confirmations:      &one,
		ConfirmationStatus: "confirmed",
	}
}

type fakeUploader struct {
	uploads []fakeUpload
	err     error
}

type fakeUpload struct {
	name string
	data []byte
}

func (u *fakeUploader) UploadFile(_ context.Context, data []byte, name string) (*storage.File, error) {
	if u.err != nil {
		return nil, u.err
	}

	u.uploads = append(u.uploads, fakeUpload{name: name, data: data})
	return &storage.File{
		Name: name,
		Type: "application/json",
		URI:  "https://ipfs.example/" + name,
	}, nil
}

type testEnv struct {
	ledger *fakeLedger
	wallet ed25519.PrivateKey
	env    *Env
}

func setup(t *testing.T) *testEnv {
	_, wallet, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ledger := newFakeLedger()
	ledger.statuses = []*solana.SignatureStatus{confirmedStatus()}

	configProvider := withManualTestOverrides(&testOverrides{
		confirmationTimeout:      250 * time.Millisecond,
		confirmationPollInterval: time.Millisecond,
	})

	return &testEnv{
		ledger: ledger,
		wallet: wallet,
		env:    NewEnv(ledger, NewKeypairSigner(wallet), configProvider),
	}
}

func (e *testEnv) walletKey() ed25519.PublicKey {
	return e.wallet.Public().(ed25519.PublicKey)
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func newHouse(t *testing.T, owner, mint ed25519.PublicKey, fee uint16) *AuctionHouse {
	house, err := DeriveAuctionHouse(owner, mint)
	require.NoError(t, err)
	house.SellerFeeBasisPoints = fee
	return house
}

func newNft(t *testing.T, owner ed25519.PublicKey, creators ...Creator) *Nft {
	mint := newKey(t)
	ata, err := ReceivingTokenAccount(owner, mint)
	require.NoError(t, err)

	return &Nft{
		Name:        "Test",
		Address:     newKey(t),
		MintAddress: mint,
		Owner: NftOwner{
			Address:                       owner,
			AssociatedTokenAccountAddress: ata,
		},
		Creators: creators,
	}
}

// encodeAuctionHouse lays house out the way the program stores it.
func encodeAuctionHouse(house *AuctionHouse) []byte {
	data := make([]byte, auctionhouse.AuctionHouseAccountSize+220)
	copy(data, auctionhouse.AuctionHouseAccountDiscriminator)

	offset := 8
	for _, key := range []ed25519.PublicKey{
		house.AuctionHouseFeeAccount,
		house.AuctionHouseTreasury,
		house.TreasuryWithdrawalDestination,
		house.FeeWithdrawalDestination,
		house.TreasuryMint,
		house.Authority,
		house.Creator,
	} {
		copy(data[offset:], key)
		offset += ed25519.PublicKeySize
	}

	data[offset] = house.Bump
	data[offset+1] = house.TreasuryBump
	data[offset+2] = house.FeePayerBump
	binary.LittleEndian.PutUint16(data[offset+3:], house.SellerFeeBasisPoints)
	if house.RequiresSignOff {
		data[offset+5] = 1
	}
	if house.CanChangeSalePrice {
		data[offset+6] = 1
	}
	return data
}

func hasAccount(op solana.Instruction, key ed25519.PublicKey) bool {
	for _, account := range op.Accounts {
		if string(account.PublicKey) == string(key) {
			return true
		}
	}
	return false
}

func isSigner(op solana.Instruction, key ed25519.PublicKey) bool {
	for _, signer := range op.Signers() {
		if string(signer) == string(key) {
			return true
		}
	}
	return false
}

func tailAccounts(op solana.Instruction, n int) []solana.AccountMeta {
	return op.Accounts[len(op.Accounts)-n:]
}

func lastUint64(data []byte) uint64 {
	return binary.LittleEndian.Uint64(data[len(data)-8:])
}

var errUploadTimeout = errors.New("upload timed out")
