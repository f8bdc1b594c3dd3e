package marketplace

import (
	"github.com/holaplex/marketplace-go/pkg/solana"
)

// ExpandRoyaltyAccounts builds the trailing execute_sale accounts: each
// creator in declared order, followed by its associated token account when
// paying in SPL tokens.
func ExpandRoyaltyAccounts(creators []Creator, mode PaymentMode) ([]solana.AccountMeta, error) {
	perCreator := 1
	if !mode.IsNative() {
		perCreator = 2
	}

	accounts := make([]solana.AccountMeta, 0, perCreator*len(creators))
	for _, creator := range creators {
		accounts = append(accounts, solana.NewAccountMeta(creator.Address, false))
		if mode.IsNative() {
			continue
		}

		ata, err := mode.ReceivingAccount(creator.Address)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, solana.NewAccountMeta(ata, false))
	}

	return accounts, nil
}
