package order

import (
	"fmt"

	"github.com/exoorder/backend/internal/domain/shared"
)

// receiveAccountDigits is how many trailing characters of the account number
// identify the receiving account in a submitted order
const receiveAccountDigits = 5

// BankAccount is a settlement account a customer can remit to.
// Records are static and never mutated after start-up.
type BankAccount struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
}

// ReceiveAccountTag returns the tag recorded with a submitted order:
// the last five characters of the account number, a hyphen, and the label.
func (b BankAccount) ReceiveAccountTag() string {
	digits := []rune(b.AccountNumber)
	if len(digits) > receiveAccountDigits {
		digits = digits[len(digits)-receiveAccountDigits:]
	}
	return string(digits) + "-" + b.Label
}

// DefaultBankAccounts are the settlement accounts shipped with the system.
//
// D and E were flagged upstream as a possible transcription mix-up; they are
// kept exactly as provided until the owner confirms the right numbers.
var DefaultBankAccounts = []BankAccount{
	{ID: "A", Label: "Chen", BankName: "中國信託", BankCode: "822", AccountNumber: "808540401057"},
	{ID: "B", Label: "少鈞", BankName: "國泰世華", BankCode: "013", AccountNumber: "699513716269"},
	{ID: "C", Label: "鈞媽", BankName: "中國信託", BankCode: "822", AccountNumber: "0000107531864731"},
	{ID: "D", Label: "傑", BankName: "新光銀行", BankCode: "103", AccountNumber: "0338501170734"},
	{ID: "E", Label: "郁幃", BankName: "玉山銀行", BankCode: "808", AccountNumber: "0968979255"},
	{ID: "F", Label: "賣貨便", BankName: "賣貨便", BankCode: "", AccountNumber: ""},
}

// BankDirectory is an ordered, read-only lookup table of bank accounts
type BankDirectory struct {
	accounts []BankAccount
	byID     map[string]int
}

// NewBankDirectory builds a directory; ids must be non-empty and unique
func NewBankDirectory(accounts []BankAccount) (*BankDirectory, error) {
	if len(accounts) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalid, "Bank directory cannot be empty")
	}
	d := &BankDirectory{
		accounts: make([]BankAccount, len(accounts)),
		byID:     make(map[string]int, len(accounts)),
	}
	copy(d.accounts, accounts)
	for i, acc := range d.accounts {
		if acc.ID == "" {
			return nil, shared.NewDomainError(shared.CodeInvalid, "Bank account ID cannot be empty")
		}
		if _, dup := d.byID[acc.ID]; dup {
			return nil, shared.NewDomainError(shared.CodeInvalid, fmt.Sprintf("Duplicate bank account ID %q", acc.ID))
		}
		d.byID[acc.ID] = i
	}
	return d, nil
}

// DefaultBankDirectory returns the directory built from DefaultBankAccounts
func DefaultBankDirectory() *BankDirectory {
	d, err := NewBankDirectory(DefaultBankAccounts)
	if err != nil {
		panic(err)
	}
	return d
}

// Lookup resolves an account by id
func (d *BankDirectory) Lookup(id string) (BankAccount, bool) {
	i, ok := d.byID[id]
	if !ok {
		return BankAccount{}, false
	}
	return d.accounts[i], true
}

// Default returns the first account, which new drafts select
func (d *BankDirectory) Default() BankAccount {
	return d.accounts[0]
}

// All returns the accounts in directory order
func (d *BankDirectory) All() []BankAccount {
	out := make([]BankAccount, len(d.accounts))
	copy(out, d.accounts)
	return out
}
