package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardType is the card scheme of a transaction.
type CardType string

const (
	CardTypeVISA       CardType = "VISA"
	CardTypeMasterCard CardType = "MasterCard"
	CardTypeAMEX       CardType = "AMEX"
)

// Type is the payment channel of a transaction.
type Type string

const (
	TypeTransfer Type = "TRANSFER"
	TypeCashOut  Type = "CASH_OUT"
	TypeDebit    Type = "DEBIT"
	TypePayment  Type = "PAYMENT"
)

// Defaults offered by the manual entry form.
const (
	DefaultManualCard   = "CARD1234"
	DefaultManualDevice = "DEVICE1"
)

// Provinces lists the province values offered for manual entry.
var Provinces = []string{
	"Gauteng",
	"Western Cape",
	"KwaZulu-Natal",
	"Eastern Cape",
	"Limpopo",
	"Mpumalanga",
	"North West",
	"Free State",
	"Northern Cape",
}

// Transaction is one raw card-not-present transaction as supplied by the caller.
type Transaction struct {
	CardNumber          string
	CardIPProvince      string
	TransactionProvince string
	TransactionTime     time.Time
	DeviceID            string
	CardType            CardType
	Type                Type
	Amount              decimal.Decimal
	OldBalanceOrig      decimal.Decimal
	NewBalanceOrig      decimal.Decimal
	OldBalanceDest      decimal.Decimal
	NewBalanceDest      decimal.Decimal
	// Label is the ground-truth fraud flag; 0 for live scoring input.
	Label int
}
