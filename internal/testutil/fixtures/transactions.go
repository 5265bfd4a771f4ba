package fixtures

import (
	"time"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
)

// BaseTime is the reference clock used by fixtures.
var BaseTime = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

// TransactionBuilder builds test Transaction values
type TransactionBuilder struct {
	tx transaction.Transaction
}

// NewTransactionBuilder creates a builder with a clean, same-province VISA transfer.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: transaction.Transaction{
			CardNumber:          "CARD1",
			CardIPProvince:      "Gauteng",
			TransactionProvince: "Gauteng",
			TransactionTime:     BaseTime,
			DeviceID:            "DEVICE1",
			CardType:            transaction.CardTypeVISA,
			Type:                transaction.TypeTransfer,
			Amount:              values.MustParseAmount("100"),
			OldBalanceOrig:      values.MustParseAmount("1000"),
			NewBalanceOrig:      values.MustParseAmount("900"),
			OldBalanceDest:      values.MustParseAmount("0"),
			NewBalanceDest:      values.MustParseAmount("100"),
		},
	}
}

func (b *TransactionBuilder) WithCard(card string) *TransactionBuilder {
	b.tx.CardNumber = card
	return b
}

func (b *TransactionBuilder) WithDevice(device string) *TransactionBuilder {
	b.tx.DeviceID = device
	return b
}

func (b *TransactionBuilder) WithProvinces(cardIP, txn string) *TransactionBuilder {
	b.tx.CardIPProvince = cardIP
	b.tx.TransactionProvince = txn
	return b
}

func (b *TransactionBuilder) At(t time.Time) *TransactionBuilder {
	b.tx.TransactionTime = t
	return b
}

// After places the transaction d after BaseTime.
func (b *TransactionBuilder) After(d time.Duration) *TransactionBuilder {
	b.tx.TransactionTime = BaseTime.Add(d)
	return b
}

func (b *TransactionBuilder) WithCardType(ct transaction.CardType) *TransactionBuilder {
	b.tx.CardType = ct
	return b
}

func (b *TransactionBuilder) WithType(tt transaction.Type) *TransactionBuilder {
	b.tx.Type = tt
	return b
}

func (b *TransactionBuilder) WithAmount(amount string) *TransactionBuilder {
	b.tx.Amount = values.MustParseAmount(amount)
	return b
}

func (b *TransactionBuilder) WithLabel(label int) *TransactionBuilder {
	b.tx.Label = label
	return b
}

// Build returns the transaction value.
func (b *TransactionBuilder) Build() transaction.Transaction {
	return b.tx
}

// UploadHeader is the header row of a well-formed upload CSV.
const UploadHeader = "card_number,card_ip_province,transaction_province,transaction_time,device_id,card_type,transaction_type,amount,oldbalanceOrg,newbalanceOrig,oldbalanceDest,newbalanceDest,label"

// UploadCSV is a small upload with rows deliberately out of time order.
const UploadCSV = UploadHeader + `
CARD1,Gauteng,Gauteng,2024-01-15 10:05:00,DEVICE1,VISA,TRANSFER,250.00,1000,750,0,250,0
CARD1,Gauteng,Gauteng,2024-01-15 10:00:00,DEVICE1,VISA,TRANSFER,100.00,1100,1000,0,100,0
CARD2,Limpopo,Western Cape,2024-01-15 03:30:00,DEVICE9,AMEX,CASH_OUT,9000.00,9000,0,0,0,1
`

// UsageLog is a headerless usage log spanning two months.
const UsageLog = `2024-01-03 09:00:00,acme,api,3000
2024-01-20 12:30:00,acme,batch,2001
2024-01-21 08:00:00,globex,api,5000
2024-02-02 10:00:00,acme,api,10
`
