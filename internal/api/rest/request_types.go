package rest

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
)

// ManualEntryRequest is one hand-entered transaction, from JSON or the
// manual entry form. Blank card, device and time fall back to defaults.
type ManualEntryRequest struct {
	CardNumber          string          `json:"card_number" validate:"omitempty,max=64"`
	CardIPProvince      string          `json:"card_ip_province" validate:"required,province"`
	TransactionProvince string          `json:"transaction_province" validate:"required,province"`
	TransactionTime     string          `json:"transaction_time" validate:"omitempty,max=64"`
	DeviceID            string          `json:"device_id" validate:"omitempty,max=64"`
	CardType            string          `json:"card_type" validate:"required,cardtype"`
	TransactionType     string          `json:"transaction_type" validate:"required,txntype"`
	Amount              decimal.Decimal `json:"amount" validate:"min=0"`
	OldBalanceOrig      decimal.Decimal `json:"oldbalanceOrg" validate:"min=0"`
	NewBalanceOrig      decimal.Decimal `json:"newbalanceOrig" validate:"min=0"`
	OldBalanceDest      decimal.Decimal `json:"oldbalanceDest" validate:"min=0"`
	NewBalanceDest      decimal.Decimal `json:"newbalanceDest" validate:"min=0"`
}

// manualEntryFromForm reads the manual entry form. Unparseable amounts are
// reported per field.
func manualEntryFromForm(form url.Values) (*ManualEntryRequest, error) {
	req := &ManualEntryRequest{
		CardNumber:          strings.TrimSpace(form.Get("card_number")),
		CardIPProvince:      form.Get("card_ip_province"),
		TransactionProvince: form.Get("transaction_province"),
		TransactionTime:     strings.TrimSpace(form.Get("transaction_time")),
		DeviceID:            strings.TrimSpace(form.Get("device_id")),
		CardType:            form.Get("card_type"),
		TransactionType:     form.Get("transaction_type"),
	}

	fields := make(map[string][]string)
	amounts := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"amount", &req.Amount},
		{"oldbalanceOrg", &req.OldBalanceOrig},
		{"newbalanceOrig", &req.NewBalanceOrig},
		{"oldbalanceDest", &req.OldBalanceDest},
		{"newbalanceDest", &req.NewBalanceDest},
	}
	for _, a := range amounts {
		v, err := values.ParseAmount(form.Get(a.name))
		if err != nil {
			fields[a.name] = append(fields[a.name], "Must be a number")
			continue
		}
		*a.dst = v
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Validation failed", Fields: fields}
	}
	return req, nil
}

// Transaction converts the request, applying defaults. now supplies the
// transaction time when none was given.
func (r *ManualEntryRequest) Transaction(now time.Time) (transaction.Transaction, error) {
	card := r.CardNumber
	if card == "" {
		card = transaction.DefaultManualCard
	}
	device := r.DeviceID
	if device == "" {
		device = transaction.DefaultManualDevice
	}

	at := now
	if r.TransactionTime != "" {
		t, err := values.ParseTimestamp(r.TransactionTime)
		if err != nil {
			return transaction.Transaction{}, &ValidationError{
				Message: "Validation failed",
				Fields:  map[string][]string{"transaction_time": {"Must be a valid timestamp"}},
			}
		}
		at = t
	}

	return transaction.Transaction{
		CardNumber:          card,
		CardIPProvince:      r.CardIPProvince,
		TransactionProvince: r.TransactionProvince,
		TransactionTime:     at,
		DeviceID:            device,
		CardType:            transaction.CardType(strings.TrimSpace(r.CardType)),
		Type:                transaction.Type(strings.TrimSpace(r.TransactionType)),
		Amount:              r.Amount,
		OldBalanceOrig:      r.OldBalanceOrig,
		NewBalanceOrig:      r.NewBalanceOrig,
		OldBalanceDest:      r.OldBalanceDest,
		NewBalanceDest:      r.NewBalanceDest,
	}, nil
}
