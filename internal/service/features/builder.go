package features

import (
	"math"
	"sort"
	"time"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
)

const (
	// Window1h and Window10min are the trailing velocity windows.
	Window1h    = time.Hour
	Window10min = 10 * time.Minute
)

// Row is the engineered feature vector for one transaction.
type Row struct {
	// SourceIndex is the position of the originating record in the input batch.
	SourceIndex int `json:"source_index"`

	Amount              float64 `json:"amount"`
	OldBalanceOrig      float64 `json:"oldbalanceOrg"`
	NewBalanceOrig      float64 `json:"newbalanceOrig"`
	OldBalanceDest      float64 `json:"oldbalanceDest"`
	NewBalanceDest      float64 `json:"newbalanceDest"`
	ProvinceMatch       int     `json:"card_ip_province_match"`
	TransactionHour     int     `json:"transaction_hour"`
	Count1h             int     `json:"card_transaction_count_last_1h"`
	Count10min          int     `json:"card_transaction_count_last_10min"`
	IsNewDevice         int     `json:"is_new_device"`
	CardTypeCode        int     `json:"card_type_code"`
	TransactionTypeCode int     `json:"transaction_type_code"`
	Label               int     `json:"label"`
}

// Vector returns the model input in Columns order, label excluded.
func (r Row) Vector() []float64 {
	return []float64{
		fillMissing(r.Amount),
		fillMissing(r.OldBalanceOrig),
		fillMissing(r.NewBalanceOrig),
		fillMissing(r.OldBalanceDest),
		fillMissing(r.NewBalanceDest),
		float64(r.ProvinceMatch),
		float64(r.TransactionHour),
		float64(r.Count1h),
		float64(r.Count10min),
		float64(r.IsNewDevice),
		float64(r.CardTypeCode),
		float64(r.TransactionTypeCode),
	}
}

// Table is a batch of feature rows in ascending transaction-time order.
type Table struct {
	Rows []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Matrix returns the model inputs for every row.
func (t *Table) Matrix() [][]float64 {
	out := make([][]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Vector()
	}
	return out
}

// Build derives the feature table for a batch. The output is sorted by
// transaction time; ties keep their input order.
func Build(txns []transaction.Transaction) (*Table, error) {
	order := make([]int, len(txns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return txns[order[a]].TransactionTime.Before(txns[order[b]].TransactionTime)
	})

	cards := make([]string, len(order))
	devices := make([]string, len(order))
	times := make([]time.Time, len(order))
	for i, src := range order {
		cards[i] = txns[src].CardNumber
		devices[i] = txns[src].DeviceID
		times[i] = txns[src].TransactionTime
	}

	count1h := rollingCounts(cards, times, Window1h)
	count10min := rollingCounts(cards, times, Window10min)
	newDevice := firstOccurrence(cards, devices)

	rows := make([]Row, len(order))
	for i, src := range order {
		tx := txns[src]

		cardCode, err := tx.CardType.Code()
		if err != nil {
			return nil, errors.NewValidationError("UNKNOWN_CARD_TYPE", err.Error()).
				WithDetails(map[string]interface{}{"row": src})
		}
		typeCode, err := tx.Type.Code()
		if err != nil {
			return nil, errors.NewValidationError("UNKNOWN_TRANSACTION_TYPE", err.Error()).
				WithDetails(map[string]interface{}{"row": src})
		}

		rows[i] = Row{
			SourceIndex:         src,
			Amount:              tx.Amount.InexactFloat64(),
			OldBalanceOrig:      tx.OldBalanceOrig.InexactFloat64(),
			NewBalanceOrig:      tx.NewBalanceOrig.InexactFloat64(),
			OldBalanceDest:      tx.OldBalanceDest.InexactFloat64(),
			NewBalanceDest:      tx.NewBalanceDest.InexactFloat64(),
			ProvinceMatch:       boolToInt(tx.CardIPProvince == tx.TransactionProvince),
			TransactionHour:     tx.TransactionTime.Hour(),
			Count1h:             count1h[i],
			Count10min:          count10min[i],
			IsNewDevice:         newDevice[i],
			CardTypeCode:        cardCode,
			TransactionTypeCode: typeCode,
			Label:               tx.Label,
		}
	}

	return &Table{Rows: rows}, nil
}

func fillMissing(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
