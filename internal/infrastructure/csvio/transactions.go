package csvio

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
	"github.com/davidleathers/cnp-fraud-console/internal/service/features"
)

// Upload column names.
const (
	ColCardNumber          = "card_number"
	ColCardIPProvince      = "card_ip_province"
	ColTransactionProvince = "transaction_province"
	ColTransactionTime     = "transaction_time"
	ColDeviceID            = "device_id"
	ColCardType            = "card_type"
	ColTransactionType     = "transaction_type"
)

// TransactionColumns lists the columns an upload must carry. Extra
// columns are ignored.
var TransactionColumns = []string{
	ColCardNumber,
	ColCardIPProvince,
	ColTransactionProvince,
	ColTransactionTime,
	ColDeviceID,
	ColCardType,
	ColTransactionType,
	features.ColAmount,
	features.ColOldBalanceOrig,
	features.ColNewBalanceOrig,
	features.ColOldBalanceDest,
	features.ColNewBalanceDest,
	features.ColLabel,
}

const utf8BOM = "\ufeff"

// ReadTransactions decodes a header-led upload. Categories are carried
// through as written and checked when features are built. Transaction
// times must either all carry a UTC offset or all be naive: rows are
// ordered by instant but bucketed by wall-clock hour.
func ReadTransactions(r io.Reader) ([]transaction.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewSchemaError("EMPTY_UPLOAD", "upload has no header row").
			WithDetails(map[string]interface{}{"missing": TransactionColumns})
	}
	if err != nil {
		return nil, csvError(err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range TransactionColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError("MISSING_COLUMNS",
			"upload is missing required columns: "+strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"missing": missing})
	}

	var txns []transaction.Transaction
	var firstOffset bool
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		tx, hasOffset, err := decodeTransaction(record, index, line)
		if err != nil {
			return nil, err
		}
		if len(txns) == 0 {
			firstOffset = hasOffset
		} else if hasOffset != firstOffset {
			return nil, errors.NewParseError(ColTransactionTime, line,
				"transaction times mix values with and without a UTC offset")
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

func decodeTransaction(record []string, index map[string]int, line int) (transaction.Transaction, bool, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[index[col]])
	}

	ts, hasOffset, err := values.ParseTimestampOffset(field(ColTransactionTime))
	if err != nil {
		return transaction.Transaction{}, false, errors.NewParseError(ColTransactionTime, line, err.Error())
	}

	tx := transaction.Transaction{
		CardNumber:          field(ColCardNumber),
		CardIPProvince:      field(ColCardIPProvince),
		TransactionProvince: field(ColTransactionProvince),
		TransactionTime:     ts,
		DeviceID:            field(ColDeviceID),
		CardType:            transaction.CardType(field(ColCardType)),
		Type:                transaction.Type(field(ColTransactionType)),
	}

	amounts := []struct {
		col string
		dst *decimal.Decimal
	}{
		{features.ColAmount, &tx.Amount},
		{features.ColOldBalanceOrig, &tx.OldBalanceOrig},
		{features.ColNewBalanceOrig, &tx.NewBalanceOrig},
		{features.ColOldBalanceDest, &tx.OldBalanceDest},
		{features.ColNewBalanceDest, &tx.NewBalanceDest},
	}
	for _, a := range amounts {
		v, err := values.ParseAmount(field(a.col))
		if err != nil {
			return transaction.Transaction{}, false, errors.NewParseError(a.col, line, err.Error())
		}
		*a.dst = v
	}

	if raw := field(features.ColLabel); raw != "" {
		label, err := strconv.Atoi(raw)
		if err != nil {
			return transaction.Transaction{}, false, errors.NewParseError(features.ColLabel, line,
				fmt.Sprintf("invalid label %q", raw))
		}
		tx.Label = label
	}
	return tx, hasOffset, nil
}

// csvError maps encoding/csv failures onto parse errors with a line number.
// Errors from the underlying reader pass through wrapped.
func csvError(err error) error {
	var pe *csv.ParseError
	if stderrors.As(err, &pe) {
		return errors.NewParseError("", pe.Line, pe.Err.Error()).WithCause(err)
	}
	return errors.Wrap(err, "reading CSV")
}
