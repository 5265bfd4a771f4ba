package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/usage"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
)

// usageLogFields is the fixed width of a usage log line:
// timestamp, client_id, source, transactions.
const usageLogFields = 4

// ReadUsageLog decodes the headerless usage log. Any malformed line fails
// the whole load.
func ReadUsageLog(r io.Reader) ([]usage.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = usageLogFields
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var entries []usage.Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		ts, err := values.ParseTimestamp(record[0])
		if err != nil {
			return nil, errors.NewParseError("timestamp", line, err.Error())
		}
		client := strings.TrimSpace(record[1])
		if client == "" {
			return nil, errors.NewParseError("client_id", line, "empty client id")
		}
		count, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		if err != nil || count < 0 {
			return nil, errors.NewParseError("transactions", line,
				fmt.Sprintf("invalid transaction count %q", record[3]))
		}

		entries = append(entries, usage.Entry{
			Timestamp:    ts,
			ClientID:     client,
			Source:       strings.TrimSpace(record[2]),
			Transactions: count,
		})
	}
	return entries, nil
}
