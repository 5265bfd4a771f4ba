package features

// Column names, in the order the model was trained on. Never reorder.
const (
	ColAmount              = "amount"
	ColOldBalanceOrig      = "oldbalanceOrg"
	ColNewBalanceOrig      = "newbalanceOrig"
	ColOldBalanceDest      = "oldbalanceDest"
	ColNewBalanceDest      = "newbalanceDest"
	ColProvinceMatch       = "card_ip_province_match"
	ColTransactionHour     = "transaction_hour"
	ColCount1h             = "card_transaction_count_last_1h"
	ColCount10min          = "card_transaction_count_last_10min"
	ColIsNewDevice         = "is_new_device"
	ColCardTypeCode        = "card_type_code"
	ColTransactionTypeCode = "transaction_type_code"

	// ColLabel is carried in the table but never passed to the model.
	ColLabel = "label"
)

var columns = [...]string{
	ColAmount,
	ColOldBalanceOrig,
	ColNewBalanceOrig,
	ColOldBalanceDest,
	ColNewBalanceDest,
	ColProvinceMatch,
	ColTransactionHour,
	ColCount1h,
	ColCount10min,
	ColIsNewDevice,
	ColCardTypeCode,
	ColTransactionTypeCode,
}

// NumFeatures is the width of a model input row.
const NumFeatures = len(columns)

// Columns returns a copy of the model input column order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns[:])
	return out
}
