package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodebook_IsFixed(t *testing.T) {
	for i, ct := range CardTypes() {
		code, err := ct.Code()
		require.NoError(t, err)
		assert.Equal(t, i, code, "card type %s", ct)
	}
	for i, tt := range Types() {
		code, err := tt.Code()
		require.NoError(t, err)
		assert.Equal(t, i, code, "transaction type %s", tt)
	}
}

func TestCodebook_IndependentOfObservedCategories(t *testing.T) {
	// A batch holding only VISA must still code it as 2.
	code, err := CardTypeVISA.Code()
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	code, err = TypeTransfer.Code()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestParseCardType(t *testing.T) {
	tests := []struct {
		input   string
		want    CardType
		wantErr bool
	}{
		{input: "VISA", want: CardTypeVISA},
		{input: " MasterCard ", want: CardTypeMasterCard},
		{input: "AMEX", want: CardTypeAMEX},
		{input: "visa", wantErr: true},
		{input: "Diners", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCardType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType("CASH_OUT")
	require.NoError(t, err)
	assert.Equal(t, TypeCashOut, got)

	_, err = ParseType("cash_out")
	assert.Error(t, err)

	_, err = Type("REFUND").Code()
	assert.Error(t, err)
}
