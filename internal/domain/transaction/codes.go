package transaction

import (
	"fmt"
	"strings"
)

// CodebookVersion identifies the category-to-code mapping below. The trained
// model depends on these exact codes; bump the version with any change.
const CodebookVersion = "v1"

// Codes follow the sorted category order used when the model was trained.
var cardTypeCodes = map[CardType]int{
	CardTypeAMEX:       0,
	CardTypeMasterCard: 1,
	CardTypeVISA:       2,
}

var typeCodes = map[Type]int{
	TypeCashOut:  0,
	TypeDebit:    1,
	TypePayment:  2,
	TypeTransfer: 3,
}

// CardTypes returns the supported card types in code order.
func CardTypes() []CardType {
	return []CardType{CardTypeAMEX, CardTypeMasterCard, CardTypeVISA}
}

// Types returns the supported transaction types in code order.
func Types() []Type {
	return []Type{TypeCashOut, TypeDebit, TypePayment, TypeTransfer}
}

// ParseCardType matches s exactly against the known card types.
func ParseCardType(s string) (CardType, error) {
	ct := CardType(strings.TrimSpace(s))
	if _, ok := cardTypeCodes[ct]; !ok {
		return "", fmt.Errorf("unknown card type %q", s)
	}
	return ct, nil
}

// ParseType matches s exactly against the known transaction types.
func ParseType(s string) (Type, error) {
	tt := Type(strings.TrimSpace(s))
	if _, ok := typeCodes[tt]; !ok {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return tt, nil
}

// Code returns the model code for the card type.
func (c CardType) Code() (int, error) {
	code, ok := cardTypeCodes[c]
	if !ok {
		return 0, fmt.Errorf("card type %q has no code in codebook %s", c, CodebookVersion)
	}
	return code, nil
}

// Code returns the model code for the transaction type.
func (t Type) Code() (int, error) {
	code, ok := typeCodes[t]
	if !ok {
		return 0, fmt.Errorf("transaction type %q has no code in codebook %s", t, CodebookVersion)
	}
	return code, nil
}
