package rule

// ValueType declares how a rule's raw value must parse. Persisted as the
// stable string codes below. Changing a rule's type without migrating its
// dependents breaks the typed getters, so types only change deliberately.
type ValueType string

const (
	TypeInteger ValueType = "INTEGER"
	TypeDecimal ValueType = "DECIMAL"
	TypeString  ValueType = "STRING"
	TypeBoolean ValueType = "BOOLEAN"
)

func (t ValueType) String() string {
	return string(t)
}

func (t ValueType) IsValid() bool {
	switch t {
	case TypeInteger, TypeDecimal, TypeString, TypeBoolean:
		return true
	default:
		return false
	}
}

func ValueTypeFromCode(code string) (ValueType, error) {
	t := ValueType(code)
	if !t.IsValid() {
		return "", ErrInvalidValueType
	}
	return t, nil
}

// Recognized rule keys.
const (
	KeyMaxBorrowBooks      = "MAX_BORROW_BOOKS"
	KeyLoanPeriodDays      = "LOAN_PERIOD_DAYS"
	KeyRenewalPeriodDays   = "RENEWAL_PERIOD_DAYS"
	KeyFinePerDay          = "FINE_PER_DAY"
	KeyMaxRenewalTimes     = "MAX_RENEWAL_TIMES"
	KeyAllowRenewals       = "ALLOW_RENEWALS"
	KeyAdvanceReserveDays  = "ADVANCE_RESERVE_DAYS"
	KeyReservationHoldDays = "RESERVATION_HOLD_DAYS"
)
