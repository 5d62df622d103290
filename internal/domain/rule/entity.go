package rule

import (
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidValueType = errors.New("invalid rule value type")
	ErrTypeMismatch     = errors.New("rule value type mismatch")
	ErrValueInvalid     = errors.New("rule value does not parse under its type")
	ErrEmptyKey         = errors.New("rule key is required")
)

// Rule is a named, typed policy value. The raw value is stored as text and
// must always parse under the declared type; Update validates before
// committing so a bad write never clobbers a good value.
type Rule struct {
	key         string
	name        string
	description string
	value       string
	valueType   ValueType
	updatedAt   time.Time
}

func New(key, name, description, value string, valueType ValueType) (*Rule, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if !valueType.IsValid() {
		return nil, ErrInvalidValueType
	}
	if err := ValidateValue(value, valueType); err != nil {
		return nil, err
	}
	return &Rule{
		key:         key,
		name:        name,
		description: description,
		value:       value,
		valueType:   valueType,
	}, nil
}

func Reconstruct(key, name, description, value string, valueType ValueType, updatedAt time.Time) *Rule {
	return &Rule{
		key:         key,
		name:        name,
		description: description,
		value:       value,
		valueType:   valueType,
		updatedAt:   updatedAt,
	}
}

// Update replaces the rule's value (and optionally its human metadata),
// validating the new value under the declared type first. On failure the
// rule is left untouched.
func (r *Rule) Update(name, description, value string, valueType ValueType) error {
	if !valueType.IsValid() {
		return ErrInvalidValueType
	}
	if err := ValidateValue(value, valueType); err != nil {
		return err
	}
	r.name = name
	r.description = description
	r.value = value
	r.valueType = valueType
	return nil
}

// ValidateValue checks that value parses under valueType.
func ValidateValue(value string, valueType ValueType) error {
	switch valueType {
	case TypeInteger:
		if _, err := strconv.Atoi(value); err != nil {
			return ErrValueInvalid
		}
	case TypeDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return ErrValueInvalid
		}
	case TypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return ErrValueInvalid
		}
	case TypeString:
		// Any text is a valid string value.
	default:
		return ErrInvalidValueType
	}
	return nil
}

func (r *Rule) IntValue() (int, error) {
	if r.valueType != TypeInteger {
		return 0, ErrTypeMismatch
	}
	v, err := strconv.Atoi(r.value)
	if err != nil {
		return 0, ErrValueInvalid
	}
	return v, nil
}

func (r *Rule) DecimalValue() (decimal.Decimal, error) {
	if r.valueType != TypeDecimal {
		return decimal.Zero, ErrTypeMismatch
	}
	v, err := decimal.NewFromString(r.value)
	if err != nil {
		return decimal.Zero, ErrValueInvalid
	}
	return v, nil
}

func (r *Rule) BoolValue() (bool, error) {
	if r.valueType != TypeBoolean {
		return false, ErrTypeMismatch
	}
	v, err := strconv.ParseBool(r.value)
	if err != nil {
		return false, ErrValueInvalid
	}
	return v, nil
}

func (r *Rule) StringValue() string {
	return r.value
}

func (r *Rule) Key() string          { return r.key }
func (r *Rule) Name() string         { return r.name }
func (r *Rule) Description() string  { return r.description }
func (r *Rule) Value() string        { return r.value }
func (r *Rule) Type() ValueType      { return r.valueType }
func (r *Rule) UpdatedAt() time.Time { return r.updatedAt }

// Defaults are the rules seeded at process start. Seeding is idempotent:
// keys that already exist are never overwritten.
func Defaults() []*Rule {
	mk := func(key, name, description, value string, t ValueType) *Rule {
		r, err := New(key, name, description, value, t)
		if err != nil {
			panic("rule: invalid default for " + key + ": " + err.Error())
		}
		return r
	}
	return []*Rule{
		mk(KeyMaxBorrowBooks, "Maximum borrowed books",
			"Maximum number of books a borrower may have on loan at once", "5", TypeInteger),
		mk(KeyLoanPeriodDays, "Loan period (days)",
			"Standard loan period for a borrowed copy", "30", TypeInteger),
		mk(KeyRenewalPeriodDays, "Renewal period (days)",
			"Days added to the due time on each renewal", "15", TypeInteger),
		mk(KeyFinePerDay, "Fine per day",
			"Fine charged for each day a loan is overdue", "0.50", TypeDecimal),
		mk(KeyMaxRenewalTimes, "Maximum renewals",
			"Maximum number of renewals per loan", "2", TypeInteger),
		mk(KeyAllowRenewals, "Allow renewals",
			"Whether borrowers may renew loans at all", "true", TypeBoolean),
		mk(KeyAdvanceReserveDays, "Advance reserve (days)",
			"How many days before an expected return a book may be reserved", "3", TypeInteger),
		mk(KeyReservationHoldDays, "Reservation hold (days)",
			"How long a notified borrower has to claim a freed copy", "3", TypeInteger),
	}
}
