//go:build unit

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		valueType ValueType
		wantErr   error
	}{
		{"valid integer", KeyMaxBorrowBooks, "5", TypeInteger, nil},
		{"valid decimal", KeyFinePerDay, "0.50", TypeDecimal, nil},
		{"valid boolean", KeyAllowRenewals, "true", TypeBoolean, nil},
		{"valid string", "GREETING", "hello", TypeString, nil},
		{"empty key", "", "5", TypeInteger, ErrEmptyKey},
		{"bad type code", KeyMaxBorrowBooks, "5", ValueType("FLOAT"), ErrInvalidValueType},
		{"integer that does not parse", KeyMaxBorrowBooks, "five", TypeInteger, ErrValueInvalid},
		{"decimal that does not parse", KeyFinePerDay, "0,50", TypeDecimal, ErrValueInvalid},
		{"boolean that does not parse", KeyAllowRenewals, "yes please", TypeBoolean, ErrValueInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.key, "name", "desc", tt.value, tt.valueType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, r.Key())
			assert.Equal(t, tt.value, r.Value())
		})
	}
}

func TestTypedGetters(t *testing.T) {
	intRule, err := New(KeyMaxBorrowBooks, "", "", "5", TypeInteger)
	require.NoError(t, err)
	v, err := intRule.IntValue()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	_, err = intRule.DecimalValue()
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = intRule.BoolValue()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	decRule, err := New(KeyFinePerDay, "", "", "0.50", TypeDecimal)
	require.NoError(t, err)
	d, err := decRule.DecimalValue()
	require.NoError(t, err)
	assert.Equal(t, "0.5", d.String())
	_, err = decRule.IntValue()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	boolRule, err := New(KeyAllowRenewals, "", "", "true", TypeBoolean)
	require.NoError(t, err)
	b, err := boolRule.BoolValue()
	require.NoError(t, err)
	assert.True(t, b)

	strRule, err := New("GREETING", "", "", "hello", TypeString)
	require.NoError(t, err)
	assert.Equal(t, "hello", strRule.StringValue())
}

func TestUpdateLeavesPriorValueOnFailure(t *testing.T) {
	r, err := New(KeyLoanPeriodDays, "Loan period", "", "30", TypeInteger)
	require.NoError(t, err)

	err = r.Update("Loan period", "", "not-a-number", TypeInteger)
	assert.ErrorIs(t, err, ErrValueInvalid)
	assert.Equal(t, "30", r.Value())
	assert.Equal(t, TypeInteger, r.Type())

	err = r.Update("Loan period", "", "45", ValueType("NOPE"))
	assert.ErrorIs(t, err, ErrInvalidValueType)
	assert.Equal(t, "30", r.Value())

	require.NoError(t, r.Update("Loan period", "two weeks longer", "45", TypeInteger))
	assert.Equal(t, "45", r.Value())
	assert.Equal(t, "two weeks longer", r.Description())
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()

	byKey := make(map[string]*Rule, len(defaults))
	for _, r := range defaults {
		byKey[r.Key()] = r
	}

	assert.Len(t, defaults, 8)
	for _, key := range []string{
		KeyMaxBorrowBooks, KeyLoanPeriodDays, KeyRenewalPeriodDays,
		KeyFinePerDay, KeyMaxRenewalTimes, KeyAllowRenewals,
		KeyAdvanceReserveDays, KeyReservationHoldDays,
	} {
		require.Contains(t, byKey, key)
	}

	maxBooks, err := byKey[KeyMaxBorrowBooks].IntValue()
	require.NoError(t, err)
	assert.Equal(t, 5, maxBooks)

	fine, err := byKey[KeyFinePerDay].DecimalValue()
	require.NoError(t, err)
	assert.Equal(t, "0.5", fine.String())

	allow, err := byKey[KeyAllowRenewals].BoolValue()
	require.NoError(t, err)
	assert.True(t, allow)
}
