package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectOnBalance(t *testing.T) {
	tests := []struct {
		accountType AccountType
		side        Side
		want        string
	}{
		{AccountTypeAktiv, SideSoll, "100"},
		{AccountTypeAktiv, SideHaben, "-100"},
		{AccountTypePassiv, SideSoll, "-100"},
		{AccountTypePassiv, SideHaben, "100"},
		{AccountTypeAufwand, SideSoll, "100"},
		{AccountTypeAufwand, SideHaben, "-100"},
		{AccountTypeErtrag, SideSoll, "-100"},
		{AccountTypeErtrag, SideHaben, "100"},
	}
	for _, tt := range tests {
		got := EffectOnBalance(tt.accountType, tt.side, dec("100"))
		assert.True(t, got.Equal(dec(tt.want)), "EffectOnBalance(%s, %s) = %s, want %s", tt.accountType, tt.side, got, tt.want)
	}
}

func TestApply_RoundTrip(t *testing.T) {
	for _, at := range AccountTypes {
		acct := Account{Number: "1000", Type: at, Balance: dec("42.17")}
		got := acct.Apply(SideSoll, dec("13.50")).Apply(SideHaben, dec("13.50"))
		assert.True(t, got.Balance.Equal(acct.Balance), "%s: debit then credit should round-trip, got %s", at, got.Balance)
	}
}

func TestApply_DoesNotMutateReceiver(t *testing.T) {
	acct := Account{Number: "1000", Type: AccountTypeAktiv, Balance: dec("10")}
	_ = acct.Apply(SideSoll, dec("5"))
	assert.True(t, acct.Balance.Equal(dec("10")))
}

func TestParseAccountType(t *testing.T) {
	for _, at := range AccountTypes {
		got, err := ParseAccountType(string(at))
		require.NoError(t, err)
		assert.Equal(t, at, got)
	}

	_, err := ParseAccountType("asset")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAccountType)

	_, err = ParseAccountType("")
	assert.ErrorIs(t, err, ErrUnknownAccountType)
}

func TestBilanzSide(t *testing.T) {
	assert.Equal(t, BilanzSideAktiva, AccountTypeAktiv.BilanzSide())
	assert.Equal(t, BilanzSidePassiva, AccountTypePassiv.BilanzSide())
	assert.Equal(t, BilanzSideErfolgsrechnung, AccountTypeAufwand.BilanzSide())
	assert.Equal(t, BilanzSideErfolgsrechnung, AccountTypeErtrag.BilanzSide())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideHaben, SideSoll.Opposite())
	assert.Equal(t, SideSoll, SideHaben.Opposite())
}

func TestNumberRangeWarning(t *testing.T) {
	assert.Empty(t, NumberRangeWarning("1000", AccountTypeAktiv))
	assert.Empty(t, NumberRangeWarning("3000", AccountTypePassiv))
	assert.Empty(t, NumberRangeWarning("6300", AccountTypeAufwand))
	assert.Empty(t, NumberRangeWarning("8000", AccountTypeErtrag))

	assert.Contains(t, NumberRangeWarning("5000", AccountTypeAktiv), "0000-2999")
	assert.Contains(t, NumberRangeWarning("1000", AccountTypeErtrag), "8000-9999")
	assert.Empty(t, NumberRangeWarning("abcd", AccountTypeAktiv))
}
