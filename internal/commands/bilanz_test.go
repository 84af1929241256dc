package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBilanz_ShowBalanced(t *testing.T) {
	dir := fundedBooks(t)
	_, err := runHGB(t, "--repo", dir, "post", "1200", "1000", "500")
	require.NoError(t, err)

	out, err := runHGB(t, "--repo", dir, "bilanz", "show", "--period-end", "2025-12-31")
	require.NoError(t, err, out)
	assert.Contains(t, out, "BILANZ zum 31.12.2025")
	assert.Contains(t, out, "AKTIVA")
	assert.Contains(t, out, "PASSIVA")
	assert.Contains(t, out, "Liquide Mittel")
	assert.Contains(t, out, "Bilanz ausgeglichen")
}

func TestBilanz_ShowBadPeriodEnd(t *testing.T) {
	dir := initBooks(t)
	_, err := runHGB(t, "--repo", dir, "bilanz", "show", "--period-end", "31.12.2025")
	require.Error(t, err)
}

func TestBilanz_Validate(t *testing.T) {
	dir := fundedBooks(t)

	out, err := runHGB(t, "--repo", dir, "bilanz", "validate", "--strict")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Aktiva:  25000.00 EUR")
	assert.Contains(t, out, "Passiva: 25000.00 EUR")

	_, err = runHGB(t, "--repo", dir, "account", "debit", "1000", "100")
	require.NoError(t, err)

	out, err = runHGB(t, "--repo", dir, "bilanz", "validate")
	require.NoError(t, err, out, "unbalanced is reported, not failed")
	assert.Contains(t, out, "NICHT ausgeglichen")
	assert.Contains(t, out, "100.00 EUR")

	out, err = runHGB(t, "--repo", dir, "bilanz", "validate", "--strict")
	require.Error(t, err)
	assert.Contains(t, out, "not balanced")
}

func TestBilanz_Resolve(t *testing.T) {
	dir := fundedBooks(t)

	out, err := runHGB(t, "--repo", dir, "bilanz", "resolve", "3000")
	require.NoError(t, err, out)
	assert.Contains(t, out, "side:     passiva")
	assert.Contains(t, out, "category: Eigenkapital")
	assert.Contains(t, out, "25000.00 EUR")

	out, err = runHGB(t, "--repo", dir, "bilanz", "resolve", "8000")
	require.NoError(t, err, out)
	assert.Contains(t, out, "erfolgsrechnung")
	assert.NotContains(t, out, "category:")

	out, err = runHGB(t, "--repo", dir, "bilanz", "resolve", "1111")
	require.Error(t, err)
	assert.Contains(t, out, "not found")
}
