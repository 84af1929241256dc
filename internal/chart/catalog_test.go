package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/hgb/internal/model"
)

func TestLookup(t *testing.T) {
	e, ok := Lookup("1000")
	require.True(t, ok)
	assert.Equal(t, "Kasse", e.Name)
	assert.Equal(t, model.AccountTypeAktiv, e.Type)
	assert.Equal(t, "Liquide Mittel", e.Category)

	e, ok = Lookup("3000")
	require.True(t, ok)
	assert.Equal(t, model.AccountTypePassiv, e.Type)

	_, ok = Lookup("9999")
	assert.False(t, ok, "9999 is not part of the standard chart")
}

func TestCatalogIntegrity(t *testing.T) {
	all := All()
	require.Len(t, all, 107)

	seen := make(map[string]bool)
	for i, e := range all {
		assert.Regexp(t, `^[0-9]{4}$`, e.Number)
		assert.NotEmpty(t, e.Name, "entry %s missing name", e.Number)
		assert.NotEmpty(t, e.Category, "entry %s missing category", e.Number)
		assert.True(t, e.Type.Valid(), "entry %s has invalid type %q", e.Number, e.Type)
		assert.Empty(t, model.NumberRangeWarning(e.Number, e.Type), "entry %s outside SKR range", e.Number)
		assert.False(t, seen[e.Number], "duplicate entry %s", e.Number)
		seen[e.Number] = true
		if i > 0 {
			assert.Less(t, all[i-1].Number, e.Number, "catalog must be sorted")
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	e, _ := Lookup(all[0].Number)
	assert.NotEqual(t, "changed", e.Name)
}

func TestSearch(t *testing.T) {
	results := Search("bank")
	require.NotEmpty(t, results)
	numbers := make([]string, 0, len(results))
	for _, r := range results {
		numbers = append(numbers, r.Number)
	}
	assert.Contains(t, numbers, "1200")
	assert.Contains(t, numbers, "1210", "Postbank matches by substring")
	assert.NotContains(t, numbers, "3800")

	byNumber := Search("120")
	got := make([]string, 0, len(byNumber))
	for _, e := range byNumber {
		got = append(got, e.Number)
	}
	assert.Equal(t, []string{"0120", "1200", "8120"}, got, "numbers match by substring anywhere")

	byCategory := Search("LIQUIDE")
	assert.Len(t, byCategory, 5)

	assert.Empty(t, Search("does-not-exist"))
}

func TestByTypeAndCategory(t *testing.T) {
	assert.Len(t, ByType(model.AccountTypeAktiv), 29)
	assert.Len(t, ByType(model.AccountTypePassiv), 23)
	assert.Len(t, ByType(model.AccountTypeAufwand), 41)
	assert.Len(t, ByType(model.AccountTypeErtrag), 14)

	ek := ByCategory("eigenkapital")
	assert.Len(t, ek, 9)
	for _, e := range ek {
		assert.Equal(t, model.AccountTypePassiv, e.Type)
	}
}

func TestInRange(t *testing.T) {
	got := InRange("1000", "1299")
	require.Len(t, got, 5)
	assert.Equal(t, "1000", got[0].Number)
	assert.Equal(t, "1230", got[4].Number)
}

func TestCategoryNames(t *testing.T) {
	names := CategoryNames()
	assert.Contains(t, names, "Liquide Mittel")
	assert.Contains(t, names, "Eigenkapital")
	assert.IsNonDecreasing(t, names)
}

func TestStarterNumbers(t *testing.T) {
	starter := StarterNumbers()
	require.Len(t, starter, 11)
	for _, n := range starter {
		_, ok := Lookup(n)
		assert.True(t, ok, "starter account %s must exist in catalog", n)
	}
}
