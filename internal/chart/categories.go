package chart

import (
	"sort"

	"github.com/cleared-dev/hgb/internal/model"
)

// CategoryKey identifies a node in the Bilanz category hierarchy.
type CategoryKey string

const (
	Anlagevermoegen     CategoryKey = "anlagevermoegen"
	Umlaufvermoegen     CategoryKey = "umlaufvermoegen"
	ImmaterielleAnlagen CategoryKey = "immaterielle_anlagen"
	Sachanlagen         CategoryKey = "sachanlagen"
	Finanzanlagen       CategoryKey = "finanzanlagen"
	Vorraete            CategoryKey = "vorraete"
	Forderungen         CategoryKey = "forderungen"
	LiquideMittel       CategoryKey = "liquide_mittel"

	Eigenkapital        CategoryKey = "eigenkapital"
	Fremdkapital        CategoryKey = "fremdkapital"
	GezeichnetesKapital CategoryKey = "gezeichnetes_kapital"
	Kapitalruecklagen   CategoryKey = "kapitalruecklagen"
	Gewinnruecklagen    CategoryKey = "gewinnruecklagen"
	Verbindlichkeiten   CategoryKey = "verbindlichkeiten"
	Rueckstellungen     CategoryKey = "rueckstellungen"
)

// Category is a node of the hierarchy. Top-level nodes have no Parent.
type Category struct {
	Key       CategoryKey      `json:"key"`
	Name      string           `json:"name"`
	Parent    CategoryKey      `json:"parent,omitempty"`
	Section   model.BilanzSide `json:"section"`
	SortOrder int              `json:"sort_order"`
}

var categories = map[CategoryKey]Category{
	Anlagevermoegen:     {Key: Anlagevermoegen, Name: "Anlagevermögen", Section: model.BilanzSideAktiva, SortOrder: 1},
	Umlaufvermoegen:     {Key: Umlaufvermoegen, Name: "Umlaufvermögen", Section: model.BilanzSideAktiva, SortOrder: 2},
	ImmaterielleAnlagen: {Key: ImmaterielleAnlagen, Name: "Immaterielle Anlagen", Parent: Anlagevermoegen, Section: model.BilanzSideAktiva, SortOrder: 1},
	Sachanlagen:         {Key: Sachanlagen, Name: "Sachanlagen", Parent: Anlagevermoegen, Section: model.BilanzSideAktiva, SortOrder: 2},
	Finanzanlagen:       {Key: Finanzanlagen, Name: "Finanzanlagen", Parent: Anlagevermoegen, Section: model.BilanzSideAktiva, SortOrder: 3},
	Vorraete:            {Key: Vorraete, Name: "Vorräte", Parent: Umlaufvermoegen, Section: model.BilanzSideAktiva, SortOrder: 1},
	Forderungen:         {Key: Forderungen, Name: "Forderungen", Parent: Umlaufvermoegen, Section: model.BilanzSideAktiva, SortOrder: 2},
	LiquideMittel:       {Key: LiquideMittel, Name: "Liquide Mittel", Parent: Umlaufvermoegen, Section: model.BilanzSideAktiva, SortOrder: 3},

	Eigenkapital:        {Key: Eigenkapital, Name: "Eigenkapital", Section: model.BilanzSidePassiva, SortOrder: 1},
	Fremdkapital:        {Key: Fremdkapital, Name: "Fremdkapital", Section: model.BilanzSidePassiva, SortOrder: 2},
	GezeichnetesKapital: {Key: GezeichnetesKapital, Name: "Gezeichnetes Kapital", Parent: Eigenkapital, Section: model.BilanzSidePassiva, SortOrder: 1},
	Kapitalruecklagen:   {Key: Kapitalruecklagen, Name: "Kapitalrücklagen", Parent: Eigenkapital, Section: model.BilanzSidePassiva, SortOrder: 2},
	Gewinnruecklagen:    {Key: Gewinnruecklagen, Name: "Gewinnrücklagen", Parent: Eigenkapital, Section: model.BilanzSidePassiva, SortOrder: 3},
	Verbindlichkeiten:   {Key: Verbindlichkeiten, Name: "Verbindlichkeiten", Parent: Fremdkapital, Section: model.BilanzSidePassiva, SortOrder: 1},
	Rueckstellungen:     {Key: Rueckstellungen, Name: "Rückstellungen", Parent: Fremdkapital, Section: model.BilanzSidePassiva, SortOrder: 2},
}

type numberRange struct {
	key        CategoryKey
	start, end string
}

// categoryRanges maps number blocks to leaf categories. Checked in order.
var categoryRanges = []numberRange{
	{ImmaterielleAnlagen, "0100", "0199"},
	{Sachanlagen, "0200", "0499"},
	{Finanzanlagen, "0500", "0999"},
	{LiquideMittel, "1000", "1299"},
	{Forderungen, "1400", "1599"},
	{Vorraete, "1600", "1999"},
	{GezeichnetesKapital, "3000", "3099"},
	{Kapitalruecklagen, "3100", "3199"},
	{Gewinnruecklagen, "3200", "3399"},
	{Rueckstellungen, "3400", "3699"},
	{Verbindlichkeiten, "3700", "3999"},
}

// LookupCategory returns the category for key.
func LookupCategory(key CategoryKey) (Category, bool) {
	c, ok := categories[key]
	return c, ok
}

// CategoryForNumber derives a leaf category from an account number. Numbers
// outside the explicit blocks fall back to a default per Bilanz section;
// P&L numbers (4000 and up) have no category.
func CategoryForNumber(number string) (Category, bool) {
	for _, r := range categoryRanges {
		if number >= r.start && number <= r.end {
			return categories[r.key], true
		}
	}
	switch {
	case number >= "0000" && number <= "0999":
		return categories[Sachanlagen], true
	case number >= "1000" && number <= "2999":
		return categories[LiquideMittel], true
	case number >= "3000" && number <= "3399":
		return categories[GezeichnetesKapital], true
	case number >= "3400" && number <= "3999":
		return categories[Verbindlichkeiten], true
	}
	return Category{}, false
}

// MainCategories returns the top-level categories of a section, or of
// both sections when section is empty, in display order.
func MainCategories(section model.BilanzSide) []Category {
	var result []Category
	for _, c := range categories {
		if c.Parent != "" {
			continue
		}
		if section != "" && c.Section != section {
			continue
		}
		result = append(result, c)
	}
	sortCategories(result)
	return result
}

// Subcategories returns the children of parent in display order.
func Subcategories(parent CategoryKey) []Category {
	var result []Category
	for _, c := range categories {
		if c.Parent == parent {
			result = append(result, c)
		}
	}
	sortCategories(result)
	return result
}

// Path returns the chain from the top-level category down to key.
func Path(key CategoryKey) []Category {
	c, ok := categories[key]
	if !ok {
		return nil
	}
	path := []Category{c}
	for c.Parent != "" {
		c = categories[c.Parent]
		path = append([]Category{c}, path...)
	}
	return path
}

// sortCategories orders aktiva before passiva, then by SortOrder.
func sortCategories(cs []Category) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Section != cs[j].Section {
			return cs[i].Section == model.BilanzSideAktiva
		}
		return cs[i].SortOrder < cs[j].SortOrder
	})
}
