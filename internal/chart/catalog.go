// Package chart holds the HGB standard chart of accounts and the category
// hierarchy used to group balance-sheet positions.
package chart

import (
	"sort"
	"strings"

	"github.com/cleared-dev/hgb/internal/model"
)

// Entry is a row of the standard chart of accounts.
type Entry struct {
	Number   string            `json:"number"`
	Name     string            `json:"name"`
	Type     model.AccountType `json:"account_type"`
	Category string            `json:"category"`
}

// entries is the HGB Standardkontenrahmen. Never mutated after init.
var entries = []Entry{
	// Anlagevermögen
	{Number: "0100", Name: "Geschäfts- oder Firmenwert", Type: model.AccountTypeAktiv, Category: "Immaterielle Vermögensgegenstände"},
	{Number: "0120", Name: "Gewerbliche Schutzrechte und ähnliche Rechte", Type: model.AccountTypeAktiv, Category: "Immaterielle Vermögensgegenstände"},
	{Number: "0140", Name: "Software", Type: model.AccountTypeAktiv, Category: "Immaterielle Vermögensgegenstände"},
	{Number: "0200", Name: "Grundstücke und Bauten", Type: model.AccountTypeAktiv, Category: "Sachanlagen"},
	{Number: "0300", Name: "Technische Anlagen und Maschinen", Type: model.AccountTypeAktiv, Category: "Sachanlagen"},
	{Number: "0400", Name: "Andere Anlagen, Betriebs- und Geschäftsausstattung", Type: model.AccountTypeAktiv, Category: "Sachanlagen"},
	{Number: "0410", Name: "Büroausstattung", Type: model.AccountTypeAktiv, Category: "Sachanlagen"},
	{Number: "0420", Name: "EDV-Anlagen", Type: model.AccountTypeAktiv, Category: "Sachanlagen"},
	{Number: "0500", Name: "Anlagen im Bau", Type: model.AccountTypeAktiv, Category: "Sachanlagen"},
	{Number: "0600", Name: "Anteile an verbundenen Unternehmen", Type: model.AccountTypeAktiv, Category: "Finanzanlagen"},
	{Number: "0700", Name: "Beteiligungen", Type: model.AccountTypeAktiv, Category: "Finanzanlagen"},
	{Number: "0800", Name: "Wertpapiere des Anlagevermögens", Type: model.AccountTypeAktiv, Category: "Finanzanlagen"},

	// Umlaufvermögen
	{Number: "1000", Name: "Kasse", Type: model.AccountTypeAktiv, Category: "Liquide Mittel"},
	{Number: "1200", Name: "Bank", Type: model.AccountTypeAktiv, Category: "Liquide Mittel"},
	{Number: "1210", Name: "Postbank", Type: model.AccountTypeAktiv, Category: "Liquide Mittel"},
	{Number: "1220", Name: "Sparkasse", Type: model.AccountTypeAktiv, Category: "Liquide Mittel"},
	{Number: "1230", Name: "Fremdwährungskonten", Type: model.AccountTypeAktiv, Category: "Liquide Mittel"},
	{Number: "1400", Name: "Forderungen aus Lieferungen und Leistungen", Type: model.AccountTypeAktiv, Category: "Forderungen"},
	{Number: "1410", Name: "Forderungen gegen verbundene Unternehmen", Type: model.AccountTypeAktiv, Category: "Forderungen"},
	{Number: "1420", Name: "Zweifelhafte Forderungen", Type: model.AccountTypeAktiv, Category: "Forderungen"},
	{Number: "1500", Name: "Sonstige Vermögensgegenstände", Type: model.AccountTypeAktiv, Category: "Sonstige Forderungen"},
	{Number: "1570", Name: "Geleistete Anzahlungen", Type: model.AccountTypeAktiv, Category: "Sonstige Forderungen"},
	{Number: "1580", Name: "Vorsteuer", Type: model.AccountTypeAktiv, Category: "Steuerliche Forderungen"},
	{Number: "1600", Name: "Roh-, Hilfs- und Betriebsstoffe", Type: model.AccountTypeAktiv, Category: "Vorräte"},
	{Number: "1700", Name: "Unfertige Erzeugnisse", Type: model.AccountTypeAktiv, Category: "Vorräte"},
	{Number: "1800", Name: "Fertige Erzeugnisse", Type: model.AccountTypeAktiv, Category: "Vorräte"},
	{Number: "1900", Name: "Waren", Type: model.AccountTypeAktiv, Category: "Vorräte"},
	{Number: "2000", Name: "Wertpapiere des Umlaufvermögens", Type: model.AccountTypeAktiv, Category: "Wertpapiere"},
	{Number: "2100", Name: "Aktive Rechnungsabgrenzungsposten", Type: model.AccountTypeAktiv, Category: "Rechnungsabgrenzung"},

	// Eigenkapital
	{Number: "3000", Name: "Gezeichnetes Kapital", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3100", Name: "Kapitalrücklagen", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3200", Name: "Gewinnrücklagen", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3210", Name: "Gesetzliche Rücklage", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3220", Name: "Freie Rücklagen", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3300", Name: "Gewinnvortrag", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3310", Name: "Verlustvortrag", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3320", Name: "Jahresüberschuss", Type: model.AccountTypePassiv, Category: "Eigenkapital"},
	{Number: "3330", Name: "Jahresfehlbetrag", Type: model.AccountTypePassiv, Category: "Eigenkapital"},

	// Rückstellungen und Verbindlichkeiten
	{Number: "3400", Name: "Rückstellungen für Pensionen", Type: model.AccountTypePassiv, Category: "Rückstellungen"},
	{Number: "3410", Name: "Steuerrückstellungen", Type: model.AccountTypePassiv, Category: "Rückstellungen"},
	{Number: "3420", Name: "Sonstige Rückstellungen", Type: model.AccountTypePassiv, Category: "Rückstellungen"},
	{Number: "3700", Name: "Verbindlichkeiten aus Lieferungen und Leistungen", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3710", Name: "Verbindlichkeiten gegen verbundene Unternehmen", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3720", Name: "Wechselverbindlichkeiten", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3750", Name: "Erhaltene Anzahlungen", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3760", Name: "Sonstige Verbindlichkeiten", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3800", Name: "Verbindlichkeiten gegenüber Kreditinstituten", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3850", Name: "Darlehen", Type: model.AccountTypePassiv, Category: "Verbindlichkeiten"},
	{Number: "3900", Name: "Umsatzsteuer", Type: model.AccountTypePassiv, Category: "Steuerverbindlichkeiten"},
	{Number: "3910", Name: "Lohnsteuer", Type: model.AccountTypePassiv, Category: "Steuerverbindlichkeiten"},
	{Number: "3920", Name: "Sozialversicherung", Type: model.AccountTypePassiv, Category: "Steuerverbindlichkeiten"},
	{Number: "3950", Name: "Passive Rechnungsabgrenzungsposten", Type: model.AccountTypePassiv, Category: "Rechnungsabgrenzung"},

	// Materialaufwand
	{Number: "4000", Name: "Aufwendungen für Roh-, Hilfs- und Betriebsstoffe", Type: model.AccountTypeAufwand, Category: "Materialaufwand"},
	{Number: "4100", Name: "Aufwendungen für bezogene Waren", Type: model.AccountTypeAufwand, Category: "Materialaufwand"},
	{Number: "4200", Name: "Aufwendungen für bezogene Leistungen", Type: model.AccountTypeAufwand, Category: "Materialaufwand"},
	{Number: "4300", Name: "Nachlässe auf Materialaufwand", Type: model.AccountTypeAufwand, Category: "Materialaufwand"},

	// Personalaufwand
	{Number: "5000", Name: "Löhne und Gehälter", Type: model.AccountTypeAufwand, Category: "Personalaufwand"},
	{Number: "5100", Name: "Soziale Abgaben", Type: model.AccountTypeAufwand, Category: "Personalaufwand"},
	{Number: "5200", Name: "Aufwendungen für Altersversorgung", Type: model.AccountTypeAufwand, Category: "Personalaufwand"},
	{Number: "5300", Name: "Sonstige Personalaufwendungen", Type: model.AccountTypeAufwand, Category: "Personalaufwand"},
	{Number: "5400", Name: "Freiwillige soziale Aufwendungen", Type: model.AccountTypeAufwand, Category: "Personalaufwand"},

	// Betriebsaufwand
	{Number: "6000", Name: "Abschreibungen auf Sachanlagen", Type: model.AccountTypeAufwand, Category: "Abschreibungen"},
	{Number: "6100", Name: "Abschreibungen auf immaterielle Vermögensgegenstände", Type: model.AccountTypeAufwand, Category: "Abschreibungen"},
	{Number: "6200", Name: "Raumkosten", Type: model.AccountTypeAufwand, Category: "Raumkosten"},
	{Number: "6210", Name: "Mieten", Type: model.AccountTypeAufwand, Category: "Raumkosten"},
	{Number: "6220", Name: "Nebenkosten", Type: model.AccountTypeAufwand, Category: "Raumkosten"},
	{Number: "6230", Name: "Heizung", Type: model.AccountTypeAufwand, Category: "Raumkosten"},
	{Number: "6240", Name: "Strom", Type: model.AccountTypeAufwand, Category: "Raumkosten"},
	{Number: "6300", Name: "Bürokosten", Type: model.AccountTypeAufwand, Category: "Bürokosten"},
	{Number: "6310", Name: "Porto", Type: model.AccountTypeAufwand, Category: "Bürokosten"},
	{Number: "6320", Name: "Telefon", Type: model.AccountTypeAufwand, Category: "Bürokosten"},
	{Number: "6330", Name: "Büromaterial", Type: model.AccountTypeAufwand, Category: "Bürokosten"},
	{Number: "6400", Name: "Versicherungen", Type: model.AccountTypeAufwand, Category: "Versicherungen"},
	{Number: "6410", Name: "Betriebshaftpflicht", Type: model.AccountTypeAufwand, Category: "Versicherungen"},
	{Number: "6420", Name: "Sachversicherungen", Type: model.AccountTypeAufwand, Category: "Versicherungen"},
	{Number: "6500", Name: "Reisekosten", Type: model.AccountTypeAufwand, Category: "Reisekosten"},
	{Number: "6510", Name: "Fahrtkosten", Type: model.AccountTypeAufwand, Category: "Reisekosten"},
	{Number: "6520", Name: "Übernachtungskosten", Type: model.AccountTypeAufwand, Category: "Reisekosten"},
	{Number: "6530", Name: "Bewirtungskosten", Type: model.AccountTypeAufwand, Category: "Reisekosten"},
	{Number: "6600", Name: "Werbung", Type: model.AccountTypeAufwand, Category: "Werbekosten"},
	{Number: "6610", Name: "Anzeigen", Type: model.AccountTypeAufwand, Category: "Werbekosten"},
	{Number: "6620", Name: "Messen und Ausstellungen", Type: model.AccountTypeAufwand, Category: "Werbekosten"},
	{Number: "6700", Name: "Rechts- und Beratungskosten", Type: model.AccountTypeAufwand, Category: "Beratungskosten"},
	{Number: "6710", Name: "Steuerberatungskosten", Type: model.AccountTypeAufwand, Category: "Beratungskosten"},
	{Number: "6720", Name: "Wirtschaftsprüfungskosten", Type: model.AccountTypeAufwand, Category: "Beratungskosten"},
	{Number: "6800", Name: "Verschiedene Aufwendungen", Type: model.AccountTypeAufwand, Category: "Sonstiges"},
	{Number: "6810", Name: "Bücher und Zeitschriften", Type: model.AccountTypeAufwand, Category: "Sonstiges"},
	{Number: "6820", Name: "Fortbildung", Type: model.AccountTypeAufwand, Category: "Sonstiges"},
	{Number: "6900", Name: "Instandhaltung", Type: model.AccountTypeAufwand, Category: "Instandhaltung"},
	{Number: "6910", Name: "Reparaturen", Type: model.AccountTypeAufwand, Category: "Instandhaltung"},

	// Finanzaufwand
	{Number: "7000", Name: "Zinsen und ähnliche Aufwendungen", Type: model.AccountTypeAufwand, Category: "Finanzaufwand"},
	{Number: "7100", Name: "Abschreibungen auf Finanzanlagen", Type: model.AccountTypeAufwand, Category: "Finanzaufwand"},
	{Number: "7200", Name: "Außerordentliche Aufwendungen", Type: model.AccountTypeAufwand, Category: "Außerordentliches"},

	// Umsatzerlöse
	{Number: "8000", Name: "Umsatzerlöse", Type: model.AccountTypeErtrag, Category: "Umsatzerlöse"},
	{Number: "8100", Name: "Erlösschmälerungen", Type: model.AccountTypeErtrag, Category: "Umsatzerlöse"},
	{Number: "8110", Name: "Skonti", Type: model.AccountTypeErtrag, Category: "Umsatzerlöse"},
	{Number: "8120", Name: "Rabatte", Type: model.AccountTypeErtrag, Category: "Umsatzerlöse"},
	{Number: "8200", Name: "Bestandsveränderungen fertige Erzeugnisse", Type: model.AccountTypeErtrag, Category: "Bestandsveränderungen"},
	{Number: "8300", Name: "Andere aktivierte Eigenleistungen", Type: model.AccountTypeErtrag, Category: "Eigenleistungen"},

	// Sonstige Erträge
	{Number: "9000", Name: "Zinserträge", Type: model.AccountTypeErtrag, Category: "Finanzerträge"},
	{Number: "9100", Name: "Erträge aus Beteiligungen", Type: model.AccountTypeErtrag, Category: "Finanzerträge"},
	{Number: "9200", Name: "Sonstige betriebliche Erträge", Type: model.AccountTypeErtrag, Category: "Sonstige Erträge"},
	{Number: "9210", Name: "Provisionserlöse", Type: model.AccountTypeErtrag, Category: "Sonstige Erträge"},
	{Number: "9220", Name: "Mieterlöse", Type: model.AccountTypeErtrag, Category: "Sonstige Erträge"},
	{Number: "9300", Name: "Außerordentliche Erträge", Type: model.AccountTypeErtrag, Category: "Außerordentliches"},
	{Number: "9400", Name: "Erträge aus Auflösung von Rückstellungen", Type: model.AccountTypeErtrag, Category: "Sonstige Erträge"},
	{Number: "9900", Name: "Periodenfremde Erträge", Type: model.AccountTypeErtrag, Category: "Sonstige Erträge"},
}

var byNumber = indexEntries(entries)

func indexEntries(es []Entry) map[string]Entry {
	m := make(map[string]Entry, len(es))
	for _, e := range es {
		m[e.Number] = e
	}
	return m
}

// starterNumbers is the recommended set for a newly founded business.
var starterNumbers = []string{
	"1000", // Kasse
	"1200", // Bank
	"1400", // Forderungen aus L+L
	"1580", // Vorsteuer
	"3000", // Gezeichnetes Kapital
	"3700", // Verbindlichkeiten aus L+L
	"3900", // Umsatzsteuer
	"5000", // Löhne und Gehälter
	"6300", // Bürokosten
	"6500", // Reisekosten
	"8000", // Umsatzerlöse
}

// All returns every catalog entry in number order.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the catalog entry for number.
func Lookup(number string) (Entry, bool) {
	e, ok := byNumber[number]
	return e, ok
}

// Search matches query case-insensitively against number, name and
// category. Results are sorted by number.
func Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	var result []Entry
	for _, e := range entries {
		if strings.Contains(e.Number, q) ||
			strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Category), q) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result
}

// ByType returns all entries of the given account type.
func ByType(t model.AccountType) []Entry {
	var result []Entry
	for _, e := range entries {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// ByCategory returns all entries whose category equals category, ignoring case.
func ByCategory(category string) []Entry {
	var result []Entry
	for _, e := range entries {
		if strings.EqualFold(e.Category, category) {
			result = append(result, e)
		}
	}
	return result
}

// InRange returns entries with start <= number <= end.
func InRange(start, end string) []Entry {
	var result []Entry
	for _, e := range entries {
		if e.Number >= start && e.Number <= end {
			result = append(result, e)
		}
	}
	return result
}

// CategoryNames returns the distinct catalog categories, sorted.
func CategoryNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.Category != "" && !seen[e.Category] {
			seen[e.Category] = true
			names = append(names, e.Category)
		}
	}
	sort.Strings(names)
	return names
}

// StarterNumbers returns the account numbers of the starter pack.
func StarterNumbers() []string {
	out := make([]string, len(starterNumbers))
	copy(out, starterNumbers)
	return out
}
