// Package render formats accounts and balance sheets for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hgb/internal/bilanz"
	"github.com/cleared-dev/hgb/internal/chart"
	"github.com/cleared-dev/hgb/internal/model"
	"github.com/cleared-dev/hgb/internal/posting"
)

const sideWidth = 44

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	sideStyle   = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Width(sideWidth)
)

// Money formats an amount with two decimals and a currency suffix.
func Money(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + currency
}

// Accounts writes a table of accounts.
func Accounts(w io.Writer, accts []model.Account, currency string) error {
	if len(accts) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No accounts. Use 'hgb account create' or 'hgb account starter'."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Nr."),
		headerStyle.Render("Name"),
		headerStyle.Render("Typ"),
		headerStyle.Render("Kategorie"),
		headerStyle.Render("Saldo"))
	for _, a := range accts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Number, a.Name, a.Type, a.Category, Money(a.Balance, currency))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing account table: %w", err)
	}
	return nil
}

// Catalog writes standard chart entries, marking the ones that exist.
func Catalog(w io.Writer, entries []chart.Entry, existing map[string]bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("Nr."),
		headerStyle.Render("Name"),
		headerStyle.Render("Typ"),
		headerStyle.Render("Kategorie"),
		headerStyle.Render(""))
	for _, e := range entries {
		mark := ""
		if existing[e.Number] {
			mark = okStyle.Render("angelegt")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Number, e.Name, e.Type, e.Category, mark)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing catalog table: %w", err)
	}
	return nil
}

// Transaction writes the result of a posting or its preview.
func Transaction(w io.Writer, pv posting.Preview, currency string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render("Buchungssatz"), mutedStyle.Render(string(pv.Classification)))
	fmt.Fprintf(&b, "  Soll  %s  %s\n", pv.DebitEntry.Account, Money(pv.Amount, currency))
	fmt.Fprintf(&b, "  an Haben  %s  %s\n", pv.CreditEntry.Account, Money(pv.Amount, currency))
	fmt.Fprintf(&b, "  %s: %s -> %s\n", pv.FromAccount, Money(pv.FromBalanceBefore, currency), Money(pv.FromBalance, currency))
	fmt.Fprintf(&b, "  %s: %s -> %s\n", pv.ToAccount, Money(pv.ToBalanceBefore, currency), Money(pv.ToBalance, currency))
	_, err := io.WriteString(w, b.String())
	return err
}

// Bilanz writes the balance sheet as two columns, Aktiva left and Passiva
// right, followed by the balance check.
func Bilanz(w io.Writer, b bilanz.Bilanz, currency string) error {
	left := side("AKTIVA", b.AktivaPositions, b.AktivaTotal, currency)
	right := side("PASSIVA", b.PassivaPositions, b.PassivaTotal, currency)

	var out strings.Builder
	out.WriteString(titleStyle.Render(fmt.Sprintf("BILANZ zum %s", b.PeriodEnd.Format("02.01.2006"))))
	out.WriteString("\n")
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sideStyle.Render(left), sideStyle.Render(right)))
	out.WriteString("\n")
	out.WriteString(Check(b.IsBalanced, b.Difference, currency))
	out.WriteString("\n")

	_, err := io.WriteString(w, out.String())
	return err
}

// Check renders the balance verdict.
func Check(balanced bool, difference decimal.Decimal, currency string) string {
	if balanced {
		return okStyle.Render("Bilanz ausgeglichen")
	}
	return badStyle.Render("Bilanz NICHT ausgeglichen, Differenz " + Money(difference, currency))
}

func side(title string, positions []bilanz.Position, total decimal.Decimal, currency string) string {
	inner := sideWidth - 2
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for _, p := range positions {
		b.WriteString(line(titleStyle.Render(p.Category), Money(p.Subtotal, currency), inner))
		for _, l := range p.Accounts {
			b.WriteString(line("  "+l.Number+" "+l.Name, Money(l.Contribution, currency), inner))
		}
	}
	b.WriteString(strings.Repeat("─", inner))
	b.WriteString("\n")
	b.WriteString(line(titleStyle.Render("Summe"), Money(total, currency), inner))
	return strings.TrimSuffix(b.String(), "\n")
}

// line pads label and value to width, truncating long labels.
func line(label, value string, width int) string {
	gap := width - lipgloss.Width(label) - lipgloss.Width(value)
	if gap < 1 {
		maxLabel := width - lipgloss.Width(value) - 2
		if maxLabel > 0 && len([]rune(label)) > maxLabel {
			label = string([]rune(label)[:maxLabel]) + "…"
		}
		gap = max(1, width-lipgloss.Width(label)-lipgloss.Width(value))
	}
	return label + strings.Repeat(" ", gap) + value + "\n"
}
