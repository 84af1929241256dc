package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hgb/internal/model"
)

const (
	numFields   = 5
	colNumber   = 0
	colName     = 1
	colType     = 2
	colCategory = 3
	colBalance  = 4
)

// FileName is the account snapshot path relative to a project root.
var FileName = filepath.Join("accounts", "accounts.csv")

// ReadAccounts reads an accounts.csv snapshot. A number appearing twice is
// an error.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accts []model.Account
	seen := make(map[string]int, len(records)-1)
	for i, rec := range records[1:] {
		row := i + 2
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if first, ok := seen[acct.Number]; ok {
			return nil, fmt.Errorf("row %d: %w: %s (first on row %d)", row, ErrDuplicateAccount, acct.Number, first)
		}
		seen[acct.Number] = row
		accts = append(accts, acct)
	}
	return accts, nil
}

// WriteAccounts writes an accounts.csv snapshot.
func WriteAccounts(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"number", "name", "account_type", "category", "balance"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colNumber] = acct.Number
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCategory] = acct.Category
	row[colBalance] = formatBalance(acct.Balance)
	return row
}

// formatBalance writes two decimals unless that would round the value.
func formatBalance(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if err := ValidateNumber(record[colNumber]); err != nil {
		return model.Account{}, err
	}

	accountType, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: %w", ErrInvalidAccountType, err)
	}

	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	return model.Account{
		Number:   record[colNumber],
		Name:     record[colName],
		Type:     accountType,
		Balance:  balance,
		Category: record[colCategory],
	}, nil
}

// LoadFile reads <root>/accounts/accounts.csv into a MemoryRepository. A
// missing file yields an empty repository.
func LoadFile(root string) (*MemoryRepository, error) {
	path := filepath.Join(root, FileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewMemoryRepository(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}
	return NewMemoryRepository(accts...), nil
}

// SaveFile writes accts to <root>/accounts/accounts.csv. The snapshot goes
// to a temporary file first and is renamed into place, so readers never see
// a partial file.
func SaveFile(root string, accts []model.Account) error {
	path := filepath.Join(root, FileName)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".accounts-*.csv")
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := WriteAccounts(f, accts); err != nil {
		f.Close()
		return fmt.Errorf("writing accounts: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing accounts file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("setting accounts file mode: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing accounts file: %w", err)
	}
	return nil
}
