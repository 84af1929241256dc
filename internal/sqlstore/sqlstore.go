// Package sqlstore persists accounts in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/model"
)

// Dialect selects the SQL flavour and database/sql driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() (string, error) {
	switch d {
	case SQLite:
		return "sqlite3", nil
	case Postgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

var schema = map[Dialect]string{
	SQLite: `CREATE TABLE IF NOT EXISTS accounts (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	number       TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	account_type TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	balance      TEXT NOT NULL
)`,
	Postgres: `CREATE TABLE IF NOT EXISTS accounts (
	seq          BIGSERIAL PRIMARY KEY,
	number       VARCHAR(4) NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	account_type TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	balance      NUMERIC NOT NULL
)`,
}

// Store is an accounts.Repository backed by a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ accounts.Repository = (*Store)(nil)

// Open connects to dsn and creates the schema if needed. For SQLite the dsn
// is a file path; its directory is created.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	driver, err := dialect.driverName()
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = "file:" + dsn + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and migrates it.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := dialect.driverName(); err != nil {
		return nil, err
	}
	s := &Store{db: db, dialect: dialect}
	if _, err := db.ExecContext(ctx, schema[dialect]); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Insert(ctx context.Context, acct model.Account) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO accounts (number, name, account_type, category, balance) VALUES (?, ?, ?, ?, ?)`),
		acct.Number, acct.Name, string(acct.Type), acct.Category, acct.Balance.String())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", accounts.ErrDuplicateAccount, acct.Number)
	}
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", acct.Number, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, number string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT number, name, account_type, category, balance FROM accounts WHERE number = ?`), number)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("%w: %s", accounts.ErrAccountNotFound, number)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("loading account %s: %w", number, err)
	}
	return acct, nil
}

func (s *Store) List(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, name, account_type, category, balance FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var result []model.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		result = append(result, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return result, nil
}

func (s *Store) UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE accounts SET balance = ? WHERE number = ?`), balance.String(), number)
	if err != nil {
		return fmt.Errorf("updating balance of %s: %w", number, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating balance of %s: %w", number, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", accounts.ErrAccountNotFound, number)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (model.Account, error) {
	var (
		acct        model.Account
		accountType string
		balance     string
	)
	if err := sc.Scan(&acct.Number, &acct.Name, &accountType, &acct.Category, &balance); err != nil {
		return model.Account{}, err
	}

	t, err := model.ParseAccountType(accountType)
	if err != nil {
		return model.Account{}, err
	}
	acct.Type = t

	acct.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", balance, err)
	}
	return acct, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
