package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/bilanz"
	"github.com/cleared-dev/hgb/internal/config"
	"github.com/cleared-dev/hgb/internal/gitops"
	"github.com/cleared-dev/hgb/internal/logging"
	"github.com/cleared-dev/hgb/internal/metrics"
	"github.com/cleared-dev/hgb/internal/posting"
	"github.com/cleared-dev/hgb/internal/sqlstore"
)

// workspace is an opened books directory: its config, logger and the
// account service over the configured store.
type workspace struct {
	dir      string
	cfg      *config.Config
	log      *zap.Logger
	accounts *accounts.Service
	closers  []func() error

	// saveMu orders CSV snapshots so an older one never replaces a newer.
	saveMu sync.Mutex
}

func openWorkspace(ctx context.Context, dir string) (*workspace, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no %s in %s, run 'hgb init' first", config.FileName, absDir)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(filepath.Join(absDir, ".env")); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	ws := &workspace{dir: absDir, cfg: cfg, log: log}
	repo, err := ws.openRepository(ctx)
	if err != nil {
		return nil, err
	}
	ws.accounts = accounts.NewService(repo, log)
	return ws, nil
}

func (ws *workspace) openRepository(ctx context.Context) (accounts.Repository, error) {
	switch ws.cfg.Storage.Driver {
	case config.DriverCSV:
		return accounts.LoadFile(ws.dir)
	case config.DriverMemory:
		return accounts.NewMemoryRepository(), nil
	case config.DriverSQLite, config.DriverPostgres:
		dsn := ws.cfg.Storage.DSN
		if ws.cfg.Storage.Driver == config.DriverSQLite && !filepath.IsAbs(dsn) {
			dsn = filepath.Join(ws.dir, dsn)
		}
		store, err := sqlstore.Open(ctx, sqlstore.Dialect(ws.cfg.Storage.Driver), dsn)
		if err != nil {
			return nil, err
		}
		ws.closers = append(ws.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", ws.cfg.Storage.Driver)
	}
}

func (ws *workspace) processor(m *metrics.Metrics) *posting.Processor {
	return posting.NewProcessor(ws.accounts, ws.log, m)
}

func (ws *workspace) aggregator(m *metrics.Metrics) (*bilanz.Aggregator, error) {
	tol, err := ws.cfg.Tolerance()
	if err != nil {
		return nil, err
	}
	return bilanz.NewAggregator(ws.accounts, tol, ws.log, m), nil
}

// save writes the CSV snapshot when the csv driver is in use. SQL stores
// persist on every write already. Safe for concurrent use by API handlers.
func (ws *workspace) save(ctx context.Context) error {
	if ws.cfg.Storage.Driver != config.DriverCSV {
		return nil
	}
	ws.saveMu.Lock()
	defer ws.saveMu.Unlock()

	accts, err := ws.accounts.List(ctx)
	if err != nil {
		return err
	}
	return accounts.SaveFile(ws.dir, accts)
}

// commit saves and, with git.auto_commit, commits the books directory.
func (ws *workspace) commit(ctx context.Context, message string) error {
	if err := ws.save(ctx); err != nil {
		return err
	}
	if !ws.cfg.Git.AutoCommit || !gitops.IsRepo(ws.dir) {
		return nil
	}
	hash, err := gitops.CommitIfChanged(ws.dir, message, ws.cfg.Git.AuthorName, ws.cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("committing books: %w", err)
	}
	if hash != "" {
		ws.log.Debug("books committed", zap.String("commit", hash), zap.String("message", message))
	}
	return nil
}

func (ws *workspace) Close() error {
	var errs []error
	for _, c := range ws.closers {
		errs = append(errs, c())
	}
	_ = ws.log.Sync()
	return errors.Join(errs...)
}
