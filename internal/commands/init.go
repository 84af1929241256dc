package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/config"
	"github.com/cleared-dev/hgb/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var name string
	var legalForm string
	var starter bool
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new books directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, legalForm, starter, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&legalForm, "legal-form", "GmbH", "legal form, e.g. GmbH, UG, Einzelunternehmen")
	cmd.Flags().BoolVar(&starter, "starter", false, "create the starter account pack")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, legalForm string, starter, withGit bool) error {
	if err := os.MkdirAll(filepath.Join(dir, "accounts"), 0o755); err != nil {
		return fmt.Errorf("creating directory accounts: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default(name, legalForm)
	cfg.Git.AutoCommit = withGit
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	svc := accounts.NewService(accounts.NewMemoryRepository(), nil)
	if starter {
		res := svc.CreateStarterAccounts(cmd.Context(), nil)
		for _, e := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", e)
		}
	}
	accts, err := svc.List(cmd.Context())
	if err != nil {
		return err
	}
	if err := accounts.SaveFile(dir, accts); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}

	gitignore := ".env\n*.db\n*.db-shm\n*.db-wal\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	out := cmd.OutOrStdout()
	if !withGit {
		fmt.Fprintf(out, "Initialized books for %s at %s\n", name, dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized books for %s at %s (%s)\n", name, dir, hash)
	return nil
}
