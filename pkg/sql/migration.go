package sql

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

const (
	migrationLock  = "perform_migration_lock"
	querySeparator = ";\n"

	migrationTableDDL = `
		CREATE TABLE IF NOT EXISTS migration (
			id text PRIMARY KEY
		)
	`
)

type (
	// MigrationSource lists migration ids in apply order and returns their sql.
	MigrationSource interface {
		IDs() ([]string, error)
		Read(id string) (string, error)
	}

	Migrator struct {
		db     TxClient
		logger log.Logger
	}

	fsMigrations struct {
		fs fs.ReadDirFS
	}
)

func FSMigrations(files fs.ReadDirFS) MigrationSource {
	return fsMigrations{files}
}

func (m fsMigrations) IDs() ([]string, error) {
	entries, err := m.fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		result = append(result, entry.Name())
	}

	sort.Strings(result)
	return result, nil
}

func (m fsMigrations) Read(id string) (string, error) {
	content, err := fs.ReadFile(m.fs, id)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func NewMigrator(db TxClient, logger log.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

func (m *Migrator) Execute(ctx context.Context, sources ...MigrationSource) error {
	_, err := m.db.ExecContext(ctx, migrationTableDDL)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	for _, source := range sources {
		ids, err := source.IDs()
		if err != nil {
			return fmt.Errorf("get migration ids: %w", err)
		}

		for _, id := range ids {
			err = m.performMigration(ctx, source, id)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *Migrator) performMigration(ctx context.Context, source MigrationSource, migrationID string) error {
	var performed bool
	err := WithinTx(ctx, m.db, func(tx ClientTx) error {
		err := lockXact(ctx, tx, migrationLock)
		if err != nil {
			return err
		}

		var count int
		err = tx.GetContext(ctx, &count, `SELECT count(*) FROM migration WHERE id = $1`, migrationID)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", migrationID, err)
		}
		if count > 0 {
			return nil
		}

		migrationSQL, err := source.Read(migrationID)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", migrationID, err)
		}

		err = processMigration(ctx, tx, migrationID, migrationSQL)
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", migrationID, err)
		}

		performed = true
		return nil
	})
	if err != nil {
		return err
	}

	if performed {
		m.logger.WithField("migrationID", migrationID).Info(ctx, "migration executed successfully")
	}
	return nil
}

func processMigration(ctx context.Context, client Client, migrationID, migrationSQL string) error {
	if strings.TrimSpace(migrationSQL) == "" {
		return errors.New("empty migration")
	}

	_, err := client.ExecContext(ctx, `INSERT INTO migration VALUES ($1)`, migrationID)
	if err != nil {
		return err
	}

	for _, query := range splitToQueries(migrationSQL) {
		_, err = client.ExecContext(ctx, query)
		if err != nil {
			return err
		}
	}
	return nil
}

func splitToQueries(sql string) []string {
	parts := strings.Split(sql, querySeparator)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		result = append(result, part)
	}
	return result
}
