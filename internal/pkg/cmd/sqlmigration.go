package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
	"github.com/bijuliyatra/bijuli-client/pkg/sql"
)

type (
	// SQLMigrations applies embedded migrations of the packages backed by the database.
	SQLMigrations interface {
		MustRegister(name string, source sql.MigrationSource)
	}

	sqlMigrations struct {
		ctx      context.Context
		migrator *sql.Migrator
		logger   log.Logger

		mu      sync.Mutex
		applied map[string]struct{}
	}
)

func NewSQLMigrations(
	ctx context.Context,
	db sql.Database,
	logger log.Logger,
) SQLMigrations {
	return &sqlMigrations{
		ctx:      ctx,
		migrator: sql.NewMigrator(db, logger),
		logger:   logger,
		applied:  make(map[string]struct{}),
	}
}

// MustRegister applies the source once per process, repeated calls with the same name are ignored.
func (s *sqlMigrations) MustRegister(name string, source sql.MigrationSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applied[name]; ok {
		return
	}

	err := s.migrator.Execute(s.ctx, source)
	if err != nil {
		panic(fmt.Errorf("execute %s migrations: %w", name, err))
	}

	s.applied[name] = struct{}{}
	s.logger.WithField("migrations", name).Debug(s.ctx, "sql migrations applied")
}
