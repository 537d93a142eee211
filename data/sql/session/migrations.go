package session

import (
	"embed"

	pkgsql "github.com/bijuliyatra/bijuli-client/pkg/sql"
)

var Migrations = pkgsql.FSMigrations(migrationFiles)

//go:embed *.sql
var migrationFiles embed.FS
