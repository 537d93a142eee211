package sql

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSMigrations_IDsAreSortedSQLFiles(t *testing.T) {
	source := FSMigrations(fstest.MapFS{
		"002_trigger.sql": {Data: []byte("SELECT 2;\n")},
		"001_table.sql":   {Data: []byte("SELECT 1;\n")},
		"README.md":       {Data: []byte("docs")},
	})

	ids, err := source.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_table.sql", "002_trigger.sql"}, ids)

	content, err := source.Read("001_table.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\n", content)
}

func TestSplitToQueries(t *testing.T) {
	queries := splitToQueries("CREATE TABLE a (id int);\nCREATE INDEX ON a (id);\n\n")
	assert.Equal(t, []string{"CREATE TABLE a (id int)", "CREATE INDEX ON a (id)"}, queries)
}

func TestLockID(t *testing.T) {
	assert.Equal(t, lockID(migrationLock), lockID(migrationLock))
	assert.NotEqual(t, lockID(migrationLock), lockID("session_storage"))
}
