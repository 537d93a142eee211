package sql

import (
	"context"
	"fmt"
	"hash/fnv"
)

// lockXact takes a transaction scoped advisory lock, it is released on commit or rollback.
func lockXact(ctx context.Context, tx ClientTx, name string) error {
	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockID(name))
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", name, err)
	}

	return nil
}

func lockID(name string) int64 {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(name))
	return int64(hash.Sum64())
}
