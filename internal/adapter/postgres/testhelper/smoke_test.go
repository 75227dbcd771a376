package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	name := SeedCollection(t, pool, 3)

	var dim int
	err := pool.QueryRow(
		context.Background(),
		`SELECT dimension FROM vector_collections WHERE name = $1`,
		name,
	).Scan(&dim)
	if err != nil {
		t.Fatalf("expected collection in DB, got error: %v", err)
	}
	if dim != 3 {
		t.Fatalf("expected dimension 3, got %d", dim)
	}

	var ext string
	if err := pool.QueryRow(context.Background(), `SELECT extname FROM pg_extension WHERE extname = 'vector'`).Scan(&ext); err != nil {
		t.Fatalf("vector extension missing: %v", err)
	}
}
