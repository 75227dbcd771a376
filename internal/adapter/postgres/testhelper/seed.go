package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCollection registers a cosine collection with a unique name and returns the name.
func SeedCollection(t *testing.T, pool *pgxpool.Pool, dimension int) string {
	t.Helper()

	name := "test-" + uniqueSuffix()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO vector_collections (name, dimension, distance) VALUES ($1, $2, 'Cosine')`,
		name, dimension,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCollection insert: %v", err)
	}
	return name
}
