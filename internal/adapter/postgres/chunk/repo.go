// Package chunk implements the vector store on PostgreSQL with pgvector.
// Collections live in vector_collections; points live in knowledge_chunks
// with their embedding and a JSONB payload.
package chunk

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	postgres "github.com/heartmarshall/myenglish-adapter/internal/adapter/postgres"
	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

// Repo provides vector persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
}

// New creates a new chunk repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, tx: postgres.NewTxManager(pool)}
}

// CollectionExists reports whether the collection is registered.
func (r *Repo) CollectionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := postgres.QuerierFromCtx(ctx, r.pool).
		QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM vector_collections WHERE name = $1)`, name).
		Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "collection", name)
	}
	return exists, nil
}

// CreateCollection registers the collection. Existing collections are left untouched.
func (r *Repo) CreateCollection(ctx context.Context, spec provider.CollectionSpec) error {
	distance := spec.Distance
	if distance == "" {
		distance = provider.DistanceCosine
	}

	query, args, err := postgres.Builder().
		Insert("vector_collections").
		Columns("name", "dimension", "distance").
		Values(spec.Name, spec.Dimension, string(distance)).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create collection: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "collection", spec.Name)
	}
	return nil
}

// Upsert inserts or replaces points in one transaction.
// Every vector must match the collection dimension.
func (r *Repo) Upsert(ctx context.Context, collection string, points []provider.Point) error {
	if len(points) == 0 {
		return nil
	}

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.pool)

		spec, err := r.collection(ctx, q, collection)
		if err != nil {
			return err
		}

		insert := postgres.Builder().
			Insert("knowledge_chunks").
			Columns("collection", "id", "embedding", "payload")
		for _, p := range points {
			if len(p.Vector) != spec.Dimension {
				return domain.NewValidationError("vector",
					fmt.Sprintf("point %s has dimension %d, want %d", p.ID, len(p.Vector), spec.Dimension))
			}
			payload, err := json.Marshal(p.Payload)
			if err != nil {
				return fmt.Errorf("encode payload %s: %w", p.ID, err)
			}
			insert = insert.Values(collection, p.ID, pgvector.NewVector(p.Vector), payload)
		}

		query, args, err := insert.
			Suffix(`ON CONFLICT (collection, id) DO UPDATE
				SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload, updated_at = now()`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}

		if _, err := q.Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, "collection", collection)
		}
		return nil
	})
}

// Search returns up to limit nearest points ordered by similarity.
func (r *Repo) Search(ctx context.Context, collection string, vector []float32, limit int) ([]provider.SearchHit, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	spec, err := r.collection(ctx, q, collection)
	if err != nil {
		return nil, err
	}
	if len(vector) != spec.Dimension {
		return nil, domain.NewValidationError("vector",
			fmt.Sprintf("query dimension %d, want %d", len(vector), spec.Dimension))
	}

	vec := pgvector.NewVector(vector)
	scoreExpr, orderExpr := "1 - (embedding <=> ?) AS score", "embedding <=> ?"
	if spec.Distance == provider.DistanceDot {
		scoreExpr, orderExpr = "(embedding <#> ?) * -1 AS score", "embedding <#> ?"
	}

	builder := postgres.Builder().
		Select("id", "payload").
		Column(sq.Expr(scoreExpr, vec)).
		From("knowledge_chunks").
		Where(sq.Eq{"collection": collection}).
		OrderByClause(orderExpr, vec)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "collection", collection)
	}
	defer rows.Close()

	hits := make([]provider.SearchHit, 0, limit)
	for rows.Next() {
		var (
			h       provider.SearchHit
			payload []byte
		)
		if err := rows.Scan(&h.ID, &payload, &h.Score); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &h.Payload); err != nil {
				return nil, fmt.Errorf("decode payload %s: %w", h.ID, err)
			}
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "collection", collection)
	}

	return hits, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) collection(ctx context.Context, q postgres.Querier, name string) (provider.CollectionSpec, error) {
	spec := provider.CollectionSpec{Name: name}
	var distance string
	err := q.QueryRow(ctx,
		`SELECT dimension, distance FROM vector_collections WHERE name = $1`, name,
	).Scan(&spec.Dimension, &distance)
	if err != nil {
		return spec, postgres.MapError(err, "collection", name)
	}
	spec.Distance = provider.Distance(distance)
	return spec, nil
}
